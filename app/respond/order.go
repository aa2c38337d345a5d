package respond

import (
	"bitwise74/taskcamp/pkg/util"
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Order resolves the order_by value for a list view. The resolved value is
// remembered in the session under list so that asking for the same value
// again reverses it. Paging through a list never toggles and a request
// without order_by forgets the remembered value.
func Order(c *gin.Context, list string, o util.Ordering) (string, bool) {
	s := sessions.Default(c)
	key := "order_by:" + list

	previous, _ := s.Get(key).(string)
	requested := c.Query("order_by")
	toggle := c.Query("page") == ""

	if requested == "" && previous != "" {
		s.Delete(key)
		save(c, s)

		return o.Default, true
	}

	value, err := o.Resolve(requested, previous, toggle)
	if err != nil {
		if errors.Is(err, util.ErrInvalidOrder) {
			Error(c, http.StatusBadRequest, "Invalid order_by value")
			return "", false
		}

		Internal(c, "Failed to resolve ordering", err)
		return "", false
	}

	if requested != "" && value != previous {
		s.Set(key, value)
		save(c, s)
	}

	return value, true
}

func save(c *gin.Context, s sessions.Session) {
	if err := s.Save(); err != nil {
		zap.L().Warn("Failed to remember list ordering", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
	}
}
