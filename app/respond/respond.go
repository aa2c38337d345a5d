// Package respond holds the response helpers shared by the handlers
package respond

import (
	"bitwise74/taskcamp/pkg/util"
	"bitwise74/taskcamp/pkg/validators"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Error(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":     msg,
		"requestID": c.GetString("requestID"),
	})
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Not found")
}

// Internal logs err and answers with a generic 500
func Internal(c *gin.Context, msg string, err error) {
	requestID := c.GetString("requestID")

	zap.L().Error(msg, zap.Error(err), zap.String("requestID", requestID))

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":     "Internal server error",
		"requestID": requestID,
	})
}

// Invalid answers a rejected form with its field errors
func Invalid(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":     "Invalid form",
		"fields":    fields,
		"requestID": c.GetString("requestID"),
	})
}

// Bind decodes the request into obj and answers 400 when that fails
func Bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		Invalid(c, validators.FieldErrors(err))
		return false
	}

	return true
}

// ID parses the :id path parameter. Anything that isn't a positive
// number can't match a record, so it answers 404.
func ID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		NotFound(c)
		return 0, false
	}

	return uint(id), true
}

// Redirect sends the client to the ?next= target when it is a local path,
// otherwise to fallback
func Redirect(c *gin.Context, fallback string) {
	next := c.Query("next")
	if next == "" {
		next = c.PostForm("next")
	}

	c.Redirect(http.StatusFound, util.SafeNext(next, fallback))
}
