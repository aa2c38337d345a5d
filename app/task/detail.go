package task

import (
	"bitwise74/taskcamp/app/respond"
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/internal/repository"
	"bitwise74/taskcamp/pkg/middleware"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// TaskDetail answers a task. Comments are included for users allowed to
// view them and can_comment tells whether the user may post one.
func TaskDetail(c *gin.Context, d *internal.Deps) {
	t, ok := load(c, d)
	if !ok {
		return
	}

	user := middleware.CurrentUser(c)

	out := gin.H{
		"task":        t,
		"row_class":   t.RowClass(time.Now()),
		"can_comment": user.HasPerm(model.Codename(model.ActionAdd, model.EntityComment)),
	}

	if user.HasPerm(model.Codename(model.ActionView, model.EntityComment)) {
		comments, err := d.Tasks.Comments(c.Request.Context(), t.ID)
		if err != nil {
			respond.Internal(c, "Failed to load comments", err)
			return
		}

		out["comments"] = comments
	}

	c.JSON(http.StatusOK, out)
}

func load(c *gin.Context, d *internal.Deps) (*model.Task, bool) {
	id, ok := respond.ID(c)
	if !ok {
		return nil, false
	}

	t, err := d.Tasks.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.NotFound(c)
			return nil, false
		}

		respond.Internal(c, "Failed to load task", err)
		return nil, false
	}

	return t, true
}
