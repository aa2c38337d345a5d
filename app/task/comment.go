package task

import (
	"bitwise74/taskcamp/app/respond"
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/internal/repository"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type commentForm struct {
	Description string `form:"description" json:"description"`
}

// CommentPost adds a comment and redirects back to the task. A missing
// task sends the user to the task list instead.
func CommentPost(c *gin.Context, d *internal.Deps) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}

	var form commentForm
	if !respond.Bind(c, &form) {
		return
	}

	if strings.TrimSpace(form.Description) == "" {
		respond.Invalid(c, map[string]string{"description": "required"})
		return
	}

	if _, err := d.Tasks.AddComment(c.Request.Context(), id, form.Description); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.Redirect(http.StatusFound, "/projects/tasks/")
			return
		}

		respond.Internal(c, "Failed to add comment", err)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/projects/tasks/%d/", id))
}
