package project

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

type taskRow struct {
	model.Task
	RowClass string `json:"row_class"`
}

// ProjectDetail answers a project with its completion figures. The task
// list is only included for users allowed to view tasks.
func ProjectDetail(c *gin.Context, d *internal.Deps) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	project, err := d.Projects.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.NotFound(c)
			return
		}

		respond.Internal(c, "Failed to load project", err)
		return
	}

	tasks, err := d.Projects.Tasks(ctx, id)
	if err != nil {
		respond.Internal(c, "Failed to load project tasks", err)
		return
	}

	var finished int64
	for _, t := range tasks {
		if !t.Status.Open() {
			finished++
		}
	}

	out := gin.H{
		"project":   project,
		"total":     len(tasks),
		"completed": repository.Completion(finished, int64(len(tasks))),
	}

	if middleware.CurrentUser(c).HasPerm(model.Codename(model.ActionView, model.EntityTask)) {
		now := time.Now()

		rows := make([]taskRow, len(tasks))
		for i, t := range tasks {
			rows[i] = taskRow{Task: t, RowClass: t.RowClass(now)}
		}

		out["tasks"] = rows
	}

	c.JSON(http.StatusOK, out)
}
