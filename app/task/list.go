package task

import (
	"bitwise74/taskcamp/app/respond"
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/internal/repository"
	"bitwise74/taskcamp/pkg/util"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type taskRow struct {
	model.Task
	RowClass string `json:"row_class"`
}

// TaskList answers one page of the filtered task list
func TaskList(c *gin.Context, d *internal.Deps) {
	page, err := util.ParsePage(c.Query("page"))
	if err != nil {
		respond.NotFound(c)
		return
	}

	order, ok := respond.Order(c, "tasks", repository.TaskOrdering)
	if !ok {
		return
	}

	q := c.Query("q")

	tasks, p, err := d.Tasks.Page(c.Request.Context(), repository.ListOptions{
		Query: q,
		Order: repository.TaskOrdering.Clause(order),
	}, page)
	if err != nil {
		if errors.Is(err, util.ErrPageOutOfRange) {
			respond.NotFound(c)
			return
		}

		respond.Internal(c, "Failed to list tasks", err)
		return
	}

	now := time.Now()

	rows := make([]taskRow, len(tasks))
	for i, t := range tasks {
		rows[i] = taskRow{Task: t, RowClass: t.RowClass(now)}
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":       rows,
		"page":        p,
		"q":           q,
		"order_by":    order,
		"order_links": repository.TaskOrdering.Links(order),
	})
}
