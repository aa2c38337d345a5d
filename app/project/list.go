package project

import (
	"bitwise74/taskcamp/app/respond"
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/internal/repository"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ProjectList answers the filtered project list, each row with its
// completion percentage
func ProjectList(c *gin.Context, d *internal.Deps) {
	order, ok := respond.Order(c, "projects", repository.ProjectOrdering)
	if !ok {
		return
	}

	q := c.Query("q")

	rows, err := d.Projects.List(c.Request.Context(), repository.ListOptions{
		Query: q,
		Order: repository.ProjectOrdering.Clause(order),
	})
	if err != nil {
		respond.Internal(c, "Failed to list projects", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects":    rows,
		"q":           q,
		"order_by":    order,
		"order_links": repository.ProjectOrdering.Links(order),
	})
}
