// Package home contains the dashboard
package home

import (
	"bitwise74/taskcamp/app/respond"
	"bitwise74/taskcamp/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Dashboard answers the project, task and employee summary figures
func Dashboard(c *gin.Context, d *internal.Deps) {
	s, err := d.Dashboard.Summary(c.Request.Context())
	if err != nil {
		respond.Internal(c, "Failed to build dashboard", err)
		return
	}

	c.JSON(http.StatusOK, s)
}
