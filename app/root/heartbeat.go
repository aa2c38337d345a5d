// Package root contains the endpoints that don't belong to an entity
package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat answers load balancer probes without touching the database
func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}
