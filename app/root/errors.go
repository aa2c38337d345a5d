package root

import (
	"bitwise74/taskcamp/app/respond"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NoRoute answers unknown paths
func NoRoute(c *gin.Context) {
	respond.NotFound(c)
}

// NoMethod answers known paths hit with the wrong method
func NoMethod(c *gin.Context) {
	respond.Error(c, http.StatusMethodNotAllowed, "Method not allowed")
}

// Recovery renders a panic as the generic 500 document
func Recovery(c *gin.Context, err any) {
	respond.Internal(c, "Recovered from panic", fmt.Errorf("%v", err))
}
