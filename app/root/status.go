package root

import (
	"bitwise74/taskcamp/internal"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/plugin/dbresolver"
)

const statusTimeout = 3 * time.Second

// StatusPage checks that the write database accepts queries
func StatusPage(c *gin.Context, d *internal.Deps) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), statusTimeout)
	defer cancel()

	if err := d.DB.WithContext(ctx).Clauses(dbresolver.Write).Exec("SELECT 1").Error; err != nil {
		zap.L().Error("Status page database check failed", zap.Error(err), zap.String("requestID", c.GetString("requestID")))

		c.String(http.StatusInternalServerError, "DB connection Fail")
		return
	}

	c.String(http.StatusOK, "DB connection is OK")
}
