package account

import (
	"bitwise74/taskcamp/app/respond"
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/internal/service"
	"bitwise74/taskcamp/pkg/middleware"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginForm struct {
	Email    string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

func LoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"fields": []string{"username", "password"},
		"next":   c.Query("next"),
	})
}

// Login starts a session and redirects to ?next= or the dashboard
func Login(c *gin.Context, d *internal.Deps) {
	var form loginForm
	if !respond.Bind(c, &form) {
		return
	}

	user, err := d.Accounts.Authenticate(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrInactive) {
			respond.Invalid(c, map[string]string{"form": err.Error()})
			return
		}

		respond.Internal(c, "Failed to authenticate user", err)
		return
	}

	if err := middleware.Login(c, user); err != nil {
		respond.Internal(c, "Failed to save session", err)
		return
	}

	respond.Redirect(c, "/")
}

func Logout(c *gin.Context) {
	if err := middleware.Logout(c); err != nil {
		respond.Internal(c, "Failed to clear session", err)
		return
	}

	c.Redirect(http.StatusFound, middleware.LoginURL)
}
