// Package account contains registration, activation, login and password
// reset endpoints
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

type registerForm struct {
	Email     string `form:"email" json:"email"`
	Password1 string `form:"password1" json:"password1"`
	Password2 string `form:"password2" json:"password2"`
}

func RegisterForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": []string{"email", "password1", "password2"}})
}

// Register creates an inactive account and queues its activation mail
func Register(c *gin.Context, d *internal.Deps) {
	var form registerForm
	if !respond.Bind(c, &form) {
		return
	}

	_, err := d.Accounts.Register(c.Request.Context(), service.Registration{
		Email:     form.Email,
		Password1: form.Password1,
		Password2: form.Password2,
	})
	if err != nil {
		var fe *service.FormError
		if errors.As(err, &fe) {
			respond.Invalid(c, fe.Fields)
			return
		}

		respond.Internal(c, "Failed to register user", err)
		return
	}

	c.Redirect(http.StatusFound, "/accounts/register/done/")
}

func RegisterDone(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Check your inbox for the activation link"})
}

// Activate consumes an activation link, logs the user in and sends them
// to the dashboard
func Activate(c *gin.Context, d *internal.Deps) {
	user, err := d.Accounts.Activate(c.Request.Context(), c.Param("hash"), c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrActivationInvalid) {
			respond.Error(c, http.StatusBadRequest, "hash is not found or expired")
			return
		}

		respond.Internal(c, "Failed to activate user", err)
		return
	}

	if err := middleware.Login(c, user); err != nil {
		respond.Internal(c, "Failed to save session", err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}
