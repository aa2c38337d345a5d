package account

import (
	"bitwise74/taskcamp/app/respond"
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/internal/service"
	"bitwise74/taskcamp/pkg/security"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type resetRequestForm struct {
	Email string `form:"email" json:"email" binding:"required"`
}

type resetConfirmForm struct {
	Password1 string `form:"new_password1" json:"new_password1"`
	Password2 string `form:"new_password2" json:"new_password2"`
}

func PasswordResetForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": []string{"email"}})
}

// PasswordReset queues a reset mail. The answer is the same whether or not
// the address belongs to an account.
func PasswordReset(c *gin.Context, d *internal.Deps) {
	var form resetRequestForm
	if !respond.Bind(c, &form) {
		return
	}

	if err := d.Accounts.RequestPasswordReset(c.Request.Context(), form.Email); err != nil {
		respond.Internal(c, "Failed to request password reset", err)
		return
	}

	c.Redirect(http.StatusFound, "/accounts/password_reset/done/")
}

func PasswordResetDone(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "If the address has an account, a reset link is on its way"})
}

func PasswordResetConfirmForm(c *gin.Context, d *internal.Deps) {
	if _, err := d.Accounts.CheckResetLink(c.Request.Context(), c.Param("uid"), c.Param("token")); err != nil {
		resetLinkError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"validlink": true,
		"fields":    []string{"new_password1", "new_password2"},
	})
}

func PasswordResetConfirm(c *gin.Context, d *internal.Deps) {
	var form resetConfirmForm
	if !respond.Bind(c, &form) {
		return
	}

	err := d.Accounts.ConfirmPasswordReset(c.Request.Context(), c.Param("uid"), c.Param("token"), form.Password1, form.Password2)
	if err != nil {
		var fe *service.FormError
		if errors.As(err, &fe) {
			respond.Invalid(c, fe.Fields)
			return
		}

		resetLinkError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/accounts/password_reset/complete/")
}

func PasswordResetComplete(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Your password has been set"})
}

func resetLinkError(c *gin.Context, err error) {
	if errors.Is(err, security.ErrResetTokenInvalid) || errors.Is(err, security.ErrResetTokenExpired) {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	respond.Internal(c, "Failed to check password reset link", err)
}
