package account

import (
	"bitwise74/taskcamp/app/respond"
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/pkg/middleware"
	"bitwise74/taskcamp/pkg/util"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type profileForm struct {
	FirstName string `form:"first_name" json:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" json:"last_name" binding:"max=150"`
	Birthdate string `form:"birthdate" json:"birthdate"`
}

func Profile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"fields": []string{"first_name", "last_name", "birthdate"},
		"user":   middleware.CurrentUser(c),
	})
}

func ProfileEdit(c *gin.Context, d *internal.Deps) {
	var form profileForm
	if !respond.Bind(c, &form) {
		return
	}

	birth, err := util.ParseDate(form.Birthdate)
	if err != nil {
		respond.Invalid(c, map[string]string{"birthdate": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	user.FirstName = form.FirstName
	user.LastName = form.LastName
	user.Birthdate = nil

	if birth != nil {
		b := datatypes.Date(*birth)
		user.Birthdate = &b
	}

	if err := d.Users.UpdateProfile(c.Request.Context(), user); err != nil {
		respond.Internal(c, "Failed to update profile", err)
		return
	}

	c.Redirect(http.StatusFound, "/accounts/profile/")
}
