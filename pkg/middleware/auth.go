package middleware

import (
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/internal/repository"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// SessionUserKey is the session key holding the logged in user's id
	SessionUserKey = "userID"
	// LoginURL is where anonymous users are sent
	LoginURL = "/accounts/login/"

	userKey = "user"
)

// Login stores the user in the session
func Login(c *gin.Context, user *model.User) error {
	s := sessions.Default(c)
	s.Clear()
	s.Set(SessionUserKey, user.ID)

	c.Set(userKey, user)
	c.Set("userID", strconv.FormatUint(uint64(user.ID), 10))

	return s.Save()
}

func Logout(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})

	c.Set(userKey, nil)

	return s.Save()
}

// CurrentUser returns the active user of the request or nil
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}

	u, _ := v.(*model.User)

	return u
}

// LoadUser resolves the session into a user with its permissions. A
// session pointing at a missing or inactive user is dropped.
func LoadUser(users *repository.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)

		id, ok := s.Get(SessionUserKey).(uint)
		if !ok || id == 0 {
			c.Next()
			return
		}

		user, err := users.Get(c.Request.Context(), id)
		switch {
		case err == nil && user.IsActive:
			c.Set(userKey, user)
			c.Set("userID", strconv.FormatUint(uint64(id), 10))
		case err == nil || errors.Is(err, repository.ErrNotFound):
			s.Clear()
			if err := s.Save(); err != nil {
				zap.L().Warn("Failed to drop stale session", zap.Error(err))
			}
		default:
			requestID := c.GetString("requestID")

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to load session user", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Next()
	}
}

// LoginRedirect is the login URL that sends the user back to the current
// request afterwards
func LoginRedirect(c *gin.Context) string {
	return LoginURL + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
}

// RequireLogin redirects anonymous requests to the login page
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginRedirect(c))
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequirePermission lets through users holding codename. Anonymous users
// are redirected to log in and everyone else gets a 403 with message.
func RequirePermission(codename, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.Redirect(http.StatusFound, LoginRedirect(c))
			c.Abort()
			return
		}

		if !user.HasPerm(codename) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     message,
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}
