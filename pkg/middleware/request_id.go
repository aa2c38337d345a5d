// Package middleware contains any custom middleware used in the app
package middleware

import (
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/gin-gonic/gin"
)

const RequestIDHeader = "X-Request-ID"

// NewRequestIDMiddleware returns a new middleware function that generates a request ID for
// each incoming request and sets it as requestID
func NewRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := gonanoid.New(12)
		if err != nil {
			id = "unknown"
		}

		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// PinRequestID rewrites the request id header right before the body is
// written. Middleware replaying stored responses, like the gin-cache
// handlers, would otherwise send the id of the request that filled the
// cache.
func PinRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &requestIDWriter{ResponseWriter: c.Writer, id: c.GetString("requestID")}
		c.Next()
	}
}

type requestIDWriter struct {
	gin.ResponseWriter
	id string
}

func (w *requestIDWriter) pin() {
	if !w.Written() {
		w.Header().Set(RequestIDHeader, w.id)
	}
}

func (w *requestIDWriter) WriteHeaderNow() {
	w.pin()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *requestIDWriter) Write(b []byte) (int, error) {
	w.pin()
	return w.ResponseWriter.Write(b)
}

func (w *requestIDWriter) WriteString(s string) (int, error) {
	w.pin()
	return w.ResponseWriter.WriteString(s)
}
