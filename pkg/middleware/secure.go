package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// SecureHeaders sets the usual security headers. HTTPS redirects are left
// to the proxy in front of the app.
func SecureHeaders(ssl, dev bool) gin.HandlerFunc {
	s := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "same-origin",
		STSSeconds:            stsSeconds(ssl),
		STSIncludeSubdomains:  ssl,
		ContentSecurityPolicy: "default-src 'self'",
		IsDevelopment:         dev,
	})

	return func(c *gin.Context) {
		if err := s.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}

		// Process may have issued a redirect
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
			return
		}

		c.Next()
	}
}

func stsSeconds(ssl bool) int64 {
	if ssl {
		return 31536000
	}

	return 0
}
