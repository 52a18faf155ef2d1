package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invcheck/invcheck/web/session"
)

// AdminRequired lets the request through only for the privileged identity.
func AdminRequired(adminUser string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := session.GetLoginUser(c)
		if username == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if username != adminUser {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
