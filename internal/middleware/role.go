package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"toyrental/internal/pkg/response"
)

// AdminOnly rejects requests whose token does not carry the admin flag.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_admin") {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Administrator access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
