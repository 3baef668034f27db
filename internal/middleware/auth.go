package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	jwtsvc "toyrental/internal/pkg/jwt"
	"toyrental/internal/pkg/response"
)

// Auth validates the Bearer token and stores user_id and is_admin for
// downstream handlers.
func Auth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromHeader(c, jwt)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("is_admin", claims.IsAdmin)
		c.Next()
	}
}

// OptionalAuth populates claims when a valid token is present but lets
// anonymous requests through. Used on registration so the first-account
// bootstrap works without a session.
func OptionalAuth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := claimsFromHeader(c, jwt); ok {
			c.Set("user_id", claims.UserID)
			c.Set("is_admin", claims.IsAdmin)
		}
		c.Next()
	}
}

func claimsFromHeader(c *gin.Context, jwt *jwtsvc.Service) (*jwtsvc.Claims, bool) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return nil, false
	}

	tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if tokenStr == "" {
		return nil, false
	}

	claims, err := jwt.ValidateToken(tokenStr)
	if err != nil {
		return nil, false
	}
	return claims, true
}
