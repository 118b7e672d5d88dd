package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CookieName is the cookie the admin web app keeps its token in.
const CookieName = "admin_token"

// AuthRequired is a Gin middleware that validates a JWT taken from
// Authorization: Bearer <token> or, failing that, the admin_token cookie.
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := tokenFromRequest(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid Authorization header format",
			})
			return
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}

		claims, err := jwtManager.ParseAndValidate(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(usernameKey, claims.Username)
		c.Set(roleKey, claims.Role)

		c.Next()
	}
}

// RequireAdmin ensures the token carries the admin role.
// It MUST be used after AuthRequired.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUsername(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if GetRole(c) != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: admin access required"})
			return
		}
		c.Next()
	}
}

// tokenFromRequest returns ok=false only for a malformed Authorization header.
func tokenFromRequest(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}

	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return "", true
	}
	return cookie, true
}
