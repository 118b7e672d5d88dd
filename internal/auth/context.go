package auth

import "github.com/gin-gonic/gin"

const (
	usernameKey = "username"
	roleKey     = "role"
)

// GetUsername returns the authenticated principal or empty string.
func GetUsername(c *gin.Context) string {
	return c.GetString(usernameKey)
}

// GetRole returns the role carried by the token or empty string.
func GetRole(c *gin.Context) string {
	return c.GetString(roleKey)
}
