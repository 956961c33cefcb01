package middleware

import "github.com/gin-gonic/gin"

// userIDKey is the key used to store the authenticated user's ID in the context.
const userIDKey = contextKey("userID")

// adminKey marks the authenticated user as an administrator.
const adminKey = contextKey("isAdmin")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userIDVal := c.Request.Context().Value(userIDKey); userIDVal != nil {
		userID, ok := userIDVal.(string)
		return userID, ok
	}
	return "", false
}

// IsAdminFromContext reports whether the authenticated user carries the admin role.
func IsAdminFromContext(c *gin.Context) bool {
	isAdmin, ok := c.Request.Context().Value(adminKey).(bool)
	return ok && isAdmin
}
