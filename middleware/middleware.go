package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mahapatra12/vitam-cms/domain"
	"github.com/mahapatra12/vitam-cms/utils"
)

// Authenticate guards protected routes. Pending tokens are rejected here:
// holding one only proves the password check passed, and no protected
// operation accepts that on its own.
func Authenticate(tokens *utils.TokenManager, users domain.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized, no token",
			})
			c.Abort()
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized, token failed",
			})
			c.Abort()
			return
		}

		if claims.Pending {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Second factor verification required",
			})
			c.Abort()
			return
		}

		user, err := users.GetUserByUUID(c.Request.Context(), claims.UserUUID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "User not found",
			})
			c.Abort()
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Account is inactive",
			})
			c.Abort()
			return
		}

		c.Set("userUUID", user.UUID)
		c.Set("role", user.Role)
		c.Next()
	}
}

// AdminOnly requires Authenticate to have run first.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || (role != domain.RoleAdmin && role != domain.RoleSuperAdmin) {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Admins only",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
