package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/saberpro-api/internal/models"
	appErrors "github.com/noah-isme/saberpro-api/pkg/errors"
	"github.com/noah-isme/saberpro-api/pkg/response"
)

// RequireRoles rejects callers whose role is not listed. It must run after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role "+string(claims.Role)+" cannot access this resource"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Staff allows teachers and administrators.
func Staff() gin.HandlerFunc {
	return RequireRoles(models.RoleTeacher, models.RoleAdmin, models.RoleSuperAdmin)
}

// Admins allows ADMIN and SUPERADMIN.
func Admins() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)
}
