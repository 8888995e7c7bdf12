package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-academic-api/internal/models"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
	"github.com/noah-isme/sma-academic-api/pkg/response"
)

// RequireRoles allows the request through only for the given roles. SUPERADMIN
// passes every check that admits ADMIN.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles)+1)
	for _, r := range roles {
		allowed[r] = struct{}{}
		if r == models.RoleAdmin {
			allowed[models.RoleSuperAdmin] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminOnly admits ADMIN and SUPERADMIN.
func AdminOnly() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin)
}
