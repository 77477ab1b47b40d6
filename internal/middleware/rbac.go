package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/eadl-dev/acadtrack-api/internal/models"
	appErrors "github.com/eadl-dev/acadtrack-api/pkg/errors"
	"github.com/eadl-dev/acadtrack-api/pkg/response"
)

// RequireRoles restricts a route to personnel holding one of the given
// roles. It must run after JWT.
func RequireRoles(roles ...models.PersonnelRole) gin.HandlerFunc {
	allowed := make(map[models.PersonnelRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
