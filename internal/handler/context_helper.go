package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/eadl-dev/acadtrack-api/internal/middleware"
	"github.com/eadl-dev/acadtrack-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorFromContext returns the personnel code of the authenticated caller,
// empty when the route was reached without a token.
func actorFromContext(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.Code
}
