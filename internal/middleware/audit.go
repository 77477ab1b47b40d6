package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eadl-dev/acadtrack-api/internal/models"
)

// auditSink is satisfied by both the repository and the asynchronous
// audit service.
type auditSink interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}

// Audit records an audit trail entry after successful requests. Failed
// requests are not audited; audit write failures never affect the response.
func Audit(sink auditSink, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		var actorCode *string
		if claims, ok := c.Get(ContextUserKey); ok {
			user := claims.(*models.JWTClaims)
			actorCode = &user.Code
		}

		var resourceID *string
		if id := c.Param("id"); id != "" {
			resourceID = &id
		} else if code := c.Param("code"); code != "" {
			resourceID = &code
		}

		body, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		_ = sink.CreateAuditLog(c.Request.Context(), &models.AuditLog{
			ActorCode:  actorCode,
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			NewValues:  body,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		})
	}
}
