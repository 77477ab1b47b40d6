package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Header is the wire name of the request id.
	Header = "X-Request-ID"

	contextKey = "request_id"
)

// Middleware tags each request with an id, reusing the caller's when one
// is supplied so ids stay stable across service hops.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the request id assigned by Middleware, or "" outside of it.
func Value(c *gin.Context) string {
	id, _ := c.Value(contextKey).(string)
	return id
}
