package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header is the inbound and outbound header carrying the request id.
const Header = "X-Request-ID"

const contextKey = "request_id"

// maxLength bounds client-supplied ids so they can be logged safely.
const maxLength = 128

// Middleware reuses a client supplied X-Request-ID or issues a new UUID.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" || len(id) > maxLength {
			id = uuid.NewString()
		}
		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the request id stored in the gin context.
func Value(c *gin.Context) string {
	return c.GetString(contextKey)
}
