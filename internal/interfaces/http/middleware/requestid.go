package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is the request identification header honored and echoed by
// the server.
const HeaderRequestID = "X-Request-ID"

// requestIDKey is the gin context key the request ID is stored under.
const requestIDKey = "request_id"

// RequestID returns middleware that accepts a client-supplied X-Request-ID or
// assigns a fresh UUID, stores it on the context, and echoes it on the
// response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID reads the request ID placed on the context by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
