package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/teris-io/shortid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID echoes a caller supplied X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			generated, err := shortid.Generate()
			if err == nil {
				id = generated
			}
		}
		if id != "" {
			c.Set("request_id", id)
			c.Header(RequestIDHeader, id)
		}
		c.Next()
	}
}
