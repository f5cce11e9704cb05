package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/vibeloghq/vibelog/internal/common"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates a caller-supplied request id or assigns a ULID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			if v, err := common.NewULID(); err == nil {
				id = v
			}
		}
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}
