package middleware

import (
	"net/http"

	"payment-terminal-bridge/pkg/apperror"
	"payment-terminal-bridge/pkg/response"

	"github.com/gin-gonic/gin"
)

// MaxBodySize rejects requests whose declared length exceeds maxBytes and
// caps the body reader for the rest, so JSON binding fails past the limit.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, apperror.New("VAL_002", "Request body too large", http.StatusRequestEntityTooLarge))
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
