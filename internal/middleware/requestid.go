package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestID tags every request with an ID for log correlation. An ID
// supplied upstream in X-Request-ID is kept so traces line up across
// the proxy chain; oversized values are replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" || len(rid) > 64 {
			rid = uuid.NewString()
		}

		c.Set(ContextRequestID, rid)
		c.Writer.Header().Set(HeaderXRequestID, rid)
		c.Next()
	}
}

// GetRequestID returns the ID tagged on the request, or the empty
// string before RequestID has run.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
