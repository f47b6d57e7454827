package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ryucoder/crown-backend/pkg/httputil"
)

// Timeout attaches a deadline to the request context. Handlers and
// repositories observe it through ctx; if the deadline fires before the
// handler writes anything, the request is answered with 504.
func Timeout(duration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), duration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, httputil.Response{
				Success: false,
				Error:   &httputil.Error{Code: http.StatusGatewayTimeout, Message: "request timed out"},
			})
		}
	}
}
