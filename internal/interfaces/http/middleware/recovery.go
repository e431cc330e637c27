package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

// Recovery turns a panic in a handler into a logged 500 with the standard
// error body.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.WithContext(c.Request.Context()).Error("panic recovered",
				logging.String("panic", fmt.Sprint(rec)),
				logging.String("path", c.Request.URL.Path),
				logging.String("stack", string(debug.Stack())))
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":       errors.CodeInternal.String(),
				"message":    "internal server error",
				"request_id": GetRequestID(c),
			})
		}()
		c.Next()
	}
}

//Personal.AI order the ending
