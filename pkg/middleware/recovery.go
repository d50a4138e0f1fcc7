package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RetryMessage is what a visitor sees after an unexpected failure.
const RetryMessage = "Something went wrong. Please try again."

const errorPage = `<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>Something went wrong</title></head>
<body><h1>Something went wrong</h1><p>Please try again.</p><p><a href="/">Back to home</a></p></body></html>`

// Recovery turns a panic into a 500: JSON under /api/, an error page
// elsewhere. The panic value and stack are logged, never returned.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			log.Error("panic recovered",
				zap.Any("panic", rec),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", GetRequestID(c)),
				zap.Stack("stack"),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"ok":      false,
					"success": false,
					"message": RetryMessage,
				})
				return
			}
			c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(errorPage))
			c.Abort()
		}()
		c.Next()
	}
}
