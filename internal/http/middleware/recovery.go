package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

const errorPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Risk-Reward</title></head>
<body><h1>Something went wrong</h1><p><a href="/">Back to boards</a></p></body>
</html>
`

// Recovery turns a panic into a 500. Browsers get a small HTML page with a
// link home; other clients get JSON.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// c.Request carries the session log fields when Session ran.
				ctx := c.Request.Context()

				attrs := []any{
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"route", c.FullPath(),
					"stack", string(debug.Stack()),
				}
				if session := SessionFrom(c); session != nil {
					attrs = append(attrs, "authenticated", session.Authenticated())
				}
				slog.ErrorContext(ctx, "panic recovered", attrs...)

				if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
					c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(errorPage))
					c.Abort()
					return
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}
