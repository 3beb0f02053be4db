package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// ContextTimeout puts a deadline on the request context so storage calls give up in time.
// Websocket upgrades keep the original context because the connection outlives the request.
// A non-positive timeout disables the deadline.
// ContextTimeout 为请求上下文设置截止时间；websocket 升级请求不受影响，非正数表示不限制
func ContextTimeout(timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.IsWebsocket() {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
