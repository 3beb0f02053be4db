package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/haierkeys/site-text-service/pkg/app"
	"github.com/haierkeys/site-text-service/pkg/code"
	"github.com/haierkeys/site-text-service/pkg/errors"
	"github.com/haierkeys/site-text-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into a 500 response and logs the stack
// Recovery 将处理器 panic 转为 500 响应并记录堆栈
func Recovery(lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			fields := []zap.Field{
				zap.String("router", path),
				zap.String("method", c.Request.Method),
				zap.String("query", query),
				zap.String("ip", app.GetRequestIP(c)),
				logger.TraceID(app.GetTraceID(c)),
				zap.String("stack", string(debug.Stack())),
			}
			if err, ok := rec.(error); ok {
				lg.Error("Recovered from panic", append(fields, zap.Error(err))...)
			} else {
				// 非 error 类型的 panic
				lg.Error("Recovered from unknown panic", append(fields, zap.String("panic_value", fmt.Sprintf("%v", rec)))...)
			}

			errors.ErrorResponse(c, code.ErrorServerInternal)
		}()

		c.Next()
	}
}
