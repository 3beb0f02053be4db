package middleware

import (
	"time"

	"github.com/haierkeys/site-text-service/pkg/app"
	"github.com/haierkeys/site-text-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLog logs one line per request after it completes
// AccessLog 请求完成后记录一行访问日志
func AccessLog(lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		startTime := time.Now()
		c.Next()

		timeCost := time.Since(startTime)
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("url", path+"?"+query),
			zap.Int("status", status),
			zap.Duration(logger.FieldDuration, timeCost),
			zap.String("ip", app.GetRequestIP(c)),
			zap.String("user-agent", c.Request.UserAgent()),
			logger.TraceID(app.GetTraceID(c)),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, zap.String("errors", errs))
		}

		switch {
		case status >= 500:
			lg.Error(path, fields...)
		case status >= 400:
			lg.Warn(path, fields...)
		default:
			lg.Info(path, fields...)
		}
	}
}
