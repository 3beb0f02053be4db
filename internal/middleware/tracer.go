package middleware

import (
	"github.com/haierkeys/site-text-service/pkg/app"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	DefaultTraceIDHeader = "X-Trace-ID"

	maxTraceIDLen = 128
)

// TracerConfig request tracing configuration
// TracerConfig 请求追踪配置
type TracerConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Header  string `yaml:"header" default:"X-Trace-ID"`
}

// Trace reuses the caller's trace ID when it is well formed, otherwise issues a new one.
// The ID is stored on the context and echoed in the response header.
// Trace 复用请求方传入的合法 Trace ID，否则生成新的；写入上下文并回写响应头
func Trace(cfg TracerConfig) gin.HandlerFunc {
	header := cfg.Header
	if header == "" {
		header = DefaultTraceIDHeader
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		traceID := c.GetHeader(header)
		if !validTraceID(traceID) {
			traceID = uuid.NewString()
		}
		c.Set(app.TraceIDKey, traceID)
		c.Header(header, traceID)

		c.Next()
	}
}

// validTraceID 只接受可打印 ASCII，避免日志注入
func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
