package middleware

import (
	"github.com/haierkeys/site-text-service/pkg/app"

	"github.com/gin-gonic/gin"
)

// Context keys set by AppInfo
const (
	AppNameKey    = "app_name"
	AppVersionKey = "app_version"
)

// AppInfo stamps the serving build on the context and on every response,
// so editors can tell which release answered a save
// AppInfo 在上下文与响应头中标记处理请求的构建版本
func AppInfo(name string, build app.VersionInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(AppNameKey, name)
		c.Set(AppVersionKey, build.Version)

		h := c.Writer.Header()
		h.Set("X-App-Version", build.Version)
		if build.GitTag != "" {
			h.Set("X-App-Build", build.GitTag)
		}
		c.Next()
	}
}
