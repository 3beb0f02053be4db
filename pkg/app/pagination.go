package app

import (
	"github.com/haierkeys/site-text-service/pkg/convert"

	"github.com/gin-gonic/gin"
)

// LimitConfig bounds for a "limit" style query parameter // 数量限制配置
type LimitConfig struct {
	Default int
	Max     int
}

// GetLimitWithConfig reads the "limit" query parameter and clamps it to 1..cfg.Max
// GetLimitWithConfig 读取 "limit" 查询参数并限制在 1..cfg.Max
func GetLimitWithConfig(c *gin.Context, cfg LimitConfig) int {
	limit := 0
	if s, exist := c.GetQuery("limit"); exist {
		limit = convert.StrTo(s).MustInt()
	}
	return ClampLimit(limit, cfg)
}

// ClampLimit applies the default for non-positive values and caps at Max
// ClampLimit 非正数使用默认值，超过上限时截断
func ClampLimit(limit int, cfg LimitConfig) int {
	if limit <= 0 {
		return cfg.Default
	}
	if cfg.Max > 0 && limit > cfg.Max {
		return cfg.Max
	}
	return limit
}

// GetBoolQuery reads a boolean query parameter
// GetBoolQuery 读取布尔查询参数
func GetBoolQuery(c *gin.Context, key string) bool {
	s, exist := c.GetQuery(key)
	if !exist {
		return false
	}
	return convert.StrTo(s).Bool()
}
