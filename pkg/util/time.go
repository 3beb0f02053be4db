package util

import (
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses a duration string, additionally accepting a "d" (day) suffix and bare seconds.
// ParseDuration 解析时长字符串，额外支持 "d"（天）后缀和纯数字秒数
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		daysStr := strings.TrimSuffix(s, "d")
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	if _, err := strconv.Atoi(s); err == nil {
		s += "s"
	}
	return time.ParseDuration(s)
}

// MustParseDuration is ParseDuration with a fallback for empty or malformed input.
// MustParseDuration 解析失败或为空时返回 fallback
func MustParseDuration(s string, fallback time.Duration) time.Duration {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	d, err := ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
