package dto

import "github.com/haierkeys/site-text-service/pkg/timex"

// VersionDTO version information for API response
// VersionDTO 版本信息 API 响应对象
type VersionDTO struct {
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

// HealthResponse 健康检查结果，依赖项取值 ok 或 error
type HealthResponse struct {
	Status   string     `json:"status"`
	Database string     `json:"database"`
	Sessions string     `json:"sessions"`
	Time     timex.Time `json:"time"`
}
