package app

import (
	pkgapp "github.com/haierkeys/site-text-service/pkg/app"
)

// Name 应用名称
const Name = "Site Text Service"

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/haierkeys/site-text-service/internal/app.Version=1.2.0 \
//	  -X github.com/haierkeys/site-text-service/internal/app.GitTag=$(git describe --tags)"
//
// 构建信息，由 -ldflags 注入
var (
	Version   = "1.0.0"
	GitTag    = "2000.01.01.release"
	BuildTime = "2000-01-01T00:00:00+0800"
)

// BuildInfo 当前二进制的版本信息，供 /api/version 与响应头使用
func BuildInfo() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{Version: Version, GitTag: GitTag, BuildTime: BuildTime}
}
