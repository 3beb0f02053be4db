package main

import (
	_ "embed"

	"github.com/haierkeys/site-text-service/cmd"
)

//go:embed config/config.yaml
var c string

// @title Site Text Service API
// @version 1.0
// @description 站点可编辑文本服务：公开读取文本内容，管理员在线编辑、查看历史版本与恢复
// @BasePath /
// @securityDefinitions.apikey SessionToken
// @in header
// @name Authorization
// @description Bearer 会话 Token，也可使用 httpOnly Cookie
func main() {
	cmd.Execute(c)
}
