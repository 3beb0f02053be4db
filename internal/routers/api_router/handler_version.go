package api_router

import (
	"github.com/haierkeys/site-text-service/internal/app"
	"github.com/haierkeys/site-text-service/internal/dto"

	"github.com/gin-gonic/gin"
)

// VersionHandler 版本信息处理器
type VersionHandler struct {
	*Handler
}

// NewVersionHandler 创建 VersionHandler 实例
func NewVersionHandler(a *app.App) *VersionHandler {
	return &VersionHandler{Handler: NewHandler(a)}
}

// ServerVersion 获取服务端版本号
// @Summary 获取服务端版本信息
// @Description 获取当前服务端的软件版本号、Git 标签和构建时间
// @Tags 系统
// @Produce json
// @Success 200 {object} dto.VersionDTO "成功"
// @Router /api/version [get]
func (h *VersionHandler) ServerVersion(c *gin.Context) {
	v := h.App.Version()
	success(c, &dto.VersionDTO{
		Version:   v.Version,
		GitTag:    v.GitTag,
		BuildTime: v.BuildTime,
	})
}
