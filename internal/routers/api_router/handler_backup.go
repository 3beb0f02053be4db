package api_router

import (
	"context"

	"github.com/haierkeys/site-text-service/internal/app"
	"github.com/haierkeys/site-text-service/internal/dto"
	"github.com/haierkeys/site-text-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

// BackupHandler 备份 API 路由处理器
type BackupHandler struct {
	*Handler
}

// NewBackupHandler 创建 BackupHandler 实例
func NewBackupHandler(a *app.App) *BackupHandler {
	return &BackupHandler{Handler: NewHandler(a)}
}

// Run 立即执行一次备份
// @Summary 执行备份
// @Description 将全部文本块与历史版本导出为 JSON 并上传到配置的备份存储
// @Tags 内容管理
// @Security SessionToken
// @Produce json
// @Success 200 {object} dto.BackupResponse "成功"
// @Failure 401 {object} apperrors.AppError "未登录"
// @Failure 403 {object} apperrors.AppError "无权限"
// @Failure 503 {object} apperrors.AppError "未配置备份存储"
// @Router /api/admin/content/backup [post]
func (h *BackupHandler) Run(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	var res *dto.BackupResponse
	err := h.App.SubmitTask(requestContext(c), "backup.manual", func(ctx context.Context) error {
		var runErr error
		res, runErr = h.App.BackupService.Run(ctx, identity)
		return runErr
	})
	if err != nil {
		h.fail(c, "BackupHandler.Run", err)
		return
	}
	success(c, res)
}
