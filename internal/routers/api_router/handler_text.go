package api_router

import (
	"github.com/haierkeys/site-text-service/internal/app"
	"github.com/haierkeys/site-text-service/internal/dto"
	"github.com/haierkeys/site-text-service/internal/middleware"
	pkgapp "github.com/haierkeys/site-text-service/pkg/app"

	"github.com/gin-gonic/gin"
)

// TextHandler 文本块 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type TextHandler struct {
	*Handler
}

// NewTextHandler 创建 TextHandler 实例
func NewTextHandler(a *app.App) *TextHandler {
	return &TextHandler{Handler: NewHandler(a)}
}

// Resolve 获取公开文本内容
// @Summary 获取文本内容
// @Description 公开接口。文本块不存在时 content 与 updatedAt 为 null，页面应使用内置默认文本
// @Tags 内容
// @Produce json
// @Param id path string true "文本块 ID，如 home.hero.title"
// @Success 200 {object} dto.ContentResolveResponse "成功"
// @Failure 400 {object} apperrors.AppError "ID 为空"
// @Failure 503 {object} apperrors.AppError "存储不可用"
// @Router /api/content/{id} [get]
func (h *TextHandler) Resolve(c *gin.Context) {
	res, err := h.App.TextService.Resolve(requestContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, "TextHandler.Resolve", err)
		return
	}
	success(c, res)
}

// List 获取文本块列表
// @Summary 文本块列表
// @Description 按 ID 排序返回全部文本块，可按 page、section 过滤
// @Tags 内容管理
// @Security SessionToken
// @Produce json
// @Param params query dto.TextListRequest false "过滤参数"
// @Success 200 {object} dto.TextListResponse "成功"
// @Failure 401 {object} apperrors.AppError "未登录"
// @Failure 403 {object} apperrors.AppError "无权限"
// @Router /api/admin/content/text [get]
func (h *TextHandler) List(c *gin.Context) {
	params := &dto.TextListRequest{}
	if !h.bind(c, "TextHandler.List", params) {
		return
	}
	res, err := h.App.TextService.List(requestContext(c), middleware.GetIdentity(c), params)
	if err != nil {
		h.fail(c, "TextHandler.List", err)
		return
	}
	success(c, res)
}

// Put 创建、更新或恢复文本块
// @Summary 写入文本块
// @Description 内容与当前版本相同时不写入（changed=false）。提供 restoreVersion 时由服务端复制该历史版本内容并生成新版本
// @Tags 内容管理
// @Security SessionToken
// @Accept json
// @Produce json
// @Param params body dto.TextPutRequest true "写入参数"
// @Success 200 {object} dto.TextPutResponse "成功"
// @Failure 400 {object} apperrors.AppError "参数错误"
// @Failure 401 {object} apperrors.AppError "未登录"
// @Failure 403 {object} apperrors.AppError "无权限"
// @Failure 503 {object} apperrors.AppError "存储不可用"
// @Router /api/admin/content/text [put]
func (h *TextHandler) Put(c *gin.Context) {
	params := &dto.TextPutRequest{}
	if !h.bind(c, "TextHandler.Put", params) {
		return
	}
	res, err := h.App.TextService.Put(requestContext(c), middleware.GetIdentity(c), params)
	if err != nil {
		h.fail(c, "TextHandler.Put", err)
		return
	}
	success(c, res)
}

// Delete 删除文本块
// @Summary 删除文本块
// @Description 只删除当前内容，历史版本保留。文本块不存在时同样返回成功
// @Tags 内容管理
// @Security SessionToken
// @Produce json
// @Param id query string true "文本块 ID"
// @Success 200 {object} dto.SuccessResponse "成功"
// @Failure 400 {object} apperrors.AppError "ID 为空"
// @Failure 401 {object} apperrors.AppError "未登录"
// @Failure 403 {object} apperrors.AppError "无权限"
// @Router /api/admin/content/text [delete]
func (h *TextHandler) Delete(c *gin.Context) {
	params := &dto.TextDeleteRequest{}
	if !h.bind(c, "TextHandler.Delete", params) {
		return
	}
	res, err := h.App.TextService.Delete(requestContext(c), middleware.GetIdentity(c), params.ID)
	if err != nil {
		h.fail(c, "TextHandler.Delete", err)
		return
	}
	success(c, res)
}

// History 获取文本块历史版本
// @Summary 历史版本
// @Description 按版本号倒序返回，limit 默认 20，最大 100。diff=true 时附带与上一较旧版本的差异
// @Tags 内容管理
// @Security SessionToken
// @Produce json
// @Param id path string true "文本块 ID"
// @Param limit query int false "返回条数"
// @Param diff query bool false "是否返回差异"
// @Success 200 {object} dto.TextHistoryResponse "成功"
// @Failure 401 {object} apperrors.AppError "未登录"
// @Failure 403 {object} apperrors.AppError "无权限"
// @Router /api/admin/content/text/history/{id} [get]
func (h *TextHandler) History(c *gin.Context) {
	cfg := h.App.Config().App
	params := &dto.TextHistoryRequest{
		ID: c.Param("id"),
		Limit: pkgapp.GetLimitWithConfig(c, pkgapp.LimitConfig{
			Default: cfg.HistoryDefaultLimit,
			Max:     cfg.HistoryMaxLimit,
		}),
		Diff: pkgapp.GetBoolQuery(c, "diff"),
	}
	res, err := h.App.TextService.History(requestContext(c), middleware.GetIdentity(c), params)
	if err != nil {
		h.fail(c, "TextHandler.History", err)
		return
	}
	success(c, res)
}
