// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"
	"errors"

	"github.com/haierkeys/site-text-service/internal/app"
	pkgapp "github.com/haierkeys/site-text-service/pkg/app"
	"github.com/haierkeys/site-text-service/pkg/code"
	apperrors "github.com/haierkeys/site-text-service/pkg/errors"
	"github.com/haierkeys/site-text-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// bind 绑定并校验参数，失败时直接写出 400 响应
func (h *Handler) bind(c *gin.Context, method string, params any) bool {
	valid, errs := pkgapp.BindAndValid(c, params)
	if valid {
		return true
	}
	h.App.Logger().Debug(method+".BindAndValid err",
		logger.TraceID(pkgapp.GetTraceID(c)),
		zap.Error(errs))
	apperrors.ErrorResponse(c, code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
	return false
}

// fail 记录错误并写出错误响应
// 客户端错误（4xx）只记录 debug 日志
func (h *Handler) fail(c *gin.Context, method string, err error) {
	level := zap.ErrorLevel
	var ce *code.Code
	if errors.As(err, &ce) && ce.StatusCode() < 500 {
		level = zap.DebugLevel
	}
	if ce := h.App.Logger().Check(level, method); ce != nil {
		ce.Write(
			logger.TraceID(pkgapp.GetTraceID(c)),
			zap.Error(err),
		)
	}
	apperrors.ErrorResponse(c, err)
}

// success 以 200 输出 data
func success(c *gin.Context, data any) {
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(data))
}

func requestContext(c *gin.Context) context.Context {
	return c.Request.Context()
}
