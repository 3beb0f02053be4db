package api_router

import (
	"context"
	"time"

	"github.com/haierkeys/site-text-service/internal/app"
	"github.com/haierkeys/site-text-service/internal/dto"
	pkgapp "github.com/haierkeys/site-text-service/pkg/app"
	"github.com/haierkeys/site-text-service/pkg/code"
	"github.com/haierkeys/site-text-service/pkg/timex"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	healthOK    = "ok"
	healthError = "error"

	// 探测用会话 ID，不会被签发
	healthProbeSession = "health-probe"
)

type HealthHandler struct {
	*Handler
}

func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// Check 健康检查接口
// @Summary 健康检查
// @Description 检查数据库与会话存储是否可用
// @Tags 系统
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := requestContext(c)
	response := &dto.HealthResponse{
		Status:   "healthy",
		Database: h.probe(ctx, "database", h.pingDatabase),
		Sessions: h.probe(ctx, "sessions", h.pingSessions),
		Time:     timex.Time(time.Now()),
	}
	if response.Database != healthOK || response.Sessions != healthOK {
		response.Status = "unhealthy"
		pkgapp.NewResponse(c).ToResponse(code.ErrorStorageUnavailable.WithData(response))
		return
	}
	success(c, response)
}

func (h *HealthHandler) probe(ctx context.Context, name string, fn func(context.Context) error) string {
	if err := fn(ctx); err != nil {
		h.App.Logger().Warn("health check failed", zap.String("dependency", name), zap.Error(err))
		return healthError
	}
	return healthOK
}

func (h *HealthHandler) pingDatabase(ctx context.Context) error {
	return h.App.DB.WithContext(ctx).Exec("SELECT 1").Error
}

func (h *HealthHandler) pingSessions(ctx context.Context) error {
	_, err := h.App.Sessions.Get(ctx, healthProbeSession)
	return err
}
