package service

import (
	"errors"

	"github.com/haierkeys/site-text-service/internal/dao"
	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/metrics"
	"github.com/haierkeys/site-text-service/internal/rbac"
	"github.com/haierkeys/site-text-service/pkg/code"

	"go.uber.org/zap"
)

// authorize checks identity and permission before any store access
// authorize 在访问存储之前校验身份与权限
func authorize(identity *domain.Identity, action rbac.Action) error {
	if identity == nil {
		return code.ErrorNotUserAuthToken
	}
	if !identity.Can(action) {
		return code.ErrorForbidden.WithDetails("missing permission " + string(action))
	}
	return nil
}

// storageError maps a repository error onto the response catalogue.
// *code.Code errors pass through unchanged.
// storageError 将仓储错误映射为响应错误码，*code.Code 原样返回
func storageError(err error, op string, logger *zap.Logger, m *metrics.Metrics) error {
	if err == nil {
		return nil
	}
	var c *code.Code
	if errors.As(err, &c) {
		return c
	}
	if dao.IsUnavailable(err) {
		m.ObserveStorageError("unavailable")
		logger.Warn("storage unavailable", zap.String("op", op), zap.Error(err))
		return code.ErrorStorageUnavailable
	}
	m.ObserveStorageError("query")
	logger.Error("storage query failed", zap.String("op", op), zap.Error(err))
	return code.ErrorDBQuery
}
