package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/dto"
	"github.com/haierkeys/site-text-service/internal/metrics"
	"github.com/haierkeys/site-text-service/internal/rbac"
	"github.com/haierkeys/site-text-service/pkg/code"
	"github.com/haierkeys/site-text-service/pkg/util"

	"go.uber.org/zap"
)

// AdminService manages admin accounts from the command line
// AdminService 命令行管理员账号管理
type AdminService interface {
	// Set creates or updates an admin. Empty fields keep their stored values.
	// Set 新增或更新管理员，空字段保留原值
	Set(ctx context.Context, params *dto.AdminSetRequest) (*dto.AdminDTO, error)

	// List 列出全部管理员
	List(ctx context.Context) ([]*dto.AdminDTO, error)

	// Delete 删除管理员，返回是否存在
	Delete(ctx context.Context, email string) (bool, error)
}

type adminService struct {
	adminRepo domain.AdminRepository
	metrics   *metrics.Metrics
	logger    *zap.Logger
	config    *ServiceConfig
}

// NewAdminService creates AdminService instance
// NewAdminService 创建 AdminService 实例
func NewAdminService(adminRepo domain.AdminRepository, m *metrics.Metrics, logger *zap.Logger, config *ServiceConfig) AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &adminService{
		adminRepo: adminRepo,
		metrics:   m,
		logger:    logger,
		config:    config.normalize(),
	}
}

func (s *adminService) Set(ctx context.Context, params *dto.AdminSetRequest) (*dto.AdminDTO, error) {
	if params == nil {
		return nil, code.ErrorInvalidParams
	}
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if !util.IsValidEmail(email) {
		return nil, code.ErrorInvalidParams.WithDetails("invalid email " + params.Email)
	}

	existing, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, storageError(err, "admin get", s.logger, s.metrics)
	}

	admin := &domain.Admin{Email: email, Role: rbac.RoleViewer}
	if existing != nil {
		*admin = *existing
	}

	if name := strings.TrimSpace(params.Name); name != "" {
		admin.Name = name
	}
	if params.Role != "" {
		role := rbac.Role(strings.ToLower(strings.TrimSpace(params.Role)))
		if !role.Valid() {
			return nil, code.ErrorInvalidParams.WithDetails("unknown role " + params.Role)
		}
		admin.Role = role
	}

	admin.PasswordHash = ""
	switch {
	case params.Password != "":
		if utf8.RuneCountInString(params.Password) < s.config.Auth.MinPasswordLength {
			return nil, code.ErrorInvalidParams.WithDetails("password is too short")
		}
		hash, err := util.GeneratePasswordHash(params.Password)
		if errors.Is(err, util.ErrPasswordTooLong) {
			return nil, code.ErrorInvalidParams.WithDetails(err.Error())
		}
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		admin.PasswordHash = hash
	case existing == nil:
		return nil, code.ErrorInvalidParams.WithDetails("password is required for a new admin")
	}

	saved, err := s.adminRepo.Save(ctx, admin)
	if err != nil {
		return nil, storageError(err, "admin save", s.logger, s.metrics)
	}
	s.logger.Info("admin saved", zap.String("email", saved.Email), zap.String("role", string(saved.Role)))
	return dto.NewAdminDTO(saved), nil
}

func (s *adminService) List(ctx context.Context) ([]*dto.AdminDTO, error) {
	admins, err := s.adminRepo.List(ctx)
	if err != nil {
		return nil, storageError(err, "admin list", s.logger, s.metrics)
	}
	out := make([]*dto.AdminDTO, 0, len(admins))
	for _, a := range admins {
		out = append(out, dto.NewAdminDTO(a))
	}
	return out, nil
}

func (s *adminService) Delete(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, code.ErrorInvalidParams.WithDetails("email is required")
	}
	removed, err := s.adminRepo.Delete(ctx, email)
	if err != nil {
		return false, storageError(err, "admin delete", s.logger, s.metrics)
	}
	if removed {
		s.logger.Info("admin deleted", zap.String("email", email))
	}
	return removed, nil
}
