package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/dto"
	"github.com/haierkeys/site-text-service/internal/metrics"
	"github.com/haierkeys/site-text-service/internal/rbac"
	"github.com/haierkeys/site-text-service/internal/session"
	"github.com/haierkeys/site-text-service/pkg/app"
	"github.com/haierkeys/site-text-service/pkg/code"
	"github.com/haierkeys/site-text-service/pkg/timex"
	"github.com/haierkeys/site-text-service/pkg/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService defines the admin session service interface
// AuthService 定义管理会话服务接口
type AuthService interface {
	// Login checks credentials and issues a session token
	// Login 校验账号密码并签发会话 Token
	Login(ctx context.Context, params *dto.AuthLoginRequest) (*dto.AuthLoginResponse, error)

	// Authenticate resolves a token to an identity. An empty token yields nil, nil.
	// Authenticate 将 Token 解析为身份，空 Token 返回 nil, nil
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)

	// Logout revokes the session of the identity
	// Logout 撤销当前会话
	Logout(ctx context.Context, identity *domain.Identity) error
}

type authService struct {
	adminRepo domain.AdminRepository
	sessions  session.Store
	tokens    app.TokenManager
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates AuthService instance
// NewAuthService 创建 AuthService 实例
func NewAuthService(adminRepo domain.AdminRepository, sessions session.Store, tokens app.TokenManager, m *metrics.Metrics, logger *zap.Logger) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		adminRepo: adminRepo,
		sessions:  sessions,
		tokens:    tokens,
		metrics:   m,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck spends the same bcrypt work as a real check so unknown emails are not distinguishable by timing
// burnPasswordCheck 对不存在的账号执行同等的 bcrypt 计算
func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = util.GeneratePasswordHash(uuid.NewString())
	})
	util.CheckPasswordHash(dummyHash, password)
}

func (s *authService) Login(ctx context.Context, params *dto.AuthLoginRequest) (*dto.AuthLoginResponse, error) {
	if params == nil {
		return nil, code.ErrorInvalidCredentials
	}
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || params.Password == "" {
		return nil, code.ErrorInvalidCredentials
	}

	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, storageError(err, "login", s.logger, s.metrics)
	}
	if admin == nil {
		burnPasswordCheck(params.Password)
		s.metrics.ObserveLogin(false)
		return nil, code.ErrorInvalidCredentials
	}
	if !util.CheckPasswordHash(admin.PasswordHash, params.Password) {
		s.metrics.ObserveLogin(false)
		s.logger.Info("admin login rejected", zap.String("email", email))
		return nil, code.ErrorInvalidCredentials
	}

	identity := &domain.Identity{
		Email:     admin.Email,
		Name:      admin.Name,
		Role:      rbac.Normalize(string(admin.Role)),
		SessionID: uuid.NewString(),
	}
	token, expiresAt, err := s.tokens.Generate(identity.SessionID, identity.Email, identity.Name, string(identity.Role))
	if err != nil {
		s.logger.Error("token generate failed", zap.String("email", email), zap.Error(err))
		return nil, code.ErrorTokenGenerate
	}

	now := s.now()
	err = s.sessions.Save(ctx, &session.Session{
		ID:        identity.SessionID,
		Email:     identity.Email,
		Name:      identity.Name,
		Role:      identity.Role,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		s.logger.Warn("session save failed", zap.String("email", email), zap.Error(err))
		return nil, code.ErrorSessionStoreUnavailable
	}

	if err := s.adminRepo.UpdateLastLogin(ctx, admin.Email, now); err != nil {
		s.logger.Warn("update last login failed", zap.String("email", email), zap.Error(err))
	}
	s.metrics.ObserveLogin(true)
	s.logger.Info("admin signed in", zap.String("email", email), zap.String("role", string(identity.Role)))

	return &dto.AuthLoginResponse{
		Success:   true,
		User:      dto.NewAuthUserDTO(identity),
		Token:     token,
		ExpiresAt: timex.Time(expiresAt),
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, code.ErrorInvalidUserAuthToken
	}

	sess, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		s.logger.Warn("session lookup failed", zap.Error(err))
		return nil, code.ErrorSessionStoreUnavailable
	}
	if sess == nil || sess.Email != claims.Subject {
		return nil, code.ErrorInvalidUserAuthToken
	}

	// 账号被删除后会话立即失效，角色以当前账号记录为准
	admin, err := s.adminRepo.GetByEmail(ctx, sess.Email)
	if err != nil {
		return nil, storageError(err, "authenticate", s.logger, s.metrics)
	}
	if admin == nil {
		s.logger.Info("session of removed admin rejected", zap.String("email", sess.Email))
		return nil, code.ErrorInvalidUserAuthToken
	}

	return &domain.Identity{
		Email:     admin.Email,
		Name:      admin.Name,
		Role:      rbac.Normalize(string(admin.Role)),
		SessionID: sess.ID,
	}, nil
}

func (s *authService) Logout(ctx context.Context, identity *domain.Identity) error {
	if identity == nil {
		return code.ErrorNotUserAuthToken
	}
	if err := s.sessions.Delete(ctx, identity.SessionID); err != nil {
		s.logger.Warn("session delete failed", zap.Error(err))
		return code.ErrorSessionStoreUnavailable
	}
	return nil
}
