package middleware

import (
	"context"
	"errors"

	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/rbac"
	"github.com/haierkeys/site-text-service/pkg/app"
	"github.com/haierkeys/site-text-service/pkg/code"
	apperrors "github.com/haierkeys/site-text-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// IdentityKey gin.Context 中存储调用者身份的键
const IdentityKey = "identity"

// Authenticator resolves a session token to an identity
// Authenticator 将会话 Token 解析为身份
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

// SessionAuth resolves the caller from the request token.
// When required is false an absent or invalid token leaves the caller anonymous,
// but an unreachable session store still fails the request.
// SessionAuth 从请求 Token 解析调用者身份
// required 为 false 时缺失或无效的 Token 视为匿名，会话存储不可用仍返回错误
func SessionAuth(a Authenticator, cookieName string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := app.GetRequestToken(c, cookieName)
		identity, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			if required || errors.Is(err, code.ErrorSessionStoreUnavailable) {
				apperrors.ErrorResponse(c, err)
				return
			}
			identity = nil
		}
		if identity == nil && required {
			apperrors.ErrorResponse(c, code.ErrorNotUserAuthToken)
			return
		}
		if identity != nil {
			c.Set(IdentityKey, identity)
		}
		c.Next()
	}
}

// RequireAction rejects callers that are anonymous (401) or lack the permission (403)
// RequireAction 拒绝匿名调用者（401）或缺少权限的调用者（403）
func RequireAction(action rbac.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			apperrors.ErrorResponse(c, code.ErrorNotUserAuthToken)
			return
		}
		if !identity.Can(action) {
			apperrors.ErrorResponse(c, code.ErrorForbidden.WithDetails("missing permission "+string(action)))
			return
		}
		c.Next()
	}
}

// GetIdentity returns the caller set by SessionAuth, nil when anonymous
// GetIdentity 获取 SessionAuth 设置的调用者身份，匿名时为 nil
func GetIdentity(c *gin.Context) *domain.Identity {
	if v, ok := c.Get(IdentityKey); ok {
		if identity, ok := v.(*domain.Identity); ok {
			return identity
		}
	}
	return nil
}
