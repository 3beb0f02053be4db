package app

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultTokenIssuer = "site-text-service"
	DefaultTokenExpiry = 7 * 24 * time.Hour
)

var errIncompleteClaims = errors.New("token is missing session id or subject")

// TokenConfig 会话 Token 配置；Expiry 为 0 时使用 DefaultTokenExpiry
type TokenConfig struct {
	SecretKey string        `yaml:"secret-key"`
	Expiry    time.Duration `yaml:"expiry"`
	Issuer    string        `yaml:"issuer"`
}

// SessionClaims are carried by a session token. Subject is the account email
// and ID the server-side session id.
// SessionClaims 会话 Token 声明，Subject 为账号邮箱，ID 为会话 ID
type SessionClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies session tokens
type TokenManager interface {
	Generate(sessionID, email, name, role string) (string, time.Time, error)
	Parse(token string) (*SessionClaims, error)
	Expiry() time.Duration
}

// hmacTokens HS256 签名的 TokenManager
type hmacTokens struct {
	key    []byte
	expiry time.Duration
	issuer string
	parser *jwt.Parser
}

func NewTokenManager(cfg TokenConfig) TokenManager {
	if cfg.Expiry == 0 {
		cfg.Expiry = DefaultTokenExpiry
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultTokenIssuer
	}
	return &hmacTokens{
		key:    []byte(cfg.SecretKey),
		expiry: cfg.Expiry,
		issuer: cfg.Issuer,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// Generate 签发 Token，返回 Token 与过期时间
func (t *hmacTokens) Generate(sessionID, email, name, role string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(t.expiry)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionClaims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   email,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}).SignedString(t.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Parse verifies signature, issuer and expiry, and requires both session id and subject
// Parse 校验签名、签发者与有效期，且要求会话 ID 与 Subject 非空
func (t *hmacTokens) Parse(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if _, err := t.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.key, nil
	}); err != nil {
		return nil, err
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, errIncompleteClaims
	}
	return claims, nil
}

func (t *hmacTokens) Expiry() time.Duration {
	return t.expiry
}

// GetRequestToken reads the session token from the cookie, the Authorization header,
// the token header and the token query, first match wins
// GetRequestToken 依次从 Cookie、Authorization 头、token 头、token 查询参数读取会话 Token
func GetRequestToken(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil && v != "" {
			return v
		}
	}
	if v := c.GetHeader("Authorization"); v != "" {
		v, _ = strings.CutPrefix(v, "Bearer ")
		return strings.TrimSpace(v)
	}
	if v := c.GetHeader("token"); v != "" {
		return v
	}
	return c.Query("token")
}
