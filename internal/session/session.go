// Package session stores issued admin sessions so tokens can be revoked
// Package session 保存已签发的管理会话，使令牌可被撤销
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/haierkeys/site-text-service/internal/rbac"
)

// ErrUnavailable 会话存储不可用
var ErrUnavailable = errors.New("session store unavailable")

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Session 会话
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      rbac.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired 会话是否已过期
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store 会话存储接口
type Store interface {
	// Save 保存会话，过期时间取 ExpiresAt
	Save(ctx context.Context, s *Session) error
	// Get 获取会话，不存在或已过期时返回 nil, nil
	Get(ctx context.Context, id string) (*Session, error)
	// Delete 删除会话，不存在时不报错
	Delete(ctx context.Context, id string) error
	Close() error
}

// Config 会话存储配置
type Config struct {
	// Store memory or redis
	// Store 存储类型：memory 或 redis
	Store     string `yaml:"store" default:"memory"`
	RedisURL  string `yaml:"redis-url"`
	KeyPrefix string `yaml:"key-prefix" default:"site-text:session:"`
}

// NewStore 按配置创建会话存储
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "", StoreMemory:
		return NewMemoryStore(), nil
	case StoreRedis:
		return NewRedisStore(ctx, cfg.RedisURL, cfg.KeyPrefix)
	}
	return nil, errors.New("session: unknown store " + cfg.Store)
}
