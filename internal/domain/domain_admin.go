// Package domain 定义领域模型和接口
package domain

import (
	"time"

	"github.com/haierkeys/site-text-service/internal/rbac"
)

// Admin an account allowed to sign in to the content admin
// Admin 可登录内容后台的账号
type Admin struct {
	Email        string
	Name         string
	Role         rbac.Role
	PasswordHash string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity the caller resolved from a session
// Identity 从会话解析出的调用者身份
type Identity struct {
	Email     string
	Name      string
	Role      rbac.Role
	SessionID string
}

// Can 判断身份是否可执行操作，nil 身份一律拒绝
func (i *Identity) Can(a rbac.Action) bool {
	if i == nil {
		return false
	}
	return rbac.Can(i.Role, a)
}

// Actor 写入历史记录的作者标识
func (i *Identity) Actor() string {
	if i == nil {
		return ""
	}
	return i.Email
}
