package dto

import (
	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/rbac"
	"github.com/haierkeys/site-text-service/pkg/timex"
)

// AuthLoginRequest Sign-in parameters
// AuthLoginRequest 登录参数
type AuthLoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// AuthUserDTO Signed-in user
// AuthUserDTO 已登录用户信息
type AuthUserDTO struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// NewAuthUserDTO 由身份生成用户信息
func NewAuthUserDTO(i *domain.Identity) *AuthUserDTO {
	if i == nil {
		return nil
	}
	perms := rbac.Permissions(i.Role)
	out := &AuthUserDTO{
		Email:       i.Email,
		Name:        i.Name,
		Role:        string(i.Role),
		Permissions: make([]string, 0, len(perms)),
	}
	for _, p := range perms {
		out.Permissions = append(out.Permissions, string(p))
	}
	return out
}

// AuthLoginResponse 登录结果
type AuthLoginResponse struct {
	Success   bool         `json:"success"`
	User      *AuthUserDTO `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt timex.Time   `json:"expiresAt"`
}

// AuthStatusResponse 会话状态
type AuthStatusResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *AuthUserDTO `json:"user,omitempty"`
}

// AdminSetRequest 新增或更新管理员（命令行）
type AdminSetRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// AdminDTO 管理员信息
type AdminDTO struct {
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Role        string      `json:"role"`
	LastLoginAt *timex.Time `json:"lastLoginAt"`
	CreatedAt   timex.Time  `json:"createdAt"`
	UpdatedAt   timex.Time  `json:"updatedAt"`
}

// NewAdminDTO 领域模型转 DTO
func NewAdminDTO(a *domain.Admin) *AdminDTO {
	if a == nil {
		return nil
	}
	out := &AdminDTO{
		Email:     a.Email,
		Name:      a.Name,
		Role:      string(a.Role),
		CreatedAt: timex.Time(a.CreatedAt),
		UpdatedAt: timex.Time(a.UpdatedAt),
	}
	if a.LastLoginAt != nil {
		t := timex.Time(*a.LastLoginAt)
		out.LastLoginAt = &t
	}
	return out
}
