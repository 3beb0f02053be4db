// Package editable 页面内联编辑控件：默认文本先渲染，再用服务端内容替换，保存失败时回滚
package editable

import (
	"slices"

	"github.com/haierkeys/site-text-service/internal/dto"
	"github.com/haierkeys/site-text-service/internal/rbac"
)

// EditContext is passed explicitly to every control; editing needs both gates
// EditContext 显式传给每个控件的编辑上下文，身份与编辑模式两个条件都满足才可编辑
type EditContext struct {
	// Identity 当前登录用户，匿名时为 nil
	Identity *dto.AuthUserDTO
	// CanEdit 身份是否拥有 content.edit 权限
	CanEdit bool
	// EditModeActive 页面级编辑模式开关
	EditModeActive bool
}

// NewEditContext 由会话状态构建上下文，CanEdit 取自权限列表
func NewEditContext(identity *dto.AuthUserDTO, editMode bool) EditContext {
	return EditContext{
		Identity:       identity,
		CanEdit:        canEdit(identity),
		EditModeActive: editMode,
	}
}

func canEdit(identity *dto.AuthUserDTO) bool {
	if identity == nil {
		return false
	}
	return slices.Contains(identity.Permissions, string(rbac.ActionContentEdit))
}

// Editable 两个条件同时满足
func (c EditContext) Editable() bool {
	return c.CanEdit && c.EditModeActive
}

// WithEditMode 返回切换编辑模式后的副本
func (c EditContext) WithEditMode(active bool) EditContext {
	c.EditModeActive = active
	return c
}
