package upgrade

import (
	"context"

	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/model"
	"github.com/haierkeys/site-text-service/internal/rbac"

	"gorm.io/gorm"
)

// ElementBackfillMigrate 为早期没有 element 字段的文本块补齐默认标签
// 同时把无法识别的标签改回默认值
type ElementBackfillMigrate struct{}

func (m *ElementBackfillMigrate) Version() string {
	return "0.9.0"
}

func (m *ElementBackfillMigrate) Description() string {
	return "Backfill site_text.element with the default element"
}

func (m *ElementBackfillMigrate) Up(ctx context.Context, tx *gorm.DB) error {
	allowed := make([]string, 0, len(domain.Elements()))
	for _, el := range domain.Elements() {
		allowed = append(allowed, string(el))
	}
	return tx.WithContext(ctx).Model(&model.SiteText{}).
		Where("element IS NULL OR element NOT IN ?", allowed).
		Update("element", string(domain.DefaultElement)).Error
}

// RoleNormalizeMigrate 将未知角色降级为 viewer
type RoleNormalizeMigrate struct{}

func (m *RoleNormalizeMigrate) Version() string {
	return "1.0.0"
}

func (m *RoleNormalizeMigrate) Description() string {
	return "Normalize unknown site_admin roles to viewer"
}

func (m *RoleNormalizeMigrate) Up(ctx context.Context, tx *gorm.DB) error {
	roles := make([]string, 0, len(rbac.Roles()))
	for _, r := range rbac.Roles() {
		roles = append(roles, string(r))
	}
	return tx.WithContext(ctx).Model(&model.SiteAdmin{}).
		Where("role IS NULL OR role NOT IN ?", roles).
		Update("role", string(rbac.RoleViewer)).Error
}
