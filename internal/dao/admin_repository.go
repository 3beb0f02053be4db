// Package dao 实现数据访问层
package dao

import (
	"context"
	"strings"
	"time"

	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/model"
	"github.com/haierkeys/site-text-service/internal/rbac"
	"github.com/haierkeys/site-text-service/pkg/timex"

	"gorm.io/gorm"
)

// adminRepository 实现 domain.AdminRepository 接口
type adminRepository struct {
	dao *Dao
}

// NewAdminRepository 创建 AdminRepository 实例
func NewAdminRepository(dao *Dao) domain.AdminRepository {
	return &adminRepository{dao: dao}
}

func (r *adminRepository) toDomain(m *model.SiteAdmin) *domain.Admin {
	if m == nil {
		return nil
	}
	a := &domain.Admin{
		Email:        m.Email,
		Name:         m.Name,
		Role:         rbac.Normalize(m.Role),
		PasswordHash: m.PasswordHash,
		CreatedAt:    time.Time(m.CreatedAt),
		UpdatedAt:    time.Time(m.UpdatedAt),
	}
	if !m.LastLoginAt.IsZero() {
		t := time.Time(m.LastLoginAt)
		a.LastLoginAt = &t
	}
	return a
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *adminRepository) find(db *gorm.DB, email string) (*model.SiteAdmin, error) {
	var rows []*model.SiteAdmin
	if err := db.Where("email = ?", normalizeEmail(email)).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// GetByEmail 获取管理员，不存在时返回 nil, nil
func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	m, err := r.find(r.dao.WithContext(ctx), email)
	if err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// List 按邮箱排序列出管理员
func (r *adminRepository) List(ctx context.Context) ([]*domain.Admin, error) {
	var rows []*model.SiteAdmin
	if err := r.dao.WithContext(ctx).Order("email ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.Admin, 0, len(rows))
	for _, m := range rows {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// Save 按邮箱新增或更新管理员
func (r *adminRepository) Save(ctx context.Context, admin *domain.Admin) (*domain.Admin, error) {
	email := normalizeEmail(admin.Email)
	var saved *model.SiteAdmin

	err := r.dao.ExecuteWrite(ctx, "site_admin_"+email, func(tx *gorm.DB) error {
		now := timex.Now()
		m, err := r.find(tx, email)
		if err != nil {
			return err
		}
		if m == nil {
			m = &model.SiteAdmin{
				Email:     email,
				CreatedAt: now,
			}
		}
		m.Name = admin.Name
		m.Role = string(rbac.Normalize(string(admin.Role)))
		if admin.PasswordHash != "" {
			m.PasswordHash = admin.PasswordHash
		}
		m.UpdatedAt = now
		saved = m
		return tx.Save(m).Error
	})
	if err != nil {
		return nil, err
	}
	return r.toDomain(saved), nil
}

// Delete 删除管理员
func (r *adminRepository) Delete(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	var affected int64
	err := r.dao.ExecuteWrite(ctx, "site_admin_"+email, func(tx *gorm.DB) error {
		res := tx.Where("email = ?", email).Delete(&model.SiteAdmin{})
		affected = res.RowsAffected
		return res.Error
	})
	return affected > 0, err
}

// UpdateLastLogin 更新最后登录时间
func (r *adminRepository) UpdateLastLogin(ctx context.Context, email string, at time.Time) error {
	email = normalizeEmail(email)
	return r.dao.ExecuteWrite(ctx, "site_admin_"+email, func(tx *gorm.DB) error {
		return tx.Model(&model.SiteAdmin{}).
			Where("email = ?", email).
			Update("last_login_at", timex.Time(at.UTC())).Error
	})
}
