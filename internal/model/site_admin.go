package model

import "github.com/haierkeys/site-text-service/pkg/timex"

const TableNameSiteAdmin = "site_admin"

// SiteAdmin mapped from table <site_admin>
type SiteAdmin struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	Email        string     `gorm:"column:email;size:255;not null;uniqueIndex:idx_site_admin_email" json:"email" form:"email"`
	Name         string     `gorm:"column:name;size:255" json:"name" form:"name"`
	Role         string     `gorm:"column:role;size:32;not null;default:viewer" json:"role" form:"role"`
	PasswordHash string     `gorm:"column:password_hash;size:255;not null" json:"-" form:"-"`
	LastLoginAt  timex.Time `gorm:"column:last_login_at" json:"lastLoginAt" form:"lastLoginAt"`
	CreatedAt    timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt    timex.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName SiteAdmin's table name
func (*SiteAdmin) TableName() string {
	return TableNameSiteAdmin
}
