package model

import "github.com/haierkeys/site-text-service/pkg/timex"

const TableNameSiteText = "site_text"

// SiteText mapped from table <site_text>
type SiteText struct {
	ID        string     `gorm:"column:id;primaryKey;size:255" json:"id" form:"id"`
	Content   string     `gorm:"column:content;type:text;not null" json:"content" form:"content"`
	Element   string     `gorm:"column:element;size:16;not null;default:p" json:"element" form:"element"`
	Page      string     `gorm:"column:page;size:128;index:idx_site_text_page" json:"page" form:"page"`
	Section   string     `gorm:"column:section;size:128;index:idx_site_text_section" json:"section" form:"section"`
	Version   int64      `gorm:"column:version;not null;default:1" json:"version" form:"version"`
	UpdatedAt timex.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
	UpdatedBy string     `gorm:"column:updated_by;size:255" json:"updatedBy" form:"updatedBy"`
}

// TableName SiteText's table name
func (*SiteText) TableName() string {
	return TableNameSiteText
}
