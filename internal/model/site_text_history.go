package model

import "github.com/haierkeys/site-text-service/pkg/timex"

const TableNameSiteTextHistory = "site_text_history"

// SiteTextHistory mapped from table <site_text_history>
// (text_block_id, version) is unique so two writers can never record the same version
type SiteTextHistory struct {
	ID          string     `gorm:"column:id;primaryKey;size:36" json:"id" form:"id"`
	TextBlockID string     `gorm:"column:text_block_id;size:255;not null;uniqueIndex:idx_site_text_history_block_version,priority:1" json:"textBlockId" form:"textBlockId"`
	Content     string     `gorm:"column:content;type:text;not null" json:"content" form:"content"`
	Version     int64      `gorm:"column:version;not null;uniqueIndex:idx_site_text_history_block_version,priority:2" json:"version" form:"version"`
	ChangeType  string     `gorm:"column:change_type;size:16;not null" json:"changeType" form:"changeType"`
	CreatedAt   timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	CreatedBy   string     `gorm:"column:created_by;size:255" json:"createdBy" form:"createdBy"`
}

// TableName SiteTextHistory's table name
func (*SiteTextHistory) TableName() string {
	return TableNameSiteTextHistory
}
