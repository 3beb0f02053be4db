package model

import "github.com/haierkeys/site-text-service/pkg/timex"

const TableNameSchemaVersion = "schema_version"

// SchemaVersion records one applied upgrade migration
// SchemaVersion 记录一次已执行的升级迁移
type SchemaVersion struct {
	Version   string     `gorm:"column:version;primaryKey;size:32" json:"version"`
	Name      string     `gorm:"column:name;size:128" json:"name"`
	AppliedAt timex.Time `gorm:"column:applied_at" json:"appliedAt"`
}

// TableName SchemaVersion's table name
func (*SchemaVersion) TableName() string {
	return TableNameSchemaVersion
}
