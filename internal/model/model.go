// Package model 定义数据模型
package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Models 全部需要迁移的模型
func Models() []interface{} {
	return []interface{}{
		&SiteText{},
		&SiteTextHistory{},
		&SiteAdmin{},
		&SchemaVersion{},
	}
}

// AutoMigrate migrates the model registered under key, or every model when key is empty
// AutoMigrate 迁移指定 key 的模型，key 为空时迁移全部
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "":
		return db.AutoMigrate(Models()...)
	case "SiteText":
		return db.AutoMigrate(&SiteText{})
	case "SiteTextHistory":
		return db.AutoMigrate(&SiteTextHistory{})
	case "SiteAdmin":
		return db.AutoMigrate(&SiteAdmin{})
	case "SchemaVersion":
		return db.AutoMigrate(&SchemaVersion{})
	}
	return fmt.Errorf("model: unknown migration key %q", key)
}
