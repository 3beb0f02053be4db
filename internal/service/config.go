// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import "time"

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	Text   TextServiceConfig   // Text related config // 文本相关配置
	Auth   AuthServiceConfig   // Auth related config // 认证相关配置
	Backup BackupServiceConfig // Backup related config // 备份相关配置
}

// TextServiceConfig text service configuration
// TextServiceConfig 文本服务配置
type TextServiceConfig struct {
	HistoryDefaultLimit int // Default history page size // 历史记录默认条数
	HistoryMaxLimit     int // Upper bound for ?limit // 历史记录最大条数
}

// AuthServiceConfig auth service configuration
// AuthServiceConfig 认证服务配置
type AuthServiceConfig struct {
	MinPasswordLength int // Minimum password length for new admins // 新管理员最小密码长度
}

// BackupServiceConfig backup service configuration
// BackupServiceConfig 备份服务配置
type BackupServiceConfig struct {
	KeyPrefix string        // Object key prefix, e.g. backups // 备份对象键前缀
	Timeout   time.Duration // Upload timeout // 上传超时时间
}

// DefaultServiceConfig 默认服务配置
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Text: TextServiceConfig{
			HistoryDefaultLimit: 20,
			HistoryMaxLimit:     100,
		},
		Auth: AuthServiceConfig{
			MinPasswordLength: 8,
		},
		Backup: BackupServiceConfig{
			KeyPrefix: "backups",
			Timeout:   2 * time.Minute,
		},
	}
}

func (c *ServiceConfig) normalize() *ServiceConfig {
	def := DefaultServiceConfig()
	if c == nil {
		return def
	}
	out := *c
	if out.Text.HistoryDefaultLimit <= 0 {
		out.Text.HistoryDefaultLimit = def.Text.HistoryDefaultLimit
	}
	if out.Text.HistoryMaxLimit <= 0 {
		out.Text.HistoryMaxLimit = def.Text.HistoryMaxLimit
	}
	if out.Text.HistoryDefaultLimit > out.Text.HistoryMaxLimit {
		out.Text.HistoryDefaultLimit = out.Text.HistoryMaxLimit
	}
	if out.Auth.MinPasswordLength <= 0 {
		out.Auth.MinPasswordLength = def.Auth.MinPasswordLength
	}
	if out.Backup.KeyPrefix == "" {
		out.Backup.KeyPrefix = def.Backup.KeyPrefix
	}
	if out.Backup.Timeout <= 0 {
		out.Backup.Timeout = def.Backup.Timeout
	}
	return &out
}
