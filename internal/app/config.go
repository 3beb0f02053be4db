// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/haierkeys/site-text-service/internal/dao"
	"github.com/haierkeys/site-text-service/internal/middleware"
	"github.com/haierkeys/site-text-service/internal/service"
	"github.com/haierkeys/site-text-service/internal/session"
	pkgapp "github.com/haierkeys/site-text-service/pkg/app"
	"github.com/haierkeys/site-text-service/pkg/storage"
	"github.com/haierkeys/site-text-service/pkg/util"
	"github.com/haierkeys/site-text-service/pkg/workerpool"
	"github.com/haierkeys/site-text-service/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量覆盖前缀
const EnvPrefix = "SITE_TEXT_"

// AppConfig 应用配置
type AppConfig struct {
	File     string                  `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig            `yaml:"server"`
	Log      LogConfig               `yaml:"log"`
	Database DatabaseConfig          `yaml:"database"`
	App      AppSettings             `yaml:"app"`
	Security SecurityConfig          `yaml:"security"`
	Session  session.Config          `yaml:"session"`
	Storage  storage.Config          `yaml:"storage"`
	Backup   BackupConfig            `yaml:"backup"`
	Tracer   middleware.TracerConfig `yaml:"tracer"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时只输出到 stderr
	File string `yaml:"file" default:"storage/logs/site-text.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式：debug、release、test
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 监听地址
	HttpPort string `yaml:"http-port" default:":9100"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址（/debug），为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9101"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthTokenKey string `yaml:"auth-token-key" default:"site-text-Auth-Token"`
	// TokenExpiry 会话有效期，支持格式：7d（天）、24h（小时）、30m（分钟）
	TokenExpiry string `yaml:"token-expiry" default:"7d"`
	TokenIssuer string `yaml:"token-issuer" default:"site-text-service"`
	// CookieName 会话 Cookie 名称
	CookieName string `yaml:"cookie-name" default:"site_text_session"`
	// CookieSecure 仅通过 HTTPS 发送 Cookie
	CookieSecure bool `yaml:"cookie-secure"`
	// MinPasswordLength 管理员密码最小长度
	MinPasswordLength int `yaml:"min-password-length" default:"8"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型：sqlite、mysql、postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path     string `yaml:"path" default:"storage/database/site-text.sqlite3"`
	UserName string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset" default:"utf8mb4"`
	SSLMode  string `yaml:"ssl-mode" default:"disable"`
	// Replicas 只读副本 DSN 列表
	Replicas []string `yaml:"replicas"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	ParseTime   bool `yaml:"parse-time" default:"true"`
	// MaxIdleConns 最大闲置连接数，默认 10
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数，默认 100
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m（分钟）、1h（小时），默认 30m
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期，默认 10m
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultLang 错误消息默认语言，en 或 zh_cn
	DefaultLang string `yaml:"default-lang" default:"en"`
	// DefaultContextTimeout 默认请求上下文超时（秒），0 表示不限制
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// HistoryDefaultLimit 历史记录默认条数
	HistoryDefaultLimit int `yaml:"history-default-limit" default:"20"`
	// HistoryMaxLimit 历史记录最大条数
	HistoryMaxLimit int `yaml:"history-max-limit" default:"100"`

	// Worker Pool 配置
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"16"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"256"`

	// Write Queue 配置
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
}

// BackupConfig 备份配置
type BackupConfig struct {
	// Enabled 是否启用定时备份，同时需要配置 storage.type
	Enabled bool `yaml:"enabled"`
	// Cron 定时表达式，支持 @every 1h 等写法
	Cron string `yaml:"cron" default:"@daily"`
	// KeyPrefix 备份对象键前缀
	KeyPrefix string `yaml:"key-prefix" default:"backups"`
	// Timeout 单次上传超时
	Timeout string `yaml:"timeout" default:"2m"`
}

// LoadConfig reads f, fills defaults, then applies .env files and SITE_TEXT_* variables.
// It returns the config and the absolute path it was read from.
// LoadConfig 读取配置并依次应用默认值、.env 与 SITE_TEXT_* 环境变量，返回配置与其绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrapf(err, "read config %s", realpath)
	}
	c, err := ParseConfig(data)
	if err != nil {
		return nil, realpath, errors.WithMessage(err, realpath)
	}
	c.File = realpath

	LoadDotEnv(filepath.Dir(realpath))
	c.ApplyEnv(os.LookupEnv)
	return c, realpath, nil
}

// ParseConfig decodes YAML over the defaults. Defaults are applied again afterwards
// because an explicit empty value in YAML zeroes the field.
// ParseConfig 在默认值之上解析 YAML；YAML 中的空值会清零字段，因此解析后再补一次默认值
func ParseConfig(data []byte) (*AppConfig, error) {
	c := new(AppConfig)
	for _, step := range []func() error{
		func() error { return defaults.Set(c) },
		func() error { return yaml.Unmarshal(data, c) },
		func() error { return defaults.Set(c) },
	} {
		if err := step(); err != nil {
			return nil, errors.Wrap(err, "parse config")
		}
	}
	return c, nil
}

// LoadDotEnv loads .env.local and .env from the working directory and dir.
// Variables already set in the process environment win.
// LoadDotEnv 加载工作目录及 dir 下的 .env.local、.env，已存在的环境变量优先
func LoadDotEnv(dir string) []string {
	var loaded []string
	seen := map[string]bool{}
	for _, base := range []string{".", dir} {
		for _, name := range []string{".env.local", ".env"} {
			p, err := filepath.Abs(filepath.Join(base, name))
			if err != nil || seen[p] {
				continue
			}
			seen[p] = true
			if _, err := os.Stat(p); err == nil {
				loaded = append(loaded, p)
			}
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}

// ApplyEnv overrides selected fields from SITE_TEXT_* variables
// ApplyEnv 使用 SITE_TEXT_* 环境变量覆盖部分配置
func (c *AppConfig) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				*dst = b
			}
		}
	}

	str("HTTP_PORT", &c.Server.HttpPort)
	str("RUN_MODE", &c.Server.RunMode)
	str("LOG_LEVEL", &c.Log.Level)
	str("DB_TYPE", &c.Database.Type)
	str("DB_PATH", &c.Database.Path)
	str("DB_HOST", &c.Database.Host)
	str("DB_NAME", &c.Database.Name)
	str("DB_USER", &c.Database.UserName)
	str("DB_PASSWORD", &c.Database.Password)
	str("AUTH_TOKEN_KEY", &c.Security.AuthTokenKey)
	str("TOKEN_EXPIRY", &c.Security.TokenExpiry)
	str("SESSION_STORE", &c.Session.Store)
	str("REDIS_URL", &c.Session.RedisURL)
	str("STORAGE_TYPE", &c.Storage.Type)
	boolean("BACKUP_ENABLED", &c.Backup.Enabled)
	boolean("COOKIE_SECURE", &c.Security.CookieSecure)
}

// GetDatabaseConfig 转换为 dao.DatabaseConfig
func (c *AppConfig) GetDatabaseConfig() dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Name:            c.Database.Name,
		Charset:         c.Database.Charset,
		SSLMode:         c.Database.SSLMode,
		Replicas:        c.Database.Replicas,
		AutoMigrate:     c.Database.AutoMigrate,
		ParseTime:       c.Database.ParseTime,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: util.MustParseDuration(c.Database.ConnMaxLifetime, 30*time.Minute),
		ConnMaxIdleTime: util.MustParseDuration(c.Database.ConnMaxIdleTime, 10*time.Minute),
		Tracing:         c.Tracer.Enabled,
		RunMode:         c.Server.RunMode,
	}
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()

	if c.App.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.App.WorkerPoolMaxWorkers
	}
	if c.App.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.App.WorkerPoolQueueSize
	}

	return cfg
}

// GetWriteQueueConfig 获取写队列配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()

	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	cfg.WriteTimeout = util.MustParseDuration(c.App.WriteQueueTimeout, cfg.WriteTimeout)

	return cfg
}

// GetTokenConfig 获取会话 Token 配置
func (c *AppConfig) GetTokenConfig() pkgapp.TokenConfig {
	return pkgapp.TokenConfig{
		SecretKey: c.Security.AuthTokenKey,
		Expiry:    util.MustParseDuration(c.Security.TokenExpiry, 7*24*time.Hour),
		Issuer:    c.Security.TokenIssuer,
	}
}

// GetServiceConfig 获取服务层配置
func (c *AppConfig) GetServiceConfig() *service.ServiceConfig {
	def := service.DefaultServiceConfig()
	return &service.ServiceConfig{
		Text: service.TextServiceConfig{
			HistoryDefaultLimit: c.App.HistoryDefaultLimit,
			HistoryMaxLimit:     c.App.HistoryMaxLimit,
		},
		Auth: service.AuthServiceConfig{
			MinPasswordLength: c.Security.MinPasswordLength,
		},
		Backup: service.BackupServiceConfig{
			KeyPrefix: c.Backup.KeyPrefix,
			Timeout:   util.MustParseDuration(c.Backup.Timeout, def.Backup.Timeout),
		},
	}
}

// GetContextTimeout 获取请求上下文超时
func (c *AppConfig) GetContextTimeout() time.Duration {
	if c.App.DefaultContextTimeout <= 0 {
		return 0
	}
	return time.Duration(c.App.DefaultContextTimeout) * time.Second
}
