// Package storage backup destinations behind one Storager interface
// Package storage 备份存储目标的统一 Storager 接口
package storage

import (
	"context"
	"strings"

	"github.com/haierkeys/site-text-service/pkg/code"
	"github.com/haierkeys/site-text-service/pkg/storage/aliyun_oss"
	"github.com/haierkeys/site-text-service/pkg/storage/aws_s3"
	"github.com/haierkeys/site-text-service/pkg/storage/local_fs"
	"github.com/haierkeys/site-text-service/pkg/storage/webdav"

	"go.uber.org/zap"
)

type Type = string

const (
	LOCAL  Type = "localfs"
	S3     Type = "s3"
	R2     Type = "r2"
	MinIO  Type = "minio"
	OSS    Type = "oss"
	WebDAV Type = "webdav"
)

var StorageTypeMap = map[Type]bool{
	LOCAL:  true,
	S3:     true,
	R2:     true,
	MinIO:  true,
	OSS:    true,
	WebDAV: true,
}

// Config Unified storage configuration
// Config 统一存储配置
type Config struct {
	Type       Type   `yaml:"type"`
	CustomPath string `yaml:"custom-path" default:"site-text"`

	// Cloud Storage (S3/OSS/MinIO/R2)
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	AccountID       string `yaml:"account-id"` // Cloudflare R2
	UsePathStyle    bool   `yaml:"use-path-style"`

	// WebDAV
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// Local FS
	SavePath string `yaml:"save-path" default:"storage/backups"`
}

// Enabled reports whether a storage type is configured
// Enabled 是否配置了存储类型
func (c *Config) Enabled() bool {
	return c != nil && strings.TrimSpace(c.Type) != ""
}

type Storager interface {
	// SendContent stores content under key and returns where it landed
	// SendContent 以 key 存储内容，返回实际位置
	SendContent(ctx context.Context, key string, content []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewClient builds the Storager for config.Type
// NewClient 按 config.Type 构建存储客户端
func NewClient(ctx context.Context, config *Config, logger *zap.Logger) (Storager, error) {
	if !config.Enabled() {
		return nil, code.ErrorBackupStorageNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(strings.TrimSpace(config.Type)) {
	case LOCAL:
		return local_fs.NewClient(&local_fs.Config{
			SavePath:   config.SavePath,
			CustomPath: config.CustomPath,
		})
	case S3, MinIO, R2:
		conf := &aws_s3.Config{
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
			UsePathStyle:    config.UsePathStyle,
		}
		switch strings.ToLower(config.Type) {
		case MinIO:
			conf.UsePathStyle = true
		case R2:
			if conf.Endpoint == "" && config.AccountID != "" {
				conf.Endpoint = aws_s3.R2Endpoint(config.AccountID)
			}
			conf.Region = "auto"
		}
		return aws_s3.NewClient(ctx, conf, aws_s3.WithLogger(logger))
	case OSS:
		return aliyun_oss.NewClient(&aliyun_oss.Config{
			Endpoint:        config.Endpoint,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		})
	case WebDAV:
		return webdav.NewClient(&webdav.Config{
			Endpoint:   config.Endpoint,
			User:       config.User,
			Password:   config.Password,
			CustomPath: config.CustomPath,
		})
	}
	return nil, code.ErrorBackupStorageNotConfigured.WithDetails("unknown storage type: " + config.Type)
}
