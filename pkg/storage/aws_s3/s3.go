// Package aws_s3 S3 compatible object storage (AWS S3, Cloudflare R2, MinIO)
// Package aws_s3 S3 兼容对象存储（AWS S3、Cloudflare R2、MinIO）
package aws_s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/haierkeys/site-text-service/pkg/fileurl"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	// Endpoint custom endpoint for MinIO or R2, empty for AWS
	// Endpoint MinIO 或 R2 的自定义地址，AWS 留空
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
	// UsePathStyle required by MinIO
	// UsePathStyle MinIO 需要路径风格访问
	UsePathStyle bool `yaml:"use-path-style"`
}

type S3 struct {
	Client *s3.Client
	Config *Config
	logger *zap.Logger
}

// Option 配置选项函数类型
type Option func(*S3)

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(s *S3) {
		s.logger = logger
	}
}

// R2Endpoint returns the S3 endpoint of a Cloudflare R2 account
// R2Endpoint 返回 Cloudflare R2 账号的 S3 地址
func R2Endpoint(accountID string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
}

// NewClient 创建 S3 兼容存储实例
func NewClient(ctx context.Context, conf *Config, opts ...Option) (*S3, error) {
	if conf.BucketName == "" {
		return nil, errors.New("aws_s3: bucket name is required")
	}
	region := conf.Region
	if region == "" {
		region = "auto"
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "aws_s3")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
		o.UsePathStyle = conf.UsePathStyle
	})

	p := &S3{
		Client: client,
		Config: conf,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// SendContent uploads content under the configured prefix and returns the object key
// SendContent 上传内容到配置的前缀下，返回对象键
func (p *S3) SendContent(ctx context.Context, fileKey string, content []byte, contentType string) (string, error) {
	fileKey = fileurl.JoinKey(p.Config.CustomPath, fileKey)

	_, err := p.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.Config.BucketName),
		Key:           aws.String(fileKey),
		Body:          bytes.NewReader(content),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(content))),
	})
	if err != nil {
		return "", errors.Wrap(err, "aws_s3")
	}

	p.logger.Debug("object uploaded",
		zap.String("bucket", p.Config.BucketName),
		zap.String("fileKey", fileKey),
		zap.Int("size", len(content)))
	return fileKey, nil
}

// Delete removes the object at fileKey
// Delete 删除对象
func (p *S3) Delete(ctx context.Context, fileKey string) error {
	fileKey = fileurl.JoinKey(p.Config.CustomPath, fileKey)

	_, err := p.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(fileKey),
	})
	return errors.Wrap(err, "aws_s3")
}
