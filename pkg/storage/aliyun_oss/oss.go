// Package aliyun_oss Aliyun OSS object storage
// Package aliyun_oss 阿里云 OSS 对象存储
package aliyun_oss

import (
	"bytes"
	"context"

	"github.com/haierkeys/site-text-service/pkg/fileurl"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
)

type Config struct {
	Endpoint        string `yaml:"endpoint"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
}

type OSS struct {
	Client *oss.Client
	Bucket *oss.Bucket
	Config *Config
}

// NewClient 创建 OSS 存储实例
func NewClient(conf *Config) (*OSS, error) {
	client, err := oss.New(conf.Endpoint, conf.AccessKeyID, conf.AccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	bucket, err := client.Bucket(conf.BucketName)
	if err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	return &OSS{Client: client, Bucket: bucket, Config: conf}, nil
}

// SendContent 上传内容，返回对象键
func (p *OSS) SendContent(ctx context.Context, fileKey string, content []byte, contentType string) (string, error) {
	fileKey = fileurl.JoinKey(p.Config.CustomPath, fileKey)
	err := p.Bucket.PutObject(fileKey, bytes.NewReader(content), oss.ContentType(contentType), oss.WithContext(ctx))
	if err != nil {
		return "", errors.Wrap(err, "aliyun_oss")
	}
	return fileKey, nil
}

// Delete 删除对象
func (p *OSS) Delete(ctx context.Context, fileKey string) error {
	fileKey = fileurl.JoinKey(p.Config.CustomPath, fileKey)
	return errors.Wrap(p.Bucket.DeleteObject(fileKey, oss.WithContext(ctx)), "aliyun_oss")
}
