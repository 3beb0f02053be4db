// Package webdav WebDAV storage
// Package webdav WebDAV 存储
package webdav

import (
	"context"
	"path"

	"github.com/haierkeys/site-text-service/pkg/fileurl"

	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

// Config 结构体用于存储 WebDAV 连接信息。
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	CustomPath string `yaml:"custom-path"`
}

// WebDAV 结构体表示 WebDAV 客户端。
type WebDAV struct {
	Client *gowebdav.Client
	Config *Config
}

// NewClient 创建一个新的 WebDAV 客户端实例。
func NewClient(conf *Config) (*WebDAV, error) {
	if conf.Endpoint == "" {
		return nil, errors.New("webdav: endpoint is required")
	}
	c := gowebdav.NewClient(conf.Endpoint, conf.User, conf.Password)
	return &WebDAV{Client: c, Config: conf}, nil
}

// SendContent writes content, creating parent collections as needed
// SendContent 写入内容，按需创建父目录
func (w *WebDAV) SendContent(ctx context.Context, fileKey string, content []byte, contentType string) (string, error) {
	fileKey = "/" + fileurl.JoinKey(w.Config.CustomPath, fileKey)

	if err := w.Client.MkdirAll(path.Dir(fileKey), 0o755); err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	if err := w.Client.Write(fileKey, content, 0o644); err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	return fileKey, nil
}

// Delete 删除文件
func (w *WebDAV) Delete(ctx context.Context, fileKey string) error {
	fileKey = "/" + fileurl.JoinKey(w.Config.CustomPath, fileKey)
	return errors.Wrap(w.Client.Remove(fileKey), "webdav")
}
