// Package local_fs local filesystem storage
// Package local_fs 本地文件系统存储
package local_fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/haierkeys/site-text-service/pkg/fileurl"

	"github.com/pkg/errors"
)

type Config struct {
	SavePath   string `yaml:"save-path" default:"storage/backups"`
	CustomPath string `yaml:"custom-path"`
}

type LocalFS struct {
	Config *Config
}

func NewClient(conf *Config) (*LocalFS, error) {
	if conf.SavePath == "" {
		return nil, errors.New("local_fs: save path is required")
	}
	c := *conf
	c.SavePath = fileurl.ResolvePath(c.SavePath, "")
	return &LocalFS{Config: &c}, nil
}

func (p *LocalFS) fullPath(fileKey string) string {
	return filepath.Join(p.Config.SavePath, filepath.FromSlash(fileurl.JoinKey(p.Config.CustomPath, fileKey)))
}

// SendContent writes content to disk and returns the absolute file path
// SendContent 写入磁盘并返回文件路径
func (p *LocalFS) SendContent(ctx context.Context, fileKey string, content []byte, contentType string) (string, error) {
	dst := p.fullPath(fileKey)
	if err := fileurl.CreatePath(dst, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", errors.Wrap(err, "local_fs")
	}
	return dst, nil
}

// Delete 删除文件，不存在时不报错
func (p *LocalFS) Delete(ctx context.Context, fileKey string) error {
	dst := p.fullPath(fileKey)
	if fileurl.IsExist(dst) {
		return errors.Wrap(os.Remove(dst), "local_fs")
	}
	return nil
}
