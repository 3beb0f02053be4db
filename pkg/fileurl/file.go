// Package fileurl path and object key helpers
// Package fileurl 路径与对象键辅助函数
package fileurl

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IsExist determines if the given path exists
// IsExist 判断所给路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// CreatePath creates the parent directory of dst
// CreatePath 创建 dst 的父目录
func CreatePath(dst string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(dst), perm)
}

// JoinKey joins an object key onto a prefix with "/" and strips any ".." segments
// JoinKey 以 "/" 拼接对象键前缀，并移除 ".." 片段
func JoinKey(prefix, key string) string {
	cleaned := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	prefix = strings.Trim(strings.ReplaceAll(prefix, "\\", "/"), "/")
	if prefix == "" {
		return cleaned
	}
	return prefix + "/" + cleaned
}

// ResolvePath makes p absolute relative to root, or to the working directory when root is empty
// ResolvePath 将 p 转为绝对路径，root 为空时相对于当前工作目录
func ResolvePath(p, root string) string {
	if filepath.IsAbs(p) {
		return p
	}
	if root == "" {
		root, _ = os.Getwd()
	}
	return filepath.Join(root, p)
}
