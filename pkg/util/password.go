package util

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes bcrypt only reads the first 72 bytes
const MaxPasswordBytes = 72

// ErrPasswordTooLong 密码超过 bcrypt 可处理的长度
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// GeneratePasswordHash 生成 bcrypt 密码哈希，超长密码直接拒绝而不是静默截断
func GeneratePasswordHash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash 校验密码；哈希格式错误同样视为不匹配
func CheckPasswordHash(hash, password string) bool {
	if hash == "" || len(password) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
