package util

import (
	"regexp"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail 校验邮箱格式
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
