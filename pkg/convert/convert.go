package convert

import (
	"strconv"
	"strings"
)

// StrTo converts query and form strings to typed values
// StrTo 将查询或表单字符串转换为具体类型
type StrTo string

func (s StrTo) String() string {
	return string(s)
}

func (s StrTo) Int() (int, error) {
	return strconv.Atoi(strings.TrimSpace(s.String()))
}

func (s StrTo) MustInt() int {
	v, _ := s.Int()
	return v
}

// Bool accepts 1/0, true/false, yes/no, on/off
// Bool 支持 1/0、true/false、yes/no、on/off
func (s StrTo) Bool() bool {
	switch strings.ToLower(strings.TrimSpace(s.String())) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
