package dto

import (
	"strings"

	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/pkg/validator"

	govalidator "github.com/go-playground/validator/v10"
)

// ValidationRules custom binding tags used by the request structs
// ValidationRules 请求结构体使用的自定义校验标签
func ValidationRules() []validator.Rule {
	return []validator.Rule{
		{
			Tag: "textid",
			Func: func(fl govalidator.FieldLevel) bool {
				if strings.TrimSpace(fl.Field().String()) == "" {
					return true
				}
				_, err := domain.NormalizeTextBlockID(fl.Field().String())
				return err == nil
			},
			Messages: map[string]string{
				"en": "{0} must be a dotted path of at most 255 characters without control characters",
				"zh": "{0}必须是不超过255个字符且不含控制字符的路径",
			},
		},
		{
			// an empty element means "keep the current one"
			Tag: "element",
			Func: func(fl govalidator.FieldLevel) bool {
				s := fl.Field().String()
				if strings.TrimSpace(s) == "" {
					return true
				}
				_, ok := domain.ParseElement(s)
				return ok
			},
			Messages: map[string]string{
				"en": "{0} must be one of h1 h2 h3 h4 h5 h6 p span li label",
				"zh": "{0}必须是 h1 h2 h3 h4 h5 h6 p span li label 之一",
			},
		},
	}
}
