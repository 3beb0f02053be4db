package routers

import (
	"github.com/haierkeys/site-text-service/internal/dto"
	"github.com/haierkeys/site-text-service/pkg/validator"

	"github.com/gin-gonic/gin/binding"
	ut "github.com/go-playground/universal-translator"
)

// SetupValidator installs the binding validator with the request rules and returns its translators
// SetupValidator 安装带自定义规则的绑定校验器并返回翻译器
func SetupValidator() (*ut.UniversalTranslator, error) {
	v := validator.NewCustomValidator(dto.ValidationRules()...)
	uni, err := v.NewTranslator()
	if err != nil {
		return nil, err
	}
	binding.Validator = v
	return uni, nil
}
