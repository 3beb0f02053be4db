// Package validator adapts go-playground/validator to gin's binding interface
// Package validator 将 go-playground/validator 适配为 gin 的绑定校验器
package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Rule is a custom validation tag with its translated messages
// Rule 自定义校验标签及其翻译消息
type Rule struct {
	Tag  string
	Func validator.Func
	// Messages keyed by locale ("en", "zh"); "{0}" is replaced with the field name
	// Messages 按语言键入（"en"、"zh"），"{0}" 会被替换为字段名
	Messages map[string]string
}

// CustomValidator implements gin's binding.StructValidator
// CustomValidator 实现 gin 的 binding.StructValidator
type CustomValidator struct {
	once     sync.Once
	validate *validator.Validate
	rules    []Rule
}

func NewCustomValidator(rules ...Rule) *CustomValidator {
	return &CustomValidator{rules: rules}
}

// ValidateStruct validates structs, pointers to structs and slices of them
// ValidateStruct 校验结构体、结构体指针及其切片
func (v *CustomValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			return nil
		}
		return v.ValidateStruct(value.Elem().Interface())
	case reflect.Struct:
		v.lazyinit()
		return v.validate.Struct(obj)
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			if err := v.ValidateStruct(value.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// Engine returns the underlying *validator.Validate
// Engine 返回底层 *validator.Validate
func (v *CustomValidator) Engine() any {
	v.lazyinit()
	return v.validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New(validator.WithRequiredStructEnabled())
		v.validate.SetTagName("binding")
		v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
		for _, r := range v.rules {
			_ = v.validate.RegisterValidation(r.Tag, r.Func)
		}
	})
}

// NewTranslator registers en/zh translations, including custom rule messages
// NewTranslator 注册中英文翻译（包括自定义规则消息）
func (v *CustomValidator) NewTranslator() (*ut.UniversalTranslator, error) {
	v.lazyinit()

	uni := ut.New(en.New(), en.New(), zh.New())
	enTran, _ := uni.GetTranslator("en")
	zhTran, _ := uni.GetTranslator("zh")

	if err := en_translations.RegisterDefaultTranslations(v.validate, enTran); err != nil {
		return nil, err
	}
	if err := zh_translations.RegisterDefaultTranslations(v.validate, zhTran); err != nil {
		return nil, err
	}

	for _, r := range v.rules {
		for locale, msg := range r.Messages {
			trans, found := uni.GetTranslator(locale)
			if !found {
				continue
			}
			tag, text := r.Tag, msg
			err := v.validate.RegisterTranslation(tag, trans,
				func(t ut.Translator) error { return t.Add(tag, text, true) },
				func(t ut.Translator, fe validator.FieldError) string {
					s, err := t.T(tag, fe.Field())
					if err != nil {
						return fe.Error()
					}
					return s
				})
			if err != nil {
				return nil, err
			}
		}
	}

	return uni, nil
}
