package middleware

import (
	"github.com/haierkeys/site-text-service/pkg/app"
	"github.com/haierkeys/site-text-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// Lang picks the response language from ?lang, the lang header or Accept-Language
// Lang 依次从 ?lang、lang 请求头、Accept-Language 选择响应语言
func Lang(uni *ut.UniversalTranslator) gin.HandlerFunc {

	return func(c *gin.Context) {

		var raw string
		if s, exist := c.GetQuery("lang"); exist {
			raw = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			raw = s
		} else {
			raw = c.GetHeader("Accept-Language")
		}

		lang := code.GetGlobalDefaultLang()
		if raw != "" {
			lang = code.NormalizeLang(raw)
		}
		c.Set(app.LangKey, lang)

		if uni != nil {
			// zh_cn -> zh
			trans, found := uni.GetTranslator(lang)
			if !found && len(lang) >= 2 {
				trans, found = uni.GetTranslator(lang[:2])
			}
			if !found {
				trans, _ = uni.GetTranslator("en")
			}
			c.Set(app.TranslatorKey, trans)
		}

		c.Next()
	}
}
