package code

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Supported response languages
const (
	LangEn   = "en"
	LangZhCN = "zh_cn"
)

// lang 单条消息的多语言文本
type lang struct {
	en    string
	zh_cn string
}

var defaultLang atomic.Value // string

func init() {
	defaultLang.Store(LangEn)
}

// GetMessage 使用全局默认语言
func (l lang) GetMessage() string {
	return l.GetMessageIn(GetGlobalDefaultLang())
}

// GetMessageIn returns the text for language, falling back to English
// GetMessageIn 返回指定语言的文本，缺失时回退英文
func (l lang) GetMessageIn(language string) string {
	if language == LangZhCN && l.zh_cn != "" {
		return l.zh_cn
	}
	return l.en
}

// GetSupportedLanguages 支持的语言列表
func GetSupportedLanguages() []string {
	return []string{LangEn, LangZhCN}
}

// NormalizeLang maps an Accept-Language style value onto a supported language
// NormalizeLang 将 Accept-Language 风格的值映射为支持的语言，如 zh-CN -> zh_cn
func NormalizeLang(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if strings.HasPrefix(v, "zh") {
		return LangZhCN
	}
	return LangEn
}

// SetGlobalDefaultLang 设置全局默认语言，不支持的语言回退英文并返回错误
func SetGlobalDefaultLang(language string) error {
	for _, l := range GetSupportedLanguages() {
		if language == l {
			defaultLang.Store(l)
			return nil
		}
	}
	defaultLang.Store(LangEn)
	return fmt.Errorf("unsupported language %q, defaulting to %s", language, LangEn)
}

func GetGlobalDefaultLang() string {
	return defaultLang.Load().(string)
}
