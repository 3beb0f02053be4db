// Package domain 定义领域模型和接口
package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// MaxTextBlockIDLength 文本块 ID 最大长度（字符）
const MaxTextBlockIDLength = 255

var (
	ErrTextBlockIDEmpty   = errors.New("text block id is empty")
	ErrTextBlockIDTooLong = errors.New("text block id is too long")
	ErrTextBlockIDInvalid = errors.New("text block id contains control characters")
)

// Element is the closed set of tags a text block may render as
// Element 文本块可渲染的标签集合（封闭枚举）
type Element string

const (
	ElementH1    Element = "h1"
	ElementH2    Element = "h2"
	ElementH3    Element = "h3"
	ElementH4    Element = "h4"
	ElementH5    Element = "h5"
	ElementH6    Element = "h6"
	ElementP     Element = "p"
	ElementSpan  Element = "span"
	ElementLi    Element = "li"
	ElementLabel Element = "label"

	DefaultElement = ElementP
)

var elements = []Element{
	ElementH1, ElementH2, ElementH3, ElementH4, ElementH5, ElementH6,
	ElementP, ElementSpan, ElementLi, ElementLabel,
}

// Elements 返回全部可用元素
func Elements() []Element {
	out := make([]Element, len(elements))
	copy(out, elements)
	return out
}

func (e Element) Valid() bool {
	for _, v := range elements {
		if v == e {
			return true
		}
	}
	return false
}

func (e Element) String() string {
	return string(e)
}

// ParseElement 解析元素名称，大小写不敏感
func ParseElement(s string) (Element, bool) {
	e := Element(strings.ToLower(strings.TrimSpace(s)))
	return e, e.Valid()
}

// ChangeType how a version came to exist
// ChangeType 版本的产生方式
type ChangeType string

const (
	ChangeTypeCreate  ChangeType = "create"
	ChangeTypeUpdate  ChangeType = "update"
	ChangeTypeRestore ChangeType = "restore"
)

// TextBlock 文本块当前状态领域模型
type TextBlock struct {
	ID        string
	Content   string
	Element   Element
	Page      string
	Section   string
	Version   int64
	UpdatedAt time.Time
	UpdatedBy string
}

// VersionRecord 文本块历史版本领域模型（只追加）
type VersionRecord struct {
	ID          string
	TextBlockID string
	Content     string
	Version     int64
	CreatedAt   time.Time
	CreatedBy   string
	ChangeType  ChangeType
}

// TextBlockFilter List 过滤条件，空字段表示不过滤
type TextBlockFilter struct {
	Page    string
	Section string
}

// NormalizeTextBlockID trims the id and checks its length and characters
// NormalizeTextBlockID 去除首尾空白并校验长度与字符
func NormalizeTextBlockID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrTextBlockIDEmpty
	}
	if utf8.RuneCountInString(id) > MaxTextBlockIDLength {
		return "", ErrTextBlockIDTooLong
	}
	for _, r := range id {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return "", ErrTextBlockIDInvalid
		}
	}
	return id, nil
}
