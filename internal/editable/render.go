package editable

import (
	"html"
	"strings"

	"github.com/haierkeys/site-text-service/internal/domain"
)

// renderTable Element 到 HTML 标签的唯一映射
var renderTable = map[domain.Element]string{
	domain.ElementH1:    "h1",
	domain.ElementH2:    "h2",
	domain.ElementH3:    "h3",
	domain.ElementH4:    "h4",
	domain.ElementH5:    "h5",
	domain.ElementH6:    "h6",
	domain.ElementP:     "p",
	domain.ElementSpan:  "span",
	domain.ElementLi:    "li",
	domain.ElementLabel: "label",
}

// Tag 元素对应的标签，未知元素使用默认元素
func Tag(e domain.Element) string {
	if tag, ok := renderTable[e]; ok {
		return tag
	}
	return renderTable[domain.DefaultElement]
}

// Render writes the control's markup. Text is always escaped.
// Render 输出控件 HTML，文本一律转义
func Render(v View) string {
	tag := Tag(v.Element)
	text := v.Displayed
	if v.State == StateEditing {
		text = v.Buffer
	}

	var b strings.Builder
	b.WriteString("<")
	b.WriteString(tag)
	attr(&b, "data-text-id", v.ID)
	if v.ClassName != "" {
		attr(&b, "class", v.ClassName)
	}
	if v.EditMode {
		attr(&b, "data-editable", "true")
	}
	switch v.State {
	case StateEditing:
		attr(&b, "contenteditable", "true")
	case StateSaving:
		attr(&b, "aria-busy", "true")
	}
	b.WriteString(">")
	b.WriteString(html.EscapeString(text))
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">")
	return b.String()
}

func attr(b *strings.Builder, name, value string) {
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteString(`"`)
}
