package editable

import "strings"

// Key 键盘事件
type Key struct {
	Name string // KeyboardEvent.key，如 "Escape"、"Enter"、"e"
	Ctrl bool
	Meta bool // macOS Cmd
}

const (
	KeyEscape = "Escape"
	KeyEnter  = "Enter"
)

func (k Key) modifier() bool {
	return k.Ctrl || k.Meta
}

func (k Key) isEscape() bool {
	return k.Name == KeyEscape
}

// isSave Ctrl/Cmd+Enter
func (k Key) isSave() bool {
	return k.Name == KeyEnter && k.modifier()
}

// isToggleEditMode Ctrl/Cmd+E
func (k Key) isToggleEditMode() bool {
	return k.modifier() && strings.EqualFold(k.Name, "e")
}
