package dto

import "github.com/haierkeys/site-text-service/pkg/timex"

// WebSocketAction WebSocket text message type
// WebSocket 文本消息类型
type WebSocketAction = string

const (
	// Subscribe client chooses which text blocks to follow
	// Subscribe 客户端选择关注的文本块
	Subscribe WebSocketAction = "Subscribe"
	// Subscribed 订阅确认
	Subscribed WebSocketAction = "Subscribed"
	// TextBlockChanged text block written
	// TextBlockChanged 文本块已写入
	TextBlockChanged WebSocketAction = "TextBlockChanged"
	// TextBlockDeleted 文本块已删除
	TextBlockDeleted WebSocketAction = "TextBlockDeleted"
)

// WSSubscribeRequest 订阅参数，ids 为空表示全部
type WSSubscribeRequest struct {
	IDs []string `json:"ids"`
}

// WSSubscribedMessage 订阅确认
type WSSubscribedMessage struct {
	IDs []string `json:"ids"`
}

// TextBlockChangedMessage 文本块变更推送
type TextBlockChangedMessage struct {
	ID         string     `json:"id"`
	Version    int64      `json:"version"`
	Content    string     `json:"content"`
	Element    string     `json:"element"`
	UpdatedAt  timex.Time `json:"updatedAt"`
	ChangeType string     `json:"changeType"`
}

// TextBlockDeletedMessage 文本块删除推送
type TextBlockDeletedMessage struct {
	ID string `json:"id"`
}
