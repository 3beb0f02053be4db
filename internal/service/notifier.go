package service

import (
	"context"

	"github.com/haierkeys/site-text-service/internal/domain"
)

// Notifier receives committed text block changes, e.g. to push them to websocket subscribers
// Notifier 接收已提交的文本块变更，例如推送给 websocket 订阅者
type Notifier interface {
	TextBlockChanged(ctx context.Context, block *domain.TextBlock, changeType domain.ChangeType)
	TextBlockDeleted(ctx context.Context, id string)
}

// NopNotifier discards every event
// NopNotifier 丢弃所有事件
type NopNotifier struct{}

func (NopNotifier) TextBlockChanged(context.Context, *domain.TextBlock, domain.ChangeType) {}

func (NopNotifier) TextBlockDeleted(context.Context, string) {}
