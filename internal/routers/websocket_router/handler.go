// Package websocket_router 提供 WebSocket 路由处理器
package websocket_router

import (
	"github.com/haierkeys/site-text-service/internal/app"
	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/dto"
	pkgapp "github.com/haierkeys/site-text-service/pkg/app"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// WSHandler WebSocket 基础 Handler 结构体，封装 App Container
type WSHandler struct {
	App *app.App
}

// NewWSHandler 创建 WebSocket 基础 Handler 实例
func NewWSHandler(a *app.App) *WSHandler {
	return &WSHandler{App: a}
}

// TextWSHandler 文本块订阅处理器
type TextWSHandler struct {
	*WSHandler
}

// NewTextWSHandler 创建 TextWSHandler 实例
func NewTextWSHandler(a *app.App) *TextWSHandler {
	return &TextWSHandler{WSHandler: NewWSHandler(a)}
}

// Subscribe 设置客户端关注的文本块，ids 为空表示全部
// 消息格式：Subscribe|{"ids":["home.hero.title"]}
func (h *TextWSHandler) Subscribe(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.WSSubscribeRequest{}
	if len(msg.Data) > 0 {
		if err := sonic.Unmarshal(msg.Data, params); err != nil {
			h.App.Logger().Debug("TextWSHandler.Subscribe unmarshal", zap.Error(err))
			return
		}
	}

	ids := make([]string, 0, len(params.IDs))
	for _, raw := range params.IDs {
		id, err := domain.NormalizeTextBlockID(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	c.SetTopics(ids)

	if err := c.Send(dto.Subscribed, &dto.WSSubscribedMessage{IDs: ids}); err != nil {
		h.App.Logger().Debug("TextWSHandler.Subscribe send", zap.Error(err))
	}
}
