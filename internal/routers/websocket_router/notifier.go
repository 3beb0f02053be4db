package websocket_router

import (
	"context"

	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/dto"
	"github.com/haierkeys/site-text-service/pkg/app"
	"github.com/haierkeys/site-text-service/pkg/logger"
	"github.com/haierkeys/site-text-service/pkg/timex"

	"go.uber.org/zap"
)

// Publisher publishes a message to subscribers of a topic
// Publisher 向某主题的订阅者发布消息
type Publisher interface {
	Publish(action, topic string, content any) (int, error)
}

// Submitter runs fn in the background
// Submitter 在后台执行任务
type Submitter interface {
	SubmitTaskAsync(ctx context.Context, name string, fn func(context.Context) error) error
}

// Notifier pushes committed text block changes to websocket subscribers.
// Each event is fanned out on the worker pool so writers never wait on slow sockets.
// Notifier 将已提交的文本块变更推送给 websocket 订阅者，推送在 worker pool 中执行
type Notifier struct {
	pub    Publisher
	pool   Submitter
	logger *zap.Logger
}

// NewNotifier 创建 Notifier，pool 为 nil 时同步推送
func NewNotifier(pub Publisher, pool Submitter, lg *zap.Logger) *Notifier {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Notifier{pub: pub, pool: pool, logger: lg}
}

func (n *Notifier) TextBlockChanged(ctx context.Context, block *domain.TextBlock, changeType domain.ChangeType) {
	if block == nil {
		return
	}
	n.dispatch(dto.TextBlockChanged, block.ID, &dto.TextBlockChangedMessage{
		ID:         block.ID,
		Version:    block.Version,
		Content:    block.Content,
		Element:    string(block.Element),
		UpdatedAt:  timex.Time(block.UpdatedAt),
		ChangeType: string(changeType),
	})
}

func (n *Notifier) TextBlockDeleted(ctx context.Context, id string) {
	n.dispatch(dto.TextBlockDeleted, id, &dto.TextBlockDeletedMessage{ID: id})
}

func (n *Notifier) dispatch(action, id string, content any) {
	publish := func(context.Context) error {
		count, err := n.pub.Publish(action, id, content)
		if err != nil {
			n.logger.Warn("websocket publish failed",
				zap.String(logger.FieldAction, action),
				logger.TextBlockID(id),
				zap.Error(err))
			return err
		}
		n.logger.Debug("websocket published",
			zap.String(logger.FieldAction, action),
			logger.TextBlockID(id),
			zap.Int("recipients", count))
		return nil
	}

	if n.pool == nil {
		_ = publish(context.Background())
		return
	}
	// the request context ends with the response, so the fan-out gets its own
	if err := n.pool.SubmitTaskAsync(context.Background(), "ws."+action, publish); err != nil {
		n.logger.Warn("websocket fan-out dropped", logger.TextBlockID(id), zap.Error(err))
	}
}

var _ Publisher = (*app.WebsocketServer)(nil)
