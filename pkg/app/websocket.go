package app

import (
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
)

const (
	WebSocketServerPingInterval = 25 * time.Second
	WebSocketServerPingWait     = 40 * time.Second

	// TopicAll 订阅全部主题
	TopicAll = "*"

	// closeMessage 客户端主动断开时发送的文本帧
	closeMessage = "close"
)

// WebSocketMessage is an inbound "Type|payload" text frame
// WebSocketMessage 入站 "Type|payload" 文本帧
type WebSocketMessage struct {
	Type string `json:"type"`
	Data []byte `json:"data"`
}

// MessageHandler handles one inbound message type
type MessageHandler func(*WebsocketClient, *WebSocketMessage)

type WebsocketServerConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
	Logger       *zap.Logger
}

// WebsocketClient is one connection and the topics it listens to
// WebsocketClient 单个连接及其订阅主题
type WebsocketClient struct {
	conn *gws.Conn
	stop chan struct{}
	once sync.Once

	mu     sync.RWMutex
	topics map[string]struct{}
}

// SetTopics replaces the subscriptions; an empty list means every topic
// SetTopics 替换订阅，空列表表示全部主题
func (c *WebsocketClient) SetTopics(topics []string) {
	set := make(map[string]struct{}, max(len(topics), 1))
	for _, t := range topics {
		set[t] = struct{}{}
	}
	if len(set) == 0 {
		set[TopicAll] = struct{}{}
	}
	c.mu.Lock()
	c.topics = set
	c.mu.Unlock()
}

func (c *WebsocketClient) Subscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, all := c.topics[TopicAll]
	_, one := c.topics[topic]
	return all || one
}

// Send 向当前连接发送 "action|json"
func (c *WebsocketClient) Send(action string, content any) error {
	frame, err := encodeMessage(action, content)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(gws.OpcodeText, frame)
}

func (c *WebsocketClient) keepAlive(interval time.Duration, lg *zap.Logger) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			if err := c.conn.WritePing(nil); err != nil {
				lg.Debug("websocket ping failed", zap.Error(err))
				return
			}
		}
	}
}

func (c *WebsocketClient) release() {
	c.once.Do(func() { close(c.stop) })
}

// encodeMessage builds "action|json", or bare json when action is empty.
// Map keys are sorted so frames are stable.
func encodeMessage(action string, content any) ([]byte, error) {
	body, err := sonic.ConfigStd.Marshal(content)
	if err != nil || action == "" {
		return body, err
	}
	frame := make([]byte, 0, len(action)+1+len(body))
	frame = append(frame, action...)
	frame = append(frame, '|')
	return append(frame, body...), nil
}

// WebsocketServer accepts connections, dispatches inbound frames by type and
// fans out published messages to subscribed clients
// WebsocketServer 接收连接、按类型分发入站消息，并向订阅者广播
type WebsocketServer struct {
	gws.BuiltinEventHandler

	config   WebsocketServerConfig
	logger   *zap.Logger
	upgrader *gws.Upgrader
	handlers map[string]MessageHandler

	mu      sync.RWMutex
	clients map[*gws.Conn]*WebsocketClient
}

func NewWebsocketServer(c WebsocketServerConfig) *WebsocketServer {
	if c.PingInterval <= 0 {
		c.PingInterval = WebSocketServerPingInterval
	}
	if c.PingWait <= 0 {
		c.PingWait = WebSocketServerPingWait
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	w := &WebsocketServer{
		config:   c,
		logger:   c.Logger,
		handlers: make(map[string]MessageHandler),
		clients:  make(map[*gws.Conn]*WebsocketClient),
	}
	w.upgrader = gws.NewUpgrader(w, &w.config.GWSOption)
	return w
}

// Use 注册入站消息处理函数，需在 Run 之前调用
func (w *WebsocketServer) Use(action string, h MessageHandler) {
	w.handlers[action] = h
}

// Run returns the gin handler that upgrades the request
func (w *WebsocketServer) Run() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := w.upgrader.Upgrade(c.Writer, c.Request)
		if err != nil {
			w.logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		client := &WebsocketClient{conn: conn, stop: make(chan struct{})}
		client.SetTopics(nil)

		w.mu.Lock()
		w.clients[conn] = client
		w.mu.Unlock()

		go client.keepAlive(w.config.PingInterval, w.logger)
		go conn.ReadLoop()
	}
}

// Publish sends action|content to every client subscribed to topic and returns the recipient count
// Publish 向订阅 topic 的客户端广播，返回接收者数量
func (w *WebsocketServer) Publish(action, topic string, content any) (int, error) {
	frame, err := encodeMessage(action, content)
	if err != nil {
		return 0, err
	}

	var targets []*gws.Conn
	w.mu.RLock()
	for conn, c := range w.clients {
		if c.Subscribed(topic) {
			targets = append(targets, conn)
		}
	}
	w.mu.RUnlock()
	if len(targets) == 0 {
		return 0, nil
	}

	b := gws.NewBroadcaster(gws.OpcodeText, frame)
	defer b.Close()
	for _, conn := range targets {
		_ = b.Broadcast(conn)
	}
	return len(targets), nil
}

func (w *WebsocketServer) ClientCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.clients)
}

// Shutdown 向所有连接发送 1001 关闭帧
func (w *WebsocketServer) Shutdown() {
	w.mu.RLock()
	conns := make([]*gws.Conn, 0, len(w.clients))
	for conn := range w.clients {
		conns = append(conns, conn)
	}
	w.mu.RUnlock()
	for _, conn := range conns {
		conn.WriteClose(1001, []byte("ServerShutdown"))
	}
}

func (w *WebsocketServer) lookup(conn *gws.Conn) *WebsocketClient {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.clients[conn]
}

func (w *WebsocketServer) extendDeadline(conn *gws.Conn) {
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait))
}

func (w *WebsocketServer) OnOpen(conn *gws.Conn) {
	w.extendDeadline(conn)
}

func (w *WebsocketServer) OnClose(conn *gws.Conn, err error) {
	w.mu.Lock()
	client := w.clients[conn]
	delete(w.clients, conn)
	left := len(w.clients)
	w.mu.Unlock()

	if client != nil {
		client.release()
	}
	w.logger.Debug("websocket client left", zap.Int("count", left), zap.Error(err))
}

func (w *WebsocketServer) OnPing(conn *gws.Conn, _ []byte) {
	w.extendDeadline(conn)
	_ = conn.WritePong(nil)
}

func (w *WebsocketServer) OnPong(conn *gws.Conn, _ []byte) {
	w.extendDeadline(conn)
}

func (w *WebsocketServer) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()
	w.extendDeadline(conn)
	if message.Opcode != gws.OpcodeText {
		return
	}

	text := message.Data.String()
	if text == closeMessage {
		conn.WriteClose(1000, []byte("ClientClose"))
		return
	}
	client := w.lookup(conn)
	if client == nil {
		return
	}

	kind, payload, ok := strings.Cut(text, "|")
	if !ok {
		w.logger.Debug("websocket illegal message", zap.String("data", text))
		return
	}
	h, ok := w.handlers[kind]
	if !ok {
		w.logger.Debug("websocket unknown message type", zap.String("type", kind))
		return
	}
	h(client, &WebSocketMessage{Type: kind, Data: []byte(payload)})
}
