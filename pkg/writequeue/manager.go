// Package writequeue serializes writes per key.
// Writes to one text block run one at a time in arrival order, so the read-increment-write
// version sequence cannot lose updates. Different keys run in parallel.
// Package writequeue 按键串行化写操作：同一文本块的写入按到达顺序逐个执行，不同键之间并行
package writequeue

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	ErrWriteQueueFull   = errors.New("write queue is full")
	ErrWriteQueueClosed = errors.New("write queue is closed")
	ErrWriteTimeout     = errors.New("write operation timeout")
)

// Config 写队列配置
type Config struct {
	// QueueCapacity 每个键允许排队等待的写操作数（不含正在执行的）
	QueueCapacity int
	// WriteTimeout 单次写操作的等待加执行总时长
	WriteTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
	}
}

// IsQueueError reports whether err came from the queue itself rather than the write function
// IsQueueError 判断错误是否来自队列本身而非写函数
func IsQueueError(err error) bool {
	return errors.Is(err, ErrWriteQueueFull) || errors.Is(err, ErrWriteQueueClosed) || errors.Is(err, ErrWriteTimeout)
}

// lane 单个键的执行权：busy 表示有操作持有，waiters 按到达顺序排队
type lane struct {
	busy    bool
	waiters []chan struct{}
}

// Manager hands out one lane per key. A lane exists only while it is held or waited on.
// Manager 为每个键分配执行权，空闲的键不占用任何资源
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	lanes  map[string]*lane
	closed bool

	inflight  sync.WaitGroup
	abort     chan struct{}
	abortOnce sync.Once

	executed atomic.Int64
	rejected atomic.Int64
}

// New cfg 为 nil 时使用默认配置
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.QueueCapacity > 0 {
			c.QueueCapacity = cfg.QueueCapacity
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout))

	return &Manager{
		config: c,
		logger: logger,
		lanes:  make(map[string]*lane),
		abort:  make(chan struct{}),
	}
}

// Execute runs fn once every earlier write for key has finished and returns its error.
// A write that times out keeps its lane until fn returns, so later writes never overlap it.
// Execute 等待同键之前的写操作完成后执行 fn；超时返回后 fn 仍持有执行权直到结束
func (m *Manager) Execute(ctx context.Context, key string, fn func() error) error {
	timeout := m.config.WriteTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	ready, err := m.enter(key)
	if err != nil {
		return err
	}
	if ready != nil {
		select {
		case <-ready:
		case <-ctx.Done():
			return m.abandon(key, ready, ctx.Err())
		case <-timer.C:
			return m.abandon(key, ready, ErrWriteTimeout)
		case <-m.abort:
			return m.abandon(key, ready, ErrWriteQueueClosed)
		}
	}
	if err := ctx.Err(); err != nil {
		m.leave(key)
		return err
	}

	result := make(chan error, 1)
	go func() {
		defer m.leave(key)
		err := fn()
		m.executed.Add(1)
		result <- err
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		m.logger.Warn("write exceeded timeout, still running", zap.String("key", key), zap.Duration("timeout", timeout))
		return ErrWriteTimeout
	case <-m.abort:
		return ErrWriteQueueClosed
	}
}

// enter takes the lane, or queues behind it and returns the channel closed on handoff
func (m *Manager) enter(key string) (chan struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrWriteQueueClosed
	}

	l, ok := m.lanes[key]
	if !ok {
		l = &lane{}
		m.lanes[key] = l
	}
	if !l.busy {
		l.busy = true
		m.inflight.Add(1)
		return nil, nil
	}
	if len(l.waiters) >= m.config.QueueCapacity {
		m.rejected.Add(1)
		return nil, ErrWriteQueueFull
	}
	ready := make(chan struct{})
	l.waiters = append(l.waiters, ready)
	m.inflight.Add(1)
	return ready, nil
}

// leave hands the lane to the next waiter, or drops it when nobody waits
func (m *Manager) leave(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.inflight.Done()

	l := m.lanes[key]
	if len(l.waiters) > 0 {
		next := l.waiters[0]
		l.waiters = l.waiters[1:]
		close(next)
		return
	}
	delete(m.lanes, key)
}

// abandon 放弃排队；若执行权已移交给自己，则立即释放
func (m *Manager) abandon(key string, ready chan struct{}, err error) error {
	m.mu.Lock()
	l := m.lanes[key]
	if i := slices.Index(l.waiters, ready); i >= 0 {
		l.waiters = slices.Delete(l.waiters, i, i+1)
		m.mu.Unlock()
		m.inflight.Done()
		return err
	}
	m.mu.Unlock()
	m.leave(key)
	return err
}

// Shutdown rejects new writes and waits for accepted ones. When ctx ends first,
// waiting writes are released with ErrWriteQueueClosed.
// Shutdown 拒绝新写入并等待已接受的写入完成；ctx 先结束时放弃排队中的写入
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.logger.Info("write queue manager shutting down")

	done := make(chan struct{})
	go func() {
		m.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("write queue manager shutdown completed")
		return nil
	case <-ctx.Done():
		m.abortOnce.Do(func() { close(m.abort) })
		m.logger.Warn("write queue manager shutdown timeout, abandoning queued writes")
		return ctx.Err()
	}
}

func (m *Manager) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Waiting 该键排队中（尚未开始）的写操作数
func (m *Manager) Waiting(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.lanes[key]; ok {
		return len(l.waiters)
	}
	return 0
}

// Stats 写队列统计
type Stats struct {
	ActiveKeys int
	Executed   int64
	Rejected   int64
}

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	active := len(m.lanes)
	m.mu.Unlock()
	return Stats{
		ActiveKeys: active,
		Executed:   m.executed.Load(),
		Rejected:   m.rejected.Load(),
	}
}
