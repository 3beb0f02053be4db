// Package workerpool runs background jobs with bounded concurrency and a bounded backlog.
// Package workerpool 以有限并发与有限积压执行后台任务（广播推送、手动备份）
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var (
	ErrWorkerPoolFull   = errors.New("worker pool queue is full")
	ErrWorkerPoolClosed = errors.New("worker pool is closed")
	// ErrTaskCancelled 任务开始前其 ctx 已结束
	ErrTaskCancelled = errors.New("task was cancelled")
)

// Config Worker Pool 配置
type Config struct {
	// MaxWorkers 同时执行的任务上限
	MaxWorkers int `yaml:"max-workers" default:"8"`
	// QueueSize 已接受但尚未开始的任务上限
	QueueSize int `yaml:"queue-size" default:"256"`
	// WarningPercent 执行中任务占比达到该值时输出告警
	WarningPercent float64 `yaml:"warning-percent" default:"0.8"`
}

func DefaultConfig() Config {
	return Config{MaxWorkers: 8, QueueSize: 256, WarningPercent: 0.8}
}

// Pool hands each accepted job its own goroutine, which waits on a weighted semaphore
// before running. Acceptance is capped at MaxWorkers+QueueSize outstanding jobs.
// Pool 为每个任务启动 goroutine 并通过信号量限制并发；未完成任务总数不超过 MaxWorkers+QueueSize
type Pool struct {
	config Config
	logger *zap.Logger
	slots  *semaphore.Weighted

	// stop 在关闭超时时取消，释放仍在等待执行权的任务
	stop   context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	closed      bool
	outstanding int
	wg          sync.WaitGroup

	running   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// New cfg 为 nil 或字段非法时使用默认值
func New(cfg *Config, logger *zap.Logger) *Pool {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.MaxWorkers > 0 {
			c.MaxWorkers = cfg.MaxWorkers
		}
		if cfg.QueueSize > 0 {
			c.QueueSize = cfg.QueueSize
		}
		if cfg.WarningPercent > 0 && cfg.WarningPercent <= 1 {
			c.WarningPercent = cfg.WarningPercent
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	stop, cancel := context.WithCancel(context.Background())

	logger.Info("worker pool started", zap.Int("maxWorkers", c.MaxWorkers), zap.Int("queueSize", c.QueueSize))
	return &Pool{
		config: c,
		logger: logger,
		slots:  semaphore.NewWeighted(int64(c.MaxWorkers)),
		stop:   stop,
		cancel: cancel,
	}
}

// Submit runs fn and waits for its result
// Submit 执行任务并等待结果
func (p *Pool) Submit(ctx context.Context, name string, fn func(context.Context) error) error {
	result := make(chan error, 1)
	if err := p.accept(ctx, name, fn, result); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitAsync 接受任务后立即返回；池满或已关闭时返回错误
func (p *Pool) SubmitAsync(ctx context.Context, name string, fn func(context.Context) error) error {
	return p.accept(ctx, name, fn, nil)
}

func (p *Pool) accept(ctx context.Context, name string, fn func(context.Context) error, result chan<- error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.closed:
		return ErrWorkerPoolClosed
	case p.outstanding >= p.config.MaxWorkers+p.config.QueueSize:
		return ErrWorkerPoolFull
	}
	p.outstanding++
	p.wg.Add(1)

	go func() {
		err := p.run(ctx, name, fn)
		p.mu.Lock()
		p.outstanding--
		p.mu.Unlock()
		p.wg.Done()
		if result != nil {
			result <- err
		}
	}()
	return nil
}

func (p *Pool) run(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := p.slots.Acquire(p.stop, 1); err != nil {
		return ErrWorkerPoolClosed
	}
	defer p.slots.Release(1)

	n := p.running.Add(1)
	defer p.running.Add(-1)
	if threshold := int64(float64(p.config.MaxWorkers) * p.config.WarningPercent); threshold > 0 && n >= threshold {
		p.logger.Warn("worker pool approaching capacity", zap.Int64("running", n), zap.Int("maxWorkers", p.config.MaxWorkers))
	}

	start := time.Now()
	err := ErrTaskCancelled
	if ctx.Err() == nil {
		err = call(ctx, name, fn)
	}
	if err != nil {
		p.failed.Add(1)
		p.logger.Warn("worker pool job failed", zap.String("job", name), zap.Duration("duration", time.Since(start)), zap.Error(err))
		return err
	}
	p.completed.Add(1)
	return nil
}

// call 执行任务，panic 转为错误
func call(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("workerpool: job %q panicked: %v", name, r)
		}
	}()
	return fn(ctx)
}

func (p *Pool) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Shutdown stops accepting jobs and waits for accepted ones. When ctx ends first,
// jobs still waiting for a slot are dropped with ErrWorkerPoolClosed.
// Shutdown 停止接收任务并等待已接受的任务；ctx 先结束时放弃仍在等待的任务
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	pending := p.outstanding
	p.mu.Unlock()

	p.logger.Info("worker pool shutting down", zap.Int("outstanding", pending))

	drained := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		p.cancel()
		p.logger.Info("worker pool shutdown completed")
		return nil
	case <-ctx.Done():
		p.cancel()
		p.logger.Warn("worker pool shutdown timeout, dropping waiting jobs")
		return ctx.Err()
	}
}

// Stats Worker Pool 运行统计
type Stats struct {
	MaxWorkers  int   `json:"maxWorkers"`
	Running     int64 `json:"running"`
	Outstanding int   `json:"outstanding"`
	Completed   int64 `json:"completed"`
	Failed      int64 `json:"failed"`
	Closed      bool  `json:"closed"`
}

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	outstanding, closed := p.outstanding, p.closed
	p.mu.Unlock()
	return Stats{
		MaxWorkers:  p.config.MaxWorkers,
		Running:     p.running.Load(),
		Outstanding: outstanding,
		Completed:   p.completed.Load(),
		Failed:      p.failed.Load(),
		Closed:      closed,
	}
}
