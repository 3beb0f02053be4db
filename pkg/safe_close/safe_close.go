// Package safe_close coordinates shutdown of long-running goroutines
// Package safe_close 协调长期运行 goroutine 的关闭
package safe_close

import (
	"sync"
)

// SafeClose broadcasts a single close signal to attached workers and waits for them to finish
// SafeClose 向已挂载的 worker 广播一次关闭信号，并等待其全部结束
type SafeClose struct {
	closeSignal chan struct{}
	once        sync.Once
	wg          sync.WaitGroup

	mu  sync.Mutex
	err error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{closeSignal: make(chan struct{})}
}

// Attach runs fn in its own goroutine. fn must call done when it returns control.
// Attach 在独立 goroutine 中运行 fn，fn 结束时必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var doneOnce sync.Once
	go fn(func() { doneOnce.Do(s.wg.Done) }, s.closeSignal)
}

// SendCloseSignal closes the signal channel once and records the first non-nil error
// SendCloseSignal 仅关闭一次信号通道，并记录第一个非 nil 错误
func (s *SafeClose) SendCloseSignal(err error) {
	if err != nil {
		s.mu.Lock()
		if s.err == nil {
			s.err = err
		}
		s.mu.Unlock()
	}
	s.once.Do(func() { close(s.closeSignal) })
}

// Closed reports whether the close signal has been sent
// Closed 是否已发送关闭信号
func (s *SafeClose) Closed() bool {
	select {
	case <-s.closeSignal:
		return true
	default:
		return false
	}
}

// WaitClosed blocks until every attached worker has called done
// WaitClosed 阻塞直到所有 worker 调用 done
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
