package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SameKeyIsSerialized(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	var running, maxRunning atomic.Int32
	var counter int
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Execute(context.Background(), "hero.title", func() error {
				n := running.Add(1)
				for {
					cur := maxRunning.Load()
					if n <= cur || maxRunning.CompareAndSwap(cur, n) {
						break
					}
				}
				counter++
				running.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, int32(1), maxRunning.Load())
	assert.Equal(t, int64(50), m.Stats().Executed)
}

func TestManager_FIFOOrder(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = m.Execute(context.Background(), "k", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.Execute(context.Background(), "k", func() error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}(i)
		require.Eventually(t, func() bool { return m.Waiting("k") == i+1 }, time.Second, time.Millisecond)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestManager_ReturnsFunctionError(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	boom := errors.New("boom")
	err := m.Execute(context.Background(), "k", func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsQueueError(err))
}

func TestManager_QueueFull(t *testing.T) {
	m := New(&Config{QueueCapacity: 1}, nil)
	defer m.Shutdown(context.Background())

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = m.Execute(context.Background(), "k", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	go func() { _ = m.Execute(context.Background(), "k", func() error { return nil }) }()
	require.Eventually(t, func() bool { return m.Waiting("k") == 1 }, time.Second, time.Millisecond)

	err := m.Execute(context.Background(), "k", func() error { return nil })
	assert.ErrorIs(t, err, ErrWriteQueueFull)
	assert.True(t, IsQueueError(err))
	close(release)
}

func TestManager_Timeout(t *testing.T) {
	m := New(&Config{WriteTimeout: 20 * time.Millisecond}, nil)
	defer m.Shutdown(context.Background())

	release := make(chan struct{})
	defer close(release)

	err := m.Execute(context.Background(), "k", func() error {
		<-release
		return nil
	})
	assert.ErrorIs(t, err, ErrWriteTimeout)
}

func TestManager_Closed(t *testing.T) {
	m := New(nil, nil)
	require.NoError(t, m.Shutdown(context.Background()))

	err := m.Execute(context.Background(), "k", func() error { return nil })
	assert.ErrorIs(t, err, ErrWriteQueueClosed)
	assert.True(t, m.IsClosed())
}

func TestManager_LaneDroppedWhenIdle(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	require.NoError(t, m.Execute(context.Background(), "k", func() error { return nil }))
	assert.Equal(t, 0, m.Stats().ActiveKeys)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = m.Execute(context.Background(), "k", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	assert.Equal(t, 1, m.Stats().ActiveKeys)
	close(release)
	require.Eventually(t, func() bool { return m.Stats().ActiveKeys == 0 }, time.Second, time.Millisecond)
}

func TestManager_CancelledWaiterLeavesQueue(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = m.Execute(context.Background(), "k", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	var ran atomic.Bool
	go func() {
		errCh <- m.Execute(ctx, "k", func() error { ran.Store(true); return nil })
	}()
	require.Eventually(t, func() bool { return m.Waiting("k") == 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.Equal(t, 0, m.Waiting("k"))

	close(release)
	require.NoError(t, m.Execute(context.Background(), "k", func() error { return nil }))
	assert.False(t, ran.Load())
}

func TestManager_ShutdownWaitsForAccepted(t *testing.T) {
	m := New(nil, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.Execute(context.Background(), "k", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Shutdown(ctx), context.DeadlineExceeded)
	assert.ErrorIs(t, <-done, ErrWriteQueueClosed)

	close(release)
	assert.NoError(t, m.Shutdown(context.Background()))
}
