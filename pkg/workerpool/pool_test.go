package workerpool

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

func TestPool_Submit(t *testing.T) {
	p := New(&Config{MaxWorkers: 2, QueueSize: 4}, nil)
	defer p.Shutdown(context.Background())

	err := p.Submit(context.Background(), "ok", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)

	want := errors.New("boom")
	err = p.Submit(context.Background(), "fail", func(ctx context.Context) error { return want })
	assert.ErrorIs(t, err, want)

	m := p.Stats()
	assert.Equal(t, int64(1), m.Completed)
	assert.Equal(t, int64(1), m.Failed)
}

func TestPool_PanicBecomesError(t *testing.T) {
	p := New(&Config{MaxWorkers: 1, QueueSize: 1}, nil)
	defer p.Shutdown(context.Background())

	err := p.Submit(context.Background(), "panic", func(ctx context.Context) error { panic("bad") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")

	// worker 仍然可用
	assert.NoError(t, p.Submit(context.Background(), "after", func(ctx context.Context) error { return nil }))
}

func TestPool_SubmitAsyncRunsAll(t *testing.T) {
	p := New(&Config{MaxWorkers: 4, QueueSize: 100}, nil)

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		require.NoError(t, p.SubmitAsync(context.Background(), "count", func(ctx context.Context) error {
			defer wg.Done()
			count.Add(1)
			return nil
		}))
	}
	wg.Wait()
	assert.Equal(t, int64(50), count.Load())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestPool_Full(t *testing.T) {
	p := New(&Config{MaxWorkers: 1, QueueSize: 1}, nil)
	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, p.SubmitAsync(context.Background(), "block", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started
	require.NoError(t, p.SubmitAsync(context.Background(), "queued", func(ctx context.Context) error { return nil }))

	err := p.SubmitAsync(context.Background(), "overflow", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrWorkerPoolFull)

	close(release)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestPool_Closed(t *testing.T) {
	p := New(nil, nil)
	require.NoError(t, p.Shutdown(context.Background()))
	assert.True(t, p.IsClosed())

	err := p.SubmitAsync(context.Background(), "late", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrWorkerPoolClosed)
	// 重复关闭无副作用
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestPool_CancelledContext(t *testing.T) {
	p := New(&Config{MaxWorkers: 1, QueueSize: 2}, nil)
	defer p.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	done := make(chan struct{})
	require.NoError(t, p.SubmitAsync(ctx, "cancelled", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	}))
	require.NoError(t, p.SubmitAsync(context.Background(), "marker", func(ctx context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("marker job did not run")
	}
	assert.False(t, ran.Load())
}

func TestPool_ShutdownTimeoutDropsWaiting(t *testing.T) {
	p := New(&Config{MaxWorkers: 1, QueueSize: 1}, nil)
	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.SubmitAsync(context.Background(), "block", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	var ran atomic.Bool
	require.NoError(t, p.SubmitAsync(context.Background(), "waiting", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	}))
	assert.Equal(t, 2, p.Stats().Outstanding)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Shutdown(ctx), context.DeadlineExceeded)

	close(release)
	assert.Eventually(t, func() bool { return p.Stats().Outstanding == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, ran.Load())
	assert.True(t, p.Stats().Closed)
}
