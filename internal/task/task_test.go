package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/site-text-service/internal/app"
	"github.com/haierkeys/site-text-service/internal/dao"
	"github.com/haierkeys/site-text-service/pkg/safe_close"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingTask struct {
	schedule string
	startup  bool
	runs     atomic.Int32
	err      error
	panics   bool
}

func (t *countingTask) Name() string       { return "counting" }
func (t *countingTask) Schedule() string   { return t.schedule }
func (t *countingTask) IsStartupRun() bool { return t.startup }
func (t *countingTask) Run(context.Context) error {
	t.runs.Add(1)
	if t.panics {
		panic("boom")
	}
	return t.err
}

type memStorager struct {
	mu   sync.Mutex
	keys []string
}

func (m *memStorager) SendContent(_ context.Context, key string, _ []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return "mem://" + key, nil
}

func (m *memStorager) Delete(context.Context, string) error { return nil }

func newTestApp(t *testing.T, enabled bool, opts ...app.Option) *app.App {
	t.Helper()
	cfg, err := app.ParseConfig(nil)
	require.NoError(t, err)
	cfg.Database.Path = ":memory:"
	cfg.Database.MaxOpenConns = 1
	cfg.Backup.Enabled = enabled
	cfg.Backup.Cron = "@every 1h"

	db, err := dao.NewDBEngineWithConfig(cfg.GetDatabaseConfig(), nil)
	require.NoError(t, err)
	a, err := app.NewApp(cfg, zap.NewNop(), db, append(opts, app.WithRegisterer(prometheus.NewRegistry()))...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func TestScheduler_AddTaskRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(zap.NewNop(), safe_close.NewSafeClose())
	err := s.AddTask(&countingTask{schedule: "not a cron"})
	assert.Error(t, err)
	assert.Empty(t, s.Tasks())

	require.NoError(t, s.AddTask(&countingTask{schedule: "@every 1h"}))
	assert.Len(t, s.Tasks(), 1)
}

func TestScheduler_StartupRunAndClose(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)

	ok := &countingTask{schedule: "@every 1h", startup: true}
	failing := &countingTask{schedule: "@every 1h", startup: true, err: errors.New("failed")}
	panicking := &countingTask{schedule: "@every 1h", startup: true, panics: true}
	for _, task := range []*countingTask{ok, failing, panicking} {
		require.NoError(t, s.AddTask(task))
	}
	s.Start()

	assert.Eventually(t, func() bool {
		return ok.runs.Load() == 1 && failing.runs.Load() == 1 && panicking.runs.Load() == 1
	}, time.Second, 10*time.Millisecond)

	sc.SendCloseSignal(nil)
	done := make(chan struct{})
	go func() {
		_ = sc.WaitClosed()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_CronRun(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	task := &countingTask{schedule: "@every 1s"}
	require.NoError(t, s.AddTask(task))
	s.Start()
	defer func() {
		sc.SendCloseSignal(nil)
		_ = sc.WaitClosed()
	}()

	assert.Eventually(t, func() bool { return task.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestNewBackupTask(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		storager bool
		want     bool
	}{
		{"disabled", false, true, false},
		{"no storage", true, false, false},
		{"enabled", true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []app.Option
			if tt.storager {
				opts = append(opts, app.WithStorager(&memStorager{}))
			}
			a := newTestApp(t, tt.enabled, opts...)
			got, err := NewBackupTask(a)
			require.NoError(t, err)
			if (got != nil) != tt.want {
				t.Errorf("NewBackupTask() = %v, want task %v", got, tt.want)
			}
			if got != nil {
				assert.Equal(t, "@every 1h", got.Schedule())
			}
		})
	}
}

func TestBackupTask_Run(t *testing.T) {
	store := &memStorager{}
	a := newTestApp(t, true, app.WithStorager(store))

	task, err := NewBackupTask(a)
	require.NoError(t, err)
	require.NotNil(t, task)
	require.NoError(t, task.Run(context.Background()))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.keys, 1)
	assert.Contains(t, store.keys[0], "backups/")
}

func TestManager_RegisterTasks(t *testing.T) {
	a := newTestApp(t, true, app.WithStorager(&memStorager{}))
	m := NewManager(zap.NewNop(), safe_close.NewSafeClose(), a)
	require.NoError(t, m.RegisterTasks())

	names := make([]string, 0)
	for _, task := range m.Scheduler().Tasks() {
		names = append(names, task.Name())
	}
	assert.Contains(t, names, "BackupScheduled")
}

func TestRegister_DuplicateNamePanics(t *testing.T) {
	assert.Panics(t, func() { Register("backup", NewBackupTask) })
	assert.Panics(t, func() { Register("nil-factory", nil) })
}
