package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/site-text-service/internal/dao"
	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/metrics"
	"github.com/haierkeys/site-text-service/internal/service"
	"github.com/haierkeys/site-text-service/internal/session"
	pkgapp "github.com/haierkeys/site-text-service/pkg/app"
	"github.com/haierkeys/site-text-service/pkg/storage"
	"github.com/haierkeys/site-text-service/pkg/workerpool"
	"github.com/haierkeys/site-text-service/pkg/writequeue"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager

	Metrics  *metrics.Metrics
	Sessions session.Store
	Storager storage.Storager
	notifier *relayNotifier

	// Repository 层
	TextBlockRepo   domain.TextBlockRepository
	TextHistoryRepo domain.TextHistoryRepository
	AdminRepo       domain.AdminRepository

	// Service 层
	TextService   service.TextService
	AuthService   service.AuthService
	AdminService  service.AdminService
	BackupService service.BackupService

	// 基础设施组件
	TokenManager pkgapp.TokenManager

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// Option App 构建选项
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
	sessions   session.Store
	storager   storage.Storager
}

// WithRegisterer 指定 prometheus 注册器，测试中用于隔离指标
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithSessionStore 使用外部会话存储替代配置创建的存储
func WithSessionStore(s session.Store) Option {
	return func(o *options) { o.sessions = s }
}

// WithStorager 使用外部备份存储替代配置创建的存储
func WithStorager(s storage.Storager) Option {
	return func(o *options) { o.storager = s }
}

// NewApp wires repositories and services on top of db. Resources created here are
// released again when a later step fails.
// NewApp 在 db 之上装配仓储与服务；中途失败时释放已创建的资源
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB, opts ...Option) (_ *App, err error) {
	switch {
	case cfg == nil:
		return nil, errors.New("app: configuration is required")
	case logger == nil:
		return nil, errors.New("app: logger is required")
	case db == nil:
		return nil, errors.New("app: database is required")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		notifier:   &relayNotifier{},
		shutdownCh: make(chan struct{}),
	}

	var undo []func(context.Context) error
	defer func() {
		if err == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		for i := len(undo) - 1; i >= 0; i-- {
			_ = undo[i](ctx)
		}
	}()

	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)
	undo = append(undo, a.workerPool.Shutdown)

	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)
	undo = append(undo, a.writeQueueMgr.Shutdown)

	dbConfig := cfg.GetDatabaseConfig()
	a.Dao = dao.New(db, context.Background(),
		dao.WithConfig(&dbConfig),
		dao.WithLogger(logger),
		dao.WithWriteQueueManager(a.writeQueueMgr),
	)
	a.Metrics = metrics.New(o.registerer)

	if a.Sessions = o.sessions; a.Sessions == nil {
		if a.Sessions, err = session.NewStore(context.Background(), cfg.Session); err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		undo = append(undo, func(context.Context) error { return a.Sessions.Close() })
	}

	// 未配置备份目标时 Storager 为 nil
	if a.Storager = o.storager; a.Storager == nil && cfg.Storage.Enabled() {
		if a.Storager, err = storage.NewClient(context.Background(), &cfg.Storage, logger); err != nil {
			return nil, fmt.Errorf("backup storage: %w", err)
		}
	}

	a.TokenManager = pkgapp.NewTokenManager(cfg.GetTokenConfig())

	a.TextBlockRepo = dao.NewTextBlockRepository(a.Dao)
	a.TextHistoryRepo = dao.NewTextHistoryRepository(a.Dao)
	a.AdminRepo = dao.NewAdminRepository(a.Dao)

	svcConfig := cfg.GetServiceConfig()
	a.TextService = service.NewTextService(a.TextBlockRepo, a.TextHistoryRepo, a.notifier, a.Metrics, logger, svcConfig)
	a.AuthService = service.NewAuthService(a.AdminRepo, a.Sessions, a.TokenManager, a.Metrics, logger)
	a.AdminService = service.NewAdminService(a.AdminRepo, a.Metrics, logger, svcConfig)
	a.BackupService = service.NewBackupService(a.TextBlockRepo, a.TextHistoryRepo, a.Storager, a.Metrics, logger, svcConfig)

	logger.Info("app container ready",
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity),
		zap.String("sessionStore", cfg.Session.Store),
		zap.Bool("backupStorage", a.Storager != nil))

	return a, nil
}

func (a *App) Config() *AppConfig {
	return a.config
}

func (a *App) Logger() *zap.Logger {
	return a.logger
}

// SetNotifier routes text change events to n, typically the websocket fan-out.
// SetNotifier 设置文本变更事件的接收者，通常为 websocket 广播
func (a *App) SetNotifier(n service.Notifier) {
	a.notifier.set(n)
}

// SubmitTask 在 Worker Pool 中执行并等待结果
func (a *App) SubmitTask(ctx context.Context, name string, task func(context.Context) error) error {
	return a.workerPool.Submit(ctx, name, task)
}

// SubmitTaskAsync 在 Worker Pool 中异步执行，池满或已关闭时返回错误
func (a *App) SubmitTaskAsync(ctx context.Context, name string, task func(context.Context) error) error {
	return a.workerPool.SubmitAsync(ctx, name, task)
}

func (a *App) Version() pkgapp.VersionInfo {
	return BuildInfo()
}

// DefaultShutdownTimeout Shutdown 的 ctx 为 nil 时使用
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown stops accepting background work, waits for what is in flight, then closes
// the session store and the database. Calling it again is a no-op.
// Shutdown 停止接收后台任务，等待进行中的操作，再关闭会话存储与数据库；重复调用无副作用
func (a *App) Shutdown(ctx context.Context) error {
	select {
	case <-a.shutdownCh:
		return nil
	default:
		close(a.shutdownCh)
	}
	a.logger.Info("app container shutting down")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"worker pool", a.workerPool.Shutdown},
		{"write queue", a.writeQueueMgr.Shutdown},
		{"operations", a.waitOperations},
		{"session store", func(context.Context) error { return a.Sessions.Close() }},
		{"database", a.closeDB},
	}

	var errs []error
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			a.logger.Warn("shutdown step failed", zap.String("step", step.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.logger.Info("app container shutdown completed")
	return nil
}

func (a *App) waitOperations(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *App) closeDB(context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsShuttingDown 是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownCh 关闭信号通道
func (a *App) ShutdownCh() <-chan struct{} {
	return a.shutdownCh
}

// TrackOperation registers an in-flight operation that Shutdown waits for.
// The returned func must be called when the operation ends.
// TrackOperation 登记进行中的操作，返回的函数在操作结束时调用
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return a.wg.Done
}

// relayNotifier forwards events to a notifier set after construction
type relayNotifier struct {
	mu sync.RWMutex
	n  service.Notifier
}

func (r *relayNotifier) set(n service.Notifier) {
	r.mu.Lock()
	r.n = n
	r.mu.Unlock()
}

func (r *relayNotifier) get() service.Notifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.n
}

func (r *relayNotifier) TextBlockChanged(ctx context.Context, block *domain.TextBlock, change domain.ChangeType) {
	if n := r.get(); n != nil {
		n.TextBlockChanged(ctx, block, change)
	}
}

func (r *relayNotifier) TextBlockDeleted(ctx context.Context, id string) {
	if n := r.get(); n != nil {
		n.TextBlockDeleted(ctx, id)
	}
}
