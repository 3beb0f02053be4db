package task

import (
	"github.com/haierkeys/site-text-service/internal/app"
	"github.com/haierkeys/site-text-service/pkg/safe_close"

	"go.uber.org/zap"
)

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
	app       *app.App
}

// NewManager 创建任务管理器
func NewManager(logger *zap.Logger, sc *safe_close.SafeClose, appContainer *app.App) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc),
		logger:    logger,
		app:       appContainer,
	}
}

// RegisterTasks 创建并添加所有已注册的任务
// 单个任务创建失败不影响其他任务，返回第一个错误
func (m *Manager) RegisterTasks() error {
	var first error
	for _, r := range registered() {
		t, err := r.factory(m.app)
		if err != nil {
			m.logger.Warn("failed to create task", zap.String("factory", r.name), zap.Error(err))
			if first == nil {
				first = err
			}
			continue
		}
		if t == nil {
			m.logger.Debug("task disabled", zap.String("factory", r.name))
			continue
		}
		if err := m.scheduler.AddTask(t); err != nil {
			m.logger.Warn("failed to schedule task", zap.String("name", t.Name()), zap.Error(err))
			if first == nil {
				first = err
			}
			continue
		}
		m.logger.Info("task registered", zap.String("name", t.Name()), zap.String("schedule", t.Schedule()))
	}
	return first
}

// Scheduler 返回内部调度器
func (m *Manager) Scheduler() *Scheduler {
	return m.scheduler
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
