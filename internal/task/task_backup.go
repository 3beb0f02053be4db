package task

import (
	"context"

	"github.com/haierkeys/site-text-service/internal/app"

	"go.uber.org/zap"
)

// BackupTask 定时将全部文本块与历史版本快照上传到对象存储
type BackupTask struct {
	app      *app.App
	schedule string
	logger   *zap.Logger
}

// Name returns the task name
func (t *BackupTask) Name() string {
	return "BackupScheduled"
}

func (t *BackupTask) Schedule() string {
	return t.schedule
}

func (t *BackupTask) IsStartupRun() bool {
	return false
}

// Run 执行一次快照，并在服务关闭时放弃
func (t *BackupTask) Run(ctx context.Context) error {
	if t.app.IsShuttingDown() {
		return nil
	}
	defer t.app.TrackOperation()()

	res, err := t.app.BackupService.RunScheduled(ctx)
	if err != nil {
		return err
	}
	t.logger.Info("task log",
		zap.String("task", t.Name()),
		zap.String("key", res.Key),
		zap.Int("textBlocks", res.TextBlocks),
		zap.Int("versions", res.Versions))
	return nil
}

// NewBackupTask 创建定时备份任务，未启用备份或未配置存储时返回 nil
func NewBackupTask(appContainer *app.App) (Task, error) {
	cfg := appContainer.Config().Backup
	if !cfg.Enabled {
		return nil, nil
	}
	if appContainer.BackupService == nil || !appContainer.BackupService.Enabled() {
		appContainer.Logger().Warn("backup is enabled but storage is not configured, scheduled backup skipped")
		return nil, nil
	}
	return &BackupTask{
		app:      appContainer,
		schedule: cfg.Cron,
		logger:   appContainer.Logger(),
	}, nil
}

func init() {
	Register("backup", NewBackupTask)
}
