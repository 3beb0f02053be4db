package service

import (
	"context"
	"time"

	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/dto"
	"github.com/haierkeys/site-text-service/internal/metrics"
	"github.com/haierkeys/site-text-service/internal/rbac"
	"github.com/haierkeys/site-text-service/pkg/code"
	"github.com/haierkeys/site-text-service/pkg/fileurl"
	"github.com/haierkeys/site-text-service/pkg/storage"
	"github.com/haierkeys/site-text-service/pkg/timex"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// ScheduledActor author recorded for backups started by the scheduler
// ScheduledActor 定时任务触发备份时记录的执行者
const ScheduledActor = "scheduler"

// BackupService defines the backup business service interface
// BackupService 定义备份业务服务接口
type BackupService interface {
	// Run exports every text block and version record to the configured storage
	// Run 将全部文本块与历史记录导出到备份存储
	Run(ctx context.Context, identity *domain.Identity) (*dto.BackupResponse, error)

	// RunScheduled same as Run without an identity, used by the task scheduler
	// RunScheduled 同 Run，由定时任务调用，无需身份
	RunScheduled(ctx context.Context) (*dto.BackupResponse, error)

	// Enabled reports whether a storage target is configured
	// Enabled 是否配置了备份存储
	Enabled() bool
}

type backupService struct {
	blockRepo   domain.TextBlockRepository
	historyRepo domain.TextHistoryRepository
	storager    storage.Storager
	metrics     *metrics.Metrics
	logger      *zap.Logger
	config      *ServiceConfig
	now         func() time.Time
}

// NewBackupService creates BackupService instance. storager may be nil when backups are not configured.
// NewBackupService 创建 BackupService 实例，未配置备份时 storager 为 nil
func NewBackupService(blockRepo domain.TextBlockRepository, historyRepo domain.TextHistoryRepository, storager storage.Storager, m *metrics.Metrics, logger *zap.Logger, config *ServiceConfig) BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &backupService{
		blockRepo:   blockRepo,
		historyRepo: historyRepo,
		storager:    storager,
		metrics:     m,
		logger:      logger,
		config:      config.normalize(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *backupService) Enabled() bool {
	return s.storager != nil
}

func (s *backupService) Run(ctx context.Context, identity *domain.Identity) (*dto.BackupResponse, error) {
	if err := authorize(identity, rbac.ActionBackupRun); err != nil {
		return nil, err
	}
	return s.run(ctx, identity.Actor())
}

func (s *backupService) RunScheduled(ctx context.Context) (*dto.BackupResponse, error) {
	return s.run(ctx, ScheduledActor)
}

// BackupKey object key of a snapshot taken at t
// BackupKey 指定时间快照的对象键
func BackupKey(prefix string, t time.Time) string {
	return fileurl.JoinKey(prefix, "site-text-"+t.UTC().Format("20060102T150405.000Z")+".json")
}

func (s *backupService) run(ctx context.Context, actor string) (*dto.BackupResponse, error) {
	if s.storager == nil {
		return nil, code.ErrorBackupStorageNotConfigured
	}

	snapshot, err := s.snapshot(ctx, actor)
	if err != nil {
		s.metrics.ObserveBackup(false)
		return nil, err
	}
	data, err := sonic.Marshal(snapshot)
	if err != nil {
		s.metrics.ObserveBackup(false)
		return nil, code.ErrorBackupFailed.WithDetails(err.Error())
	}

	key := BackupKey(s.config.Backup.KeyPrefix, time.Time(snapshot.CreatedAt))
	uploadCtx, cancel := context.WithTimeout(ctx, s.config.Backup.Timeout)
	defer cancel()

	location, err := s.storager.SendContent(uploadCtx, key, data, "application/json")
	if err != nil {
		s.metrics.ObserveBackup(false)
		s.logger.Error("backup upload failed", zap.String("key", key), zap.Error(err))
		return nil, code.ErrorBackupFailed.WithDetails(err.Error())
	}

	s.metrics.ObserveBackup(true)
	s.logger.Info("backup completed",
		zap.String("key", key),
		zap.String("location", location),
		zap.String("by", actor),
		zap.Int("textBlocks", len(snapshot.TextBlocks)),
		zap.Int("versions", len(snapshot.Versions)),
		zap.Int("bytes", len(data)))

	return &dto.BackupResponse{
		Success:    true,
		Key:        key,
		TextBlocks: len(snapshot.TextBlocks),
		Versions:   len(snapshot.Versions),
	}, nil
}

func (s *backupService) snapshot(ctx context.Context, actor string) (*dto.BackupSnapshot, error) {
	blocks, err := s.blockRepo.List(ctx, domain.TextBlockFilter{})
	if err != nil {
		return nil, storageError(err, "backup list", s.logger, s.metrics)
	}
	records, err := s.historyRepo.All(ctx)
	if err != nil {
		return nil, storageError(err, "backup history", s.logger, s.metrics)
	}

	out := &dto.BackupSnapshot{
		Format:     dto.BackupSnapshotFormat,
		CreatedAt:  timex.Time(s.now()),
		CreatedBy:  actor,
		TextBlocks: make([]*dto.TextBlockDTO, 0, len(blocks)),
		Versions:   make([]*dto.VersionRecordDTO, 0, len(records)),
	}
	for _, b := range blocks {
		out.TextBlocks = append(out.TextBlocks, dto.NewTextBlockDTO(b))
	}
	for _, r := range records {
		out.Versions = append(out.Versions, dto.NewVersionRecordDTO(r))
	}
	return out, nil
}
