package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/dto"
	"github.com/haierkeys/site-text-service/internal/metrics"
	"github.com/haierkeys/site-text-service/internal/rbac"
	"github.com/haierkeys/site-text-service/pkg/app"
	"github.com/haierkeys/site-text-service/pkg/code"
	"github.com/haierkeys/site-text-service/pkg/diff"
	"github.com/haierkeys/site-text-service/pkg/timex"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TextService defines the text block business service interface
// TextService 定义文本块业务服务接口
type TextService interface {
	// Resolve returns the stored content of a block for public pages, null when absent
	// Resolve 获取文本块内容供公开页面使用，不存在时返回 null
	Resolve(ctx context.Context, id string) (*dto.ContentResolveResponse, error)

	// List lists text blocks, optionally filtered by page and section
	// List 列出文本块，可按页面和区块过滤
	List(ctx context.Context, identity *domain.Identity, params *dto.TextListRequest) (*dto.TextListResponse, error)

	// Put creates, updates or restores a text block
	// Put 创建、更新或恢复文本块
	Put(ctx context.Context, identity *domain.Identity, params *dto.TextPutRequest) (*dto.TextPutResponse, error)

	// Delete removes a text block and keeps its history
	// Delete 删除文本块并保留历史
	Delete(ctx context.Context, identity *domain.Identity, id string) (*dto.SuccessResponse, error)

	// History lists the newest versions of a block
	// History 获取文本块最近的历史版本
	History(ctx context.Context, identity *domain.Identity, params *dto.TextHistoryRequest) (*dto.TextHistoryResponse, error)
}

// textService implementation of TextService interface
// textService 实现 TextService 接口
type textService struct {
	blockRepo   domain.TextBlockRepository   // Text block repository // 文本块仓库
	historyRepo domain.TextHistoryRepository // History repository // 历史记录仓库
	notifier    Notifier                     // Change notifier // 变更通知
	metrics     *metrics.Metrics             // Prometheus collectors // 监控指标
	sf          *singleflight.Group          // Singleflight group // 并发请求合并组
	logger      *zap.Logger                  // Logger // 日志对象
	config      *ServiceConfig               // Service configuration // 服务配置
	now         func() time.Time
}

// NewTextService creates TextService instance
// NewTextService 创建 TextService 实例
func NewTextService(blockRepo domain.TextBlockRepository, historyRepo domain.TextHistoryRepository, notifier Notifier, m *metrics.Metrics, logger *zap.Logger, config *ServiceConfig) TextService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &textService{
		blockRepo:   blockRepo,
		historyRepo: historyRepo,
		notifier:    notifier,
		metrics:     m,
		sf:          &singleflight.Group{},
		logger:      logger,
		config:      config.normalize(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// normalizeID maps id validation failures onto response codes
// normalizeID 将 ID 校验错误映射为响应错误码
func normalizeID(id string, emptyErr *code.Code) (string, error) {
	out, err := domain.NormalizeTextBlockID(id)
	if err == nil {
		return out, nil
	}
	if errors.Is(err, domain.ErrTextBlockIDEmpty) {
		return "", emptyErr
	}
	return "", code.ErrorTextIDInvalid.WithDetails(err.Error())
}

func (s *textService) Resolve(ctx context.Context, id string) (*dto.ContentResolveResponse, error) {
	id, err := normalizeID(id, code.ErrorTextIDRequired)
	if err != nil {
		return nil, err
	}

	// 合并后的查询不受首个调用者取消的影响，各调用者只等待自己的 ctx
	flight := s.sf.DoChan(id, func() (any, error) {
		return s.blockRepo.Get(context.WithoutCancel(ctx), id)
	})
	var res singleflight.Result
	select {
	case res = <-flight:
	case <-ctx.Done():
		return nil, storageError(ctx.Err(), "resolve", s.logger, s.metrics)
	}
	if res.Err != nil {
		return nil, storageError(res.Err, "resolve", s.logger, s.metrics)
	}

	block, _ := res.Val.(*domain.TextBlock)
	s.metrics.ObserveResolution(block != nil)
	if block == nil {
		return &dto.ContentResolveResponse{}, nil
	}
	content := block.Content
	updatedAt := timex.Time(block.UpdatedAt)
	return &dto.ContentResolveResponse{Content: &content, UpdatedAt: &updatedAt}, nil
}

func (s *textService) List(ctx context.Context, identity *domain.Identity, params *dto.TextListRequest) (*dto.TextListResponse, error) {
	if err := authorize(identity, rbac.ActionContentView); err != nil {
		return nil, err
	}
	filter := domain.TextBlockFilter{}
	if params != nil {
		filter.Page = strings.TrimSpace(params.Page)
		filter.Section = strings.TrimSpace(params.Section)
	}

	blocks, err := s.blockRepo.List(ctx, filter)
	if err != nil {
		return nil, storageError(err, "list", s.logger, s.metrics)
	}

	out := make([]*dto.TextBlockDTO, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, dto.NewTextBlockDTO(b))
	}
	return &dto.TextListResponse{TextBlocks: out}, nil
}

// putInput validated Put parameters
// putInput 校验后的写入参数
type putInput struct {
	id      string
	content string
	element *domain.Element
	page    *string
	section *string
	restore *domain.VersionRecord
}

func (s *textService) validatePut(ctx context.Context, params *dto.TextPutRequest) (*putInput, error) {
	if params == nil {
		return nil, code.ErrorTextContentRequired
	}
	id, err := normalizeID(params.ID, code.ErrorTextContentRequired)
	if err != nil {
		return nil, err
	}
	in := &putInput{id: id, content: strings.TrimSpace(params.Content)}

	if params.RestoreVersion == nil && in.content == "" {
		return nil, code.ErrorTextContentRequired
	}
	if params.RestoreVersion != nil && *params.RestoreVersion < 1 {
		return nil, code.ErrorTextRestoreVersionInvalid
	}

	// "" means omitted
	if params.Element != nil && strings.TrimSpace(*params.Element) != "" {
		el, ok := domain.ParseElement(*params.Element)
		if !ok {
			return nil, code.ErrorTextElementInvalid.WithDetails(*params.Element)
		}
		in.element = &el
	}
	if params.Page != nil {
		page := strings.TrimSpace(*params.Page)
		in.page = &page
	}
	if params.Section != nil {
		section := strings.TrimSpace(*params.Section)
		in.section = &section
	}

	if params.RestoreVersion != nil {
		record, err := s.historyRepo.GetByVersion(ctx, id, *params.RestoreVersion)
		if err != nil {
			return nil, storageError(err, "restore lookup", s.logger, s.metrics)
		}
		if record == nil {
			return nil, code.ErrorTextVersionNotFound
		}
		in.restore = record
		in.content = record.Content
	}
	return in, nil
}

func (s *textService) Put(ctx context.Context, identity *domain.Identity, params *dto.TextPutRequest) (*dto.TextPutResponse, error) {
	if err := authorize(identity, rbac.ActionContentEdit); err != nil {
		return nil, err
	}
	in, err := s.validatePut(ctx, params)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	block, record, err := s.blockRepo.Mutate(ctx, in.id, func(current *domain.TextBlock, lastVersion int64) (*domain.TextBlock, *domain.VersionRecord, error) {
		if current != nil && in.restore == nil && current.Content == in.content {
			return current, nil, nil
		}

		next := &domain.TextBlock{ID: in.id, Element: domain.DefaultElement}
		changeType := domain.ChangeTypeCreate
		if current != nil {
			*next = *current
			changeType = domain.ChangeTypeUpdate
		}
		if in.restore != nil {
			changeType = domain.ChangeTypeRestore
		}
		if in.element != nil {
			next.Element = *in.element
		}
		if in.page != nil {
			next.Page = *in.page
		}
		if in.section != nil {
			next.Section = *in.section
		}

		now := s.now()
		next.Content = in.content
		next.Version = lastVersion + 1
		next.UpdatedAt = now
		next.UpdatedBy = identity.Actor()

		return next, &domain.VersionRecord{
			ID:          uuid.NewString(),
			TextBlockID: next.ID,
			Content:     next.Content,
			Version:     next.Version,
			CreatedAt:   now,
			CreatedBy:   next.UpdatedBy,
			ChangeType:  changeType,
		}, nil
	})
	if err != nil {
		return nil, storageError(err, "put", s.logger, s.metrics)
	}

	changed := record != nil
	if changed {
		s.metrics.ObserveMutation(string(record.ChangeType), time.Since(start))
		s.notifier.TextBlockChanged(ctx, block, record.ChangeType)
		s.logger.Info("text block saved",
			zap.String("id", block.ID),
			zap.Int64("version", block.Version),
			zap.String("changeType", string(record.ChangeType)),
			zap.String("by", block.UpdatedBy))
	}

	return &dto.TextPutResponse{
		Success:   true,
		TextBlock: dto.NewTextBlockDTO(block),
		Version:   block.Version,
		Changed:   changed,
	}, nil
}

func (s *textService) Delete(ctx context.Context, identity *domain.Identity, id string) (*dto.SuccessResponse, error) {
	if err := authorize(identity, rbac.ActionContentDelete); err != nil {
		return nil, err
	}
	id, err := normalizeID(id, code.ErrorTextIDRequired)
	if err != nil {
		return nil, err
	}

	deleted, err := s.blockRepo.Delete(ctx, id)
	if err != nil {
		return nil, storageError(err, "delete", s.logger, s.metrics)
	}
	if deleted {
		s.metrics.ObserveDeletion()
		s.notifier.TextBlockDeleted(ctx, id)
		s.logger.Info("text block deleted", zap.String("id", id), zap.String("by", identity.Actor()))
	}
	return &dto.SuccessResponse{Success: true}, nil
}

func (s *textService) History(ctx context.Context, identity *domain.Identity, params *dto.TextHistoryRequest) (*dto.TextHistoryResponse, error) {
	if err := authorize(identity, rbac.ActionContentView); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, code.ErrorTextIDRequired
	}
	id, err := normalizeID(params.ID, code.ErrorTextIDRequired)
	if err != nil {
		return nil, err
	}
	limit := app.ClampLimit(params.Limit, app.LimitConfig{
		Default: s.config.Text.HistoryDefaultLimit,
		Max:     s.config.Text.HistoryMaxLimit,
	})

	// One extra row gives the oldest returned record a base to diff against
	// 多取一条作为最旧记录的差异基准
	fetch := limit
	if params.Diff {
		fetch++
	}
	records, err := s.historyRepo.ListByTextBlockID(ctx, id, fetch)
	if err != nil {
		return nil, storageError(err, "history", s.logger, s.metrics)
	}

	n := min(len(records), limit)
	out := make([]*dto.VersionRecordDTO, 0, n)
	for i := 0; i < n; i++ {
		item := dto.NewVersionRecordDTO(records[i])
		if params.Diff {
			base := ""
			if i+1 < len(records) {
				base = records[i+1].Content
			}
			item.Diff = diff.Compute(base, records[i].Content)
			summary := diff.Summarize(item.Diff)
			item.DiffSummary = &summary
		}
		out = append(out, item)
	}
	return &dto.TextHistoryResponse{Versions: out}, nil
}
