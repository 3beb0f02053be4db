// Package dao 实现数据访问层
package dao

import (
	"context"
	"time"

	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/model"
)

// textHistoryRepository 实现 domain.TextHistoryRepository 接口
type textHistoryRepository struct {
	dao *Dao
}

// NewTextHistoryRepository 创建 TextHistoryRepository 实例
func NewTextHistoryRepository(dao *Dao) domain.TextHistoryRepository {
	return &textHistoryRepository{dao: dao}
}

func (r *textHistoryRepository) toDomain(m *model.SiteTextHistory) *domain.VersionRecord {
	if m == nil {
		return nil
	}
	return &domain.VersionRecord{
		ID:          m.ID,
		TextBlockID: m.TextBlockID,
		Content:     m.Content,
		Version:     m.Version,
		CreatedAt:   time.Time(m.CreatedAt),
		CreatedBy:   m.CreatedBy,
		ChangeType:  domain.ChangeType(m.ChangeType),
	}
}

func (r *textHistoryRepository) toDomainList(rows []*model.SiteTextHistory) []*domain.VersionRecord {
	list := make([]*domain.VersionRecord, 0, len(rows))
	for _, m := range rows {
		list = append(list, r.toDomain(m))
	}
	return list
}

// ListByTextBlockID 按版本降序获取最近 limit 条记录
func (r *textHistoryRepository) ListByTextBlockID(ctx context.Context, textBlockID string, limit int) ([]*domain.VersionRecord, error) {
	var rows []*model.SiteTextHistory
	q := r.dao.WithContext(ctx).
		Where("text_block_id = ?", textBlockID).
		Order("version DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(rows), nil
}

// GetByVersion 获取指定版本，不存在时返回 nil, nil
func (r *textHistoryRepository) GetByVersion(ctx context.Context, textBlockID string, version int64) (*domain.VersionRecord, error) {
	var rows []*model.SiteTextHistory
	err := r.dao.WithContext(ctx).
		Where("text_block_id = ? AND version = ?", textBlockID, version).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return r.toDomain(rows[0]), nil
}

// All 全部历史记录
func (r *textHistoryRepository) All(ctx context.Context) ([]*domain.VersionRecord, error) {
	var rows []*model.SiteTextHistory
	err := r.dao.WithContext(ctx).
		Order("text_block_id ASC").
		Order("version ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.toDomainList(rows), nil
}

// Count 历史记录总数
func (r *textHistoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.dao.WithContext(ctx).Model(&model.SiteTextHistory{}).Count(&count).Error
	return count, err
}
