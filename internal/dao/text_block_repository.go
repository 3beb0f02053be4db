// Package dao 实现数据访问层
package dao

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/model"
	"github.com/haierkeys/site-text-service/pkg/logger"
	"github.com/haierkeys/site-text-service/pkg/timex"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// textBlockRepository 实现 domain.TextBlockRepository 接口
type textBlockRepository struct {
	dao             *Dao
	customPrefixKey string
}

// NewTextBlockRepository 创建 TextBlockRepository 实例
func NewTextBlockRepository(dao *Dao) domain.TextBlockRepository {
	return &textBlockRepository{dao: dao, customPrefixKey: "site_text_"}
}

func (r *textBlockRepository) GetKey(id string) string {
	return r.customPrefixKey + id
}

// toDomain 将数据库模型转换为领域模型
func (r *textBlockRepository) toDomain(m *model.SiteText) *domain.TextBlock {
	if m == nil {
		return nil
	}
	return &domain.TextBlock{
		ID:        m.ID,
		Content:   m.Content,
		Element:   domain.Element(m.Element),
		Page:      m.Page,
		Section:   m.Section,
		Version:   m.Version,
		UpdatedAt: time.Time(m.UpdatedAt),
		UpdatedBy: m.UpdatedBy,
	}
}

// toModel 将领域模型转换为数据库模型
func (r *textBlockRepository) toModel(b *domain.TextBlock) *model.SiteText {
	return &model.SiteText{
		ID:        b.ID,
		Content:   b.Content,
		Element:   string(b.Element),
		Page:      b.Page,
		Section:   b.Section,
		Version:   b.Version,
		UpdatedAt: timex.Time(b.UpdatedAt),
		UpdatedBy: b.UpdatedBy,
	}
}

func historyToModel(h *domain.VersionRecord) *model.SiteTextHistory {
	return &model.SiteTextHistory{
		ID:          h.ID,
		TextBlockID: h.TextBlockID,
		Content:     h.Content,
		Version:     h.Version,
		ChangeType:  string(h.ChangeType),
		CreatedAt:   timex.Time(h.CreatedAt),
		CreatedBy:   h.CreatedBy,
	}
}

func getTextBlock(db *gorm.DB, id string) (*model.SiteText, error) {
	var m model.SiteText
	err := db.Where("id = ?", id).Limit(1).Find(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == "" {
		return nil, nil
	}
	return &m, nil
}

// latestHistoryVersion 该 ID 历史记录中的最大版本号，无记录时为 0
func latestHistoryVersion(db *gorm.DB, id string) (int64, error) {
	var v sql.NullInt64
	err := db.Model(&model.SiteTextHistory{}).
		Where("text_block_id = ?", id).
		Select("MAX(version)").
		Scan(&v).Error
	if err != nil {
		return 0, err
	}
	return v.Int64, nil
}

// Get 获取文本块，不存在时返回 nil, nil
func (r *textBlockRepository) Get(ctx context.Context, id string) (*domain.TextBlock, error) {
	m, err := getTextBlock(r.dao.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// List 按 ID 升序列出文本块
func (r *textBlockRepository) List(ctx context.Context, filter domain.TextBlockFilter) ([]*domain.TextBlock, error) {
	q := r.dao.WithContext(ctx).Model(&model.SiteText{})
	if filter.Page != "" {
		q = q.Where("page = ?", filter.Page)
	}
	if filter.Section != "" {
		q = q.Where("section = ?", filter.Section)
	}

	var rows []*model.SiteText
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.TextBlock, 0, len(rows))
	for _, m := range rows {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// Mutate 在单个事务中读取、计算并写入文本块与版本记录
func (r *textBlockRepository) Mutate(ctx context.Context, id string, fn domain.MutateFunc) (*domain.TextBlock, *domain.VersionRecord, error) {
	var (
		block  *domain.TextBlock
		record *domain.VersionRecord
	)

	err := r.dao.ExecuteWrite(ctx, r.GetKey(id), func(tx *gorm.DB) error {
		current, err := getTextBlock(tx, id)
		if err != nil {
			return err
		}

		var lastVersion int64
		if current != nil {
			lastVersion = current.Version
		} else if lastVersion, err = latestHistoryVersion(tx, id); err != nil {
			return err
		}

		next, rec, err := fn(r.toDomain(current), lastVersion)
		if err != nil {
			return err
		}
		if rec == nil {
			block = r.toDomain(current)
			if next != nil {
				block = next
			}
			return nil
		}
		if next == nil || next.ID != id || rec.TextBlockID != id || next.Version != rec.Version {
			return errors.New("dao: inconsistent text block mutation")
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}

		m := r.toModel(next)
		if current == nil {
			err = tx.Create(m).Error
		} else {
			// 带版本条件更新，其他进程并发写入时影响行数为 0
			res := tx.Model(&model.SiteText{}).
				Where("id = ? AND version = ?", id, current.Version).
				Updates(map[string]interface{}{
					"content":    m.Content,
					"element":    m.Element,
					"page":       m.Page,
					"section":    m.Section,
					"version":    m.Version,
					"updated_at": m.UpdatedAt,
					"updated_by": m.UpdatedBy,
				})
			err = res.Error
			if err == nil && res.RowsAffected == 0 {
				err = gorm.ErrDuplicatedKey
			}
		}
		if err != nil {
			return err
		}

		if err := tx.Create(historyToModel(rec)).Error; err != nil {
			return err
		}

		block, record = next, rec
		return nil
	})
	if err != nil {
		r.dao.Logger().Warn("text block mutation failed",
			logger.TextBlockID(id),
			zap.String(logger.FieldMethod, "textBlockRepository.Mutate"),
			zap.Error(err))
		return nil, nil, err
	}
	return block, record, nil
}

// Delete 删除文本块（历史保留）
func (r *textBlockRepository) Delete(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := r.dao.ExecuteWrite(ctx, r.GetKey(id), func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.SiteText{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Count 文本块总数
func (r *textBlockRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.dao.WithContext(ctx).Model(&model.SiteText{}).Count(&count).Error
	return count, err
}
