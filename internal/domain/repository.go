// Package domain 定义领域模型和接口
package domain

import (
	"context"
	"time"
)

// MutateFunc computes the next state of a text block from the current one.
// current is nil when the block does not exist. lastVersion is the newest version ever
// written for the id, so a block recreated after deletion continues its sequence.
// Returning a nil record means nothing is written.
// MutateFunc 根据当前状态计算文本块的下一状态
// current 为 nil 表示块不存在；lastVersion 为该 ID 已写入的最大版本号，删除后重建的块延续版本序列；
// 返回 nil 记录表示不写入
type MutateFunc func(current *TextBlock, lastVersion int64) (*TextBlock, *VersionRecord, error)

// TextBlockRepository 文本块仓储接口
type TextBlockRepository interface {
	// Get 获取文本块，不存在时返回 nil, nil
	Get(ctx context.Context, id string) (*TextBlock, error)

	// List 按 ID 升序列出文本块
	List(ctx context.Context, filter TextBlockFilter) ([]*TextBlock, error)

	// Mutate reads the block, applies fn and stores the block and its version record in one transaction.
	// Calls for the same id are serialized.
	// Mutate 读取文本块并执行 fn，在同一事务中写入文本块与版本记录；同一 id 的调用串行执行
	Mutate(ctx context.Context, id string, fn MutateFunc) (*TextBlock, *VersionRecord, error)

	// Delete 删除文本块（不影响历史），返回是否删除了记录
	Delete(ctx context.Context, id string) (bool, error)

	// Count 文本块总数
	Count(ctx context.Context) (int64, error)
}

// TextHistoryRepository 文本块历史仓储接口
type TextHistoryRepository interface {
	// ListByTextBlockID 按版本降序获取最近 limit 条记录
	ListByTextBlockID(ctx context.Context, textBlockID string, limit int) ([]*VersionRecord, error)

	// GetByVersion 获取指定版本，不存在时返回 nil, nil
	GetByVersion(ctx context.Context, textBlockID string, version int64) (*VersionRecord, error)

	// All 全部历史记录（备份使用），按 text_block_id、version 排序
	All(ctx context.Context) ([]*VersionRecord, error)

	// Count 历史记录总数
	Count(ctx context.Context) (int64, error)
}

// AdminRepository 管理员仓储接口
type AdminRepository interface {
	// GetByEmail 获取管理员，不存在时返回 nil, nil
	GetByEmail(ctx context.Context, email string) (*Admin, error)

	// List 按邮箱排序列出管理员
	List(ctx context.Context) ([]*Admin, error)

	// Save 按邮箱新增或更新管理员
	Save(ctx context.Context, admin *Admin) (*Admin, error)

	// Delete 删除管理员，返回是否删除了记录
	Delete(ctx context.Context, email string) (bool, error)

	// UpdateLastLogin 更新最后登录时间
	UpdateLastLogin(ctx context.Context, email string, at time.Time) error
}
