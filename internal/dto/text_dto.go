// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/pkg/convert"
	"github.com/haierkeys/site-text-service/pkg/diff"
	"github.com/haierkeys/site-text-service/pkg/timex"
)

// TextBlockDTO Text block data transfer object
// TextBlockDTO 文本块数据传输对象
type TextBlockDTO struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Element   string     `json:"element"`
	Page      string     `json:"page"`
	Section   string     `json:"section"`
	Version   int64      `json:"version"`
	UpdatedAt timex.Time `json:"updatedAt"`
	UpdatedBy string     `json:"updatedBy"`
}

// VersionRecordDTO History entry of a text block
// VersionRecordDTO 文本块历史版本
type VersionRecordDTO struct {
	ID          string     `json:"id"`
	TextBlockID string     `json:"textBlockId"`
	Content     string     `json:"content"`
	Version     int64      `json:"version"`
	CreatedAt   timex.Time `json:"createdAt"`
	CreatedBy   string     `json:"createdBy"`
	ChangeType  string     `json:"changeType"`
	// Diff against the next older version, only when requested
	// Diff 与上一个较旧版本的差异，仅在请求时返回
	Diff        []diff.Segment `json:"diff,omitempty"`
	DiffSummary *diff.Summary  `json:"diffSummary,omitempty"`
}

// NewTextBlockDTO 领域模型转 DTO
func NewTextBlockDTO(b *domain.TextBlock) *TextBlockDTO {
	if b == nil {
		return nil
	}
	return convert.StructAssign(b, &TextBlockDTO{}).(*TextBlockDTO)
}

// NewVersionRecordDTO 领域模型转 DTO
func NewVersionRecordDTO(r *domain.VersionRecord) *VersionRecordDTO {
	if r == nil {
		return nil
	}
	return convert.StructAssign(r, &VersionRecordDTO{}).(*VersionRecordDTO)
}

// ContentResolveResponse Public content lookup; nil fields mean "use the built-in default"
// ContentResolveResponse 公开内容查询结果，字段为 null 表示使用页面默认文本
type ContentResolveResponse struct {
	Content   *string     `json:"content"`
	UpdatedAt *timex.Time `json:"updatedAt"`
}

// TextPutRequest Request parameters for creating, updating or restoring a text block
// TextPutRequest 创建、更新或恢复文本块的请求参数
type TextPutRequest struct {
	ID             string  `json:"id" form:"id" binding:"omitempty,textid"`
	Content        string  `json:"content" form:"content"`
	Element        *string `json:"element" form:"element" binding:"omitempty,element"`
	Page           *string `json:"page" form:"page" binding:"omitempty,max=128"`
	Section        *string `json:"section" form:"section" binding:"omitempty,max=128"`
	RestoreVersion *int64  `json:"restoreVersion" form:"restoreVersion" binding:"omitempty,min=1"`
}

// TextPutResponse 文本块写入结果
type TextPutResponse struct {
	Success   bool          `json:"success"`
	TextBlock *TextBlockDTO `json:"textBlock"`
	Version   int64         `json:"version"`
	// Changed false when the content was identical and nothing was written
	// Changed 内容相同未写入时为 false
	Changed bool `json:"changed"`
}

// TextListRequest 文本块列表过滤参数
type TextListRequest struct {
	Page    string `json:"page" form:"page"`
	Section string `json:"section" form:"section"`
}

// TextListResponse 文本块列表
type TextListResponse struct {
	TextBlocks []*TextBlockDTO `json:"textBlocks"`
}

// TextDeleteRequest 删除文本块参数
type TextDeleteRequest struct {
	ID string `json:"id" form:"id"`
}

// TextHistoryRequest 历史版本查询参数
type TextHistoryRequest struct {
	ID    string `uri:"id"`
	Limit int    `form:"limit"`
	Diff  bool   `form:"diff"`
}

// TextHistoryResponse 历史版本列表
type TextHistoryResponse struct {
	Versions []*VersionRecordDTO `json:"versions"`
}

// SuccessResponse 通用成功响应
type SuccessResponse struct {
	Success bool `json:"success"`
}
