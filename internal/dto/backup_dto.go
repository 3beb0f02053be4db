package dto

import "github.com/haierkeys/site-text-service/pkg/timex"

// BackupSnapshotFormat 备份文件格式版本
const BackupSnapshotFormat = "site-text/v1"

// BackupSnapshot Full export of text blocks and their history
// BackupSnapshot 文本块与历史的完整导出
type BackupSnapshot struct {
	Format     string              `json:"format"`
	CreatedAt  timex.Time          `json:"createdAt"`
	CreatedBy  string              `json:"createdBy"`
	TextBlocks []*TextBlockDTO     `json:"textBlocks"`
	Versions   []*VersionRecordDTO `json:"versions"`
}

// BackupResponse 备份结果
type BackupResponse struct {
	Success    bool   `json:"success"`
	Key        string `json:"key"`
	TextBlocks int    `json:"textBlocks"`
	Versions   int    `json:"versions"`
}
