package logger

import "go.uber.org/zap"

// Log field names shared by every package, so one query finds a request or a block across all logs
// 全项目统一的日志字段名
const (
	FieldTraceID     = "traceId"
	FieldTextBlockID = "textBlockId"
	FieldAction      = "action"
	FieldDuration    = "duration"
	FieldMethod      = "method"
)

// TextBlockID 文本块 ID 字段
func TextBlockID(id string) zap.Field {
	return zap.String(FieldTextBlockID, id)
}

// TraceID 追踪 ID 字段，空值时返回 zap.Skip
func TraceID(id string) zap.Field {
	if id == "" {
		return zap.Skip()
	}
	return zap.String(FieldTraceID, id)
}
