package code

import "net/http"

// Success codes
// 成功码
var (
	Success         = NewSuss(1, lang{en: "Success", zh_cn: "成功"})
	SuccessNoChange = NewSuss(2, lang{en: "Content unchanged", zh_cn: "内容未变更"})
	SuccessLogout   = NewSuss(3, lang{en: "Signed out", zh_cn: "已退出登录"})
)

// General errors
// 通用错误
var (
	ErrorServerInternal  = NewError(500, http.StatusInternalServerError, lang{en: "Internal server error", zh_cn: "服务器内部错误"})
	ErrorNotFound        = NewError(404, http.StatusNotFound, lang{en: "Resource not found", zh_cn: "资源不存在"})
	ErrorInvalidParams   = NewError(400, http.StatusBadRequest, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorTooManyRequests = NewError(429, http.StatusTooManyRequests, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorRequestTimeout  = NewError(408, http.StatusGatewayTimeout, lang{en: "Request timed out", zh_cn: "请求超时"})
)

// Authentication and authorization errors
// 认证与授权错误
var (
	ErrorNotUserAuthToken        = NewError(401, http.StatusUnauthorized, lang{en: "Unauthorized", zh_cn: "未登录"})
	ErrorInvalidUserAuthToken    = NewError(402, http.StatusUnauthorized, lang{en: "Session is invalid or expired", zh_cn: "会话无效或已过期"})
	ErrorForbidden               = NewError(403, http.StatusForbidden, lang{en: "Forbidden", zh_cn: "没有权限"})
	ErrorInvalidCredentials      = NewError(405, http.StatusUnauthorized, lang{en: "Invalid credentials", zh_cn: "账号或密码错误"})
	ErrorTokenGenerate           = NewError(406, http.StatusInternalServerError, lang{en: "Failed to create session", zh_cn: "创建会话失败"})
	ErrorSessionStoreUnavailable = NewError(407, http.StatusServiceUnavailable, lang{en: "Session store unavailable", zh_cn: "会话存储不可用"})
)

// Storage errors
// 存储错误
var (
	ErrorDBQuery                    = NewError(501, http.StatusInternalServerError, lang{en: "Database query failed", zh_cn: "数据库查询失败"})
	ErrorStorageUnavailable         = NewError(503, http.StatusServiceUnavailable, lang{en: "Storage unavailable, please try again later", zh_cn: "存储不可用，请稍后重试"})
	ErrorBackupStorageNotConfigured = NewError(504, http.StatusServiceUnavailable, lang{en: "Backup storage is not configured", zh_cn: "未配置备份存储"})
	ErrorBackupFailed               = NewError(505, http.StatusInternalServerError, lang{en: "Backup failed", zh_cn: "备份失败"})
)

// Text block errors
// 文本块错误
var (
	ErrorTextContentRequired       = NewError(1001, http.StatusBadRequest, lang{en: "ID and content are required", zh_cn: "ID 和内容不能为空"})
	ErrorTextIDRequired            = NewError(1002, http.StatusBadRequest, lang{en: "ID is required", zh_cn: "ID 不能为空"})
	ErrorTextIDInvalid             = NewError(1003, http.StatusBadRequest, lang{en: "ID is invalid", zh_cn: "ID 格式错误"})
	ErrorTextElementInvalid        = NewError(1004, http.StatusBadRequest, lang{en: "Element is not supported", zh_cn: "不支持的元素类型"})
	ErrorTextVersionNotFound       = NewError(1005, http.StatusBadRequest, lang{en: "Version not found", zh_cn: "版本不存在"})
	ErrorTextRestoreVersionInvalid = NewError(1006, http.StatusBadRequest, lang{en: "Restore version must be a positive integer", zh_cn: "恢复版本必须为正整数"})
)
