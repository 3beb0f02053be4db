package app

import (
	"github.com/haierkeys/site-text-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// Context keys shared by middleware and handlers
// 中间件与处理器共享的上下文键
const (
	// TraceIDKey 追踪 ID 在 gin.Context 中的键
	TraceIDKey = "trace_id"
	// LangKey 请求语言在 gin.Context 中的键
	LangKey = "lang"
	// TranslatorKey 校验翻译器在 gin.Context 中的键
	TranslatorKey = "trans"
	// StatusCodeKey 响应状态码在 gin.Context 中的键
	StatusCodeKey = "status_code"
)

// VersionInfo version information // 版本信息
type VersionInfo struct {
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

type Response struct {
	Ctx *gin.Context
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{
		Ctx: ctx,
	}
}

// GetRequestIP gets the request IP
// GetRequestIP 获取ip
func GetRequestIP(c *gin.Context) string {
	reqIP := c.ClientIP()
	if reqIP == "::1" {
		reqIP = "127.0.0.1"
	}
	return reqIP
}

// GetTraceID returns the trace id set by the tracer middleware
// GetTraceID 获取追踪中间件设置的 trace id
func GetTraceID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(TraceIDKey)
}

// GetLang returns the request language, defaulting to the global language
// GetLang 获取请求语言，未设置时使用全局默认语言
func GetLang(c *gin.Context) string {
	if c != nil {
		if l := c.GetString(LangKey); l != "" {
			return l
		}
	}
	return code.GetGlobalDefaultLang()
}

// ToResponse writes the code's data as the JSON body with the code's HTTP status
// ToResponse 以 Code 的 HTTP 状态输出其数据作为 JSON 响应体
func (r *Response) ToResponse(codeObj *code.Code) {
	r.Ctx.Set(StatusCodeKey, codeObj.StatusCode())

	var content interface{} = codeObj.Data()
	if !codeObj.HaveData() {
		content = gin.H{"success": codeObj.Status(), "message": codeObj.MsgIn(GetLang(r.Ctx))}
	}

	r.send(codeObj.StatusCode(), content)
}

func (r *Response) send(statusCode int, content interface{}) {
	r.Ctx.JSON(statusCode, content)
}
