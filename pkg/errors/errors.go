// Package errors renders any error as the JSON error body the API returns
// Package errors 将任意错误渲染为 API 的统一 JSON 错误体
package errors

import (
	stderrors "errors"
	"time"

	"github.com/haierkeys/site-text-service/pkg/app"
	"github.com/haierkeys/site-text-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// AppError is the error body: {code, error, details, traceId, timestamp}
// AppError 错误响应体
type AppError struct {
	Status    int       `json:"-"`
	Code      int       `json:"code"`
	Message   string    `json:"error"`
	Details   []string  `json:"details,omitempty"`
	TraceID   string    `json:"traceId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *AppError) Error() string {
	return e.Message
}

// FromError maps err to its response body in the given language.
// Errors that carry no *code.Code become a generic internal error; their text never reaches the client.
// FromError 将错误转换为响应体；不含 *code.Code 的错误一律视为内部错误，原始文本不返回给客户端
func FromError(err error, lang, traceID string) *AppError {
	var c *code.Code
	if !stderrors.As(err, &c) {
		c = code.ErrorServerInternal
	}
	return &AppError{
		Status:    c.StatusCode(),
		Code:      c.Code(),
		Message:   c.MsgIn(lang),
		Details:   c.Details(),
		TraceID:   traceID,
		Timestamp: time.Now(),
	}
}

// ErrorResponse aborts the request with err rendered as JSON.
// Server side failures are attached to c.Errors so the access log records the cause.
// ErrorResponse 以 JSON 错误体中止请求；5xx 的原始错误挂到 c.Errors 供访问日志记录
func ErrorResponse(c *gin.Context, err error) {
	body := FromError(err, app.GetLang(c), app.GetTraceID(c))
	if body.Status >= 500 && err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(body.Status, body)
}
