// Package code defines the response codes shared by every handler. A Code is both
// an error and a response: it knows its HTTP status and its message in each language.
// Package code 定义响应码；Code 同时是 error 与响应，带 HTTP 状态与多语言消息
package code

import (
	"fmt"
	"net/http"
	"sync"
)

// Code 响应码；注册后的全局值不可修改，WithData / WithDetails 返回副本
type Code struct {
	code       int
	httpStatus int
	ok         bool
	Lang       lang

	data    any
	hasData bool
	details []string
}

type registryKey struct {
	code int
	ok   bool
}

var (
	registryMu sync.Mutex
	registry   = map[registryKey]string{}
)

func register(c *Code) *Code {
	registryMu.Lock()
	defer registryMu.Unlock()
	k := registryKey{code: c.code, ok: c.ok}
	if prev, dup := registry[k]; dup {
		panic(fmt.Sprintf("code: %d already registered as %q", c.code, prev))
	}
	registry[k] = c.Lang.en
	return c
}

// NewError 注册错误码，同一错误码重复注册会 panic
func NewError(code int, httpStatus int, l lang) *Code {
	return register(&Code{code: code, httpStatus: httpStatus, Lang: l})
}

// NewSuss 注册成功码
func NewSuss(code int, l lang) *Code {
	return register(&Code{code: code, httpStatus: http.StatusOK, ok: true, Lang: l})
}

func (e *Code) clone() *Code {
	c := *e
	c.details = append([]string(nil), e.details...)
	return &c
}

func (e *Code) Error() string { return e.Msg() }

func (e *Code) Code() int { return e.code }

// Status 成功码为 true
func (e *Code) Status() bool { return e.ok }

// Msg 全局默认语言的消息
func (e *Code) Msg() string { return e.Lang.GetMessage() }

// MsgIn returns the message in language, falling back to English
// MsgIn 返回指定语言的消息，缺失时回退英文
func (e *Code) MsgIn(language string) string { return e.Lang.GetMessageIn(language) }

func (e *Code) Details() []string { return e.details }

func (e *Code) Data() any { return e.data }

func (e *Code) HaveDetails() bool { return len(e.details) > 0 }

func (e *Code) HaveData() bool { return e.hasData }

// WithData 返回携带数据的副本
func (e *Code) WithData(data any) *Code {
	c := e.clone()
	c.data, c.hasData = data, true
	return c
}

// WithDetails 返回携带详情的副本
func (e *Code) WithDetails(details ...string) *Code {
	c := e.clone()
	c.details = append(c.details[:0], details...)
	return c
}

// Is matches any copy of the same registered code, so errors.Is works after WithData / WithDetails
// Is 对同一注册码的任意副本成立
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	return ok && t.code == e.code && t.ok == e.ok
}

// StatusCode 渲染时使用的 HTTP 状态，未设置时为 200
func (e *Code) StatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusOK
	}
	return e.httpStatus
}
