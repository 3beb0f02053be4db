package editable

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/dto"
)

const (
	MsgSaveFailed    = "Failed to save changes"
	MsgRestoreFailed = "Failed to restore version"
)

var (
	ErrNotEditable = errors.New("editable: control is read-only in this context")
	ErrBusy        = errors.New("editable: a save is in flight")
	ErrNotEditing  = errors.New("editable: control is not editing")
)

// State 控件状态
type State string

const (
	StateViewing State = "viewing"
	StateEditing State = "editing"
	StateSaving  State = "saving"
)

// ContentAPI 控件依赖的服务端接口，HTTPClient 为其 HTTP 实现
type ContentAPI interface {
	Resolve(ctx context.Context, id string) (*dto.ContentResolveResponse, error)
	Put(ctx context.Context, params *dto.TextPutRequest) (*dto.TextPutResponse, error)
	History(ctx context.Context, id string, limit int) (*dto.TextHistoryResponse, error)
}

// Option 控件选项
type Option func(*Control)

func WithPage(page string) Option {
	return func(c *Control) { c.page = page }
}

func WithSection(section string) Option {
	return func(c *Control) { c.section = section }
}

func WithClassName(className string) Option {
	return func(c *Control) { c.className = className }
}

// OnSave 保存或恢复成功后调用
func OnSave(fn func(content string, version int64)) Option {
	return func(c *Control) { c.onSave = fn }
}

// OnError 保存或恢复失败后调用，msg 为可直接展示的文本
func OnError(fn func(msg string)) Option {
	return func(c *Control) { c.onError = fn }
}

// Control is the per-block state machine: viewing, editing, saving.
// The rollback snapshot is the last content known to be stored.
// Control 单个文本块的状态机，snapshot 为回滚值
type Control struct {
	id        string
	element   domain.Element
	page      string
	section   string
	className string
	api       ContentAPI
	onSave    func(content string, version int64)
	onError   func(msg string)

	mu        sync.Mutex
	ctx       EditContext
	state     State
	displayed string
	snapshot  string
	buffer    string
	caret     int
	focused   bool
	version   int64
	// customized 显示内容来自服务端而非默认文本
	customized bool
	// saved 成功写入次数，Load 据此丢弃过期结果
	saved   uint64
	lastErr error
}

// NewControl 挂载控件，立即显示 defaultContent
func NewControl(id string, element domain.Element, defaultContent string, api ContentAPI, opts ...Option) *Control {
	if !element.Valid() {
		element = domain.DefaultElement
	}
	c := &Control{
		id:        id,
		element:   element,
		api:       api,
		state:     StateViewing,
		displayed: defaultContent,
		snapshot:  defaultContent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Control) ID() string { return c.id }

// View 控件的只读快照
type View struct {
	ID        string
	Element   domain.Element
	ClassName string
	State     State
	Displayed string
	Buffer    string
	Caret     int
	Focused   bool
	Version   int64
	// EditMode 上下文允许编辑（编辑模式下的可编辑标记）
	EditMode   bool
	Customized bool
	LastError  error
}

func (c *Control) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		ID:         c.id,
		Element:    c.element,
		ClassName:  c.className,
		State:      c.state,
		Displayed:  c.displayed,
		Buffer:     c.buffer,
		Caret:      c.caret,
		Focused:    c.focused,
		Version:    c.version,
		EditMode:   c.ctx.Editable(),
		Customized: c.customized,
		LastError:  c.lastErr,
	}
}

func (c *Control) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Control) Displayed() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayed
}

// IsCustomized reports whether the displayed content came from the server
func (c *Control) IsCustomized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.customized
}

// LastError 最近一次保存或恢复失败的错误，成功后清空
func (c *Control) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// SetContext 更新编辑上下文；失去编辑权限时丢弃正在编辑的内容
func (c *Control) SetContext(ec EditContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx = ec
	if !ec.Editable() && c.state == StateEditing {
		c.rollbackLocked()
	}
}

// Load replaces the default with the stored content, only while viewing.
// A failed or empty lookup keeps what is displayed, and so does a result that
// raced with a completed save.
// Load 用服务端内容替换默认文本，仅在 viewing 状态生效
func (c *Control) Load(ctx context.Context) error {
	c.mu.Lock()
	saved := c.saved
	c.mu.Unlock()

	res, err := c.api.Resolve(ctx, c.id)
	if err != nil {
		return err
	}
	if res == nil || res.Content == nil || *res.Content == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// a save that completed meanwhile is newer than what was resolved
	if c.state != StateViewing || c.saved != saved {
		return nil
	}
	c.displayed = *res.Content
	c.snapshot = *res.Content
	c.customized = true
	return nil
}

// BeginEdit snapshots the displayed content and focuses with the caret at the end
// BeginEdit 进入编辑，记录回滚值，光标置于末尾
func (c *Control) BeginEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ctx.Editable() {
		return ErrNotEditable
	}
	switch c.state {
	case StateSaving:
		return ErrBusy
	case StateEditing:
		return nil
	}
	c.snapshot = c.displayed
	c.buffer = c.displayed
	c.caret = utf8.RuneCountInString(c.buffer)
	c.focused = true
	c.state = StateEditing
	return nil
}

// Input 替换编辑缓冲区
func (c *Control) Input(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return ErrNotEditing
	}
	c.buffer = text
	c.caret = utf8.RuneCountInString(text)
	return nil
}

// Cancel 丢弃编辑内容并恢复回滚值
func (c *Control) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateEditing {
		c.rollbackLocked()
	}
}

func (c *Control) rollbackLocked() {
	c.displayed = c.snapshot
	c.buffer = ""
	c.caret = 0
	c.focused = false
	c.state = StateViewing
}

// Save sends the trimmed buffer. Unchanged content returns to viewing without a call.
// Save 提交去除首尾空白后的内容，与回滚值相同时不发请求
func (c *Control) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateSaving {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state != StateEditing {
		c.mu.Unlock()
		return ErrNotEditing
	}
	content := strings.TrimSpace(c.buffer)
	if content == c.snapshot {
		c.rollbackLocked()
		c.mu.Unlock()
		return nil
	}
	c.displayed = content
	c.focused = false
	c.state = StateSaving
	req := c.putRequestLocked(content)
	c.mu.Unlock()

	res, err := c.api.Put(ctx, req)
	return c.finish(res, err, content, MsgSaveFailed)
}

// RestoreVersion asks the server to copy a historical version into a new one
// RestoreVersion 恢复历史版本，服务端生成新版本号
func (c *Control) RestoreVersion(ctx context.Context, record *dto.VersionRecordDTO) error {
	if record == nil {
		return errors.New("editable: nil version record")
	}
	c.mu.Lock()
	if !c.ctx.Editable() {
		c.mu.Unlock()
		return ErrNotEditable
	}
	if c.state == StateSaving {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state == StateEditing {
		c.rollbackLocked()
	}
	c.state = StateSaving
	req := c.putRequestLocked(record.Content)
	version := record.Version
	req.RestoreVersion = &version
	c.mu.Unlock()

	res, err := c.api.Put(ctx, req)
	return c.finish(res, err, record.Content, MsgRestoreFailed)
}

// History 查询历史版本，不改变控件状态
func (c *Control) History(ctx context.Context, limit int) ([]*dto.VersionRecordDTO, error) {
	res, err := c.api.History(ctx, c.id, limit)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	return res.Versions, nil
}

// HandleKey Escape 取消，Ctrl/Cmd+Enter 保存；返回是否处理
func (c *Control) HandleKey(ctx context.Context, k Key) (bool, error) {
	if c.State() != StateEditing {
		return false, nil
	}
	switch {
	case k.isEscape():
		c.Cancel()
		return true, nil
	case k.isSave():
		return true, c.Save(ctx)
	}
	return false, nil
}

func (c *Control) putRequestLocked(content string) *dto.TextPutRequest {
	element := c.element.String()
	req := &dto.TextPutRequest{ID: c.id, Content: content, Element: &element}
	if c.page != "" {
		page := c.page
		req.Page = &page
	}
	if c.section != "" {
		section := c.section
		req.Section = &section
	}
	return req
}

// finish reconciles a Put result: success commits, failure reverts to the snapshot
// finish 处理写入结果：成功提交，失败回滚
func (c *Control) finish(res *dto.TextPutResponse, err error, sent, fallback string) error {
	c.mu.Lock()
	c.state = StateViewing
	c.buffer = ""
	c.caret = 0

	if err != nil {
		c.displayed = c.snapshot
		c.lastErr = err
		onError := c.onError
		c.mu.Unlock()
		if onError != nil {
			onError(errorMessage(err, fallback))
		}
		return err
	}

	stored := sent
	if res != nil && res.TextBlock != nil {
		stored = res.TextBlock.Content
	}
	c.displayed = stored
	c.snapshot = stored
	c.customized = true
	c.saved++
	if res != nil {
		c.version = res.Version
	}
	c.lastErr = nil
	onSave, version := c.onSave, c.version
	c.mu.Unlock()

	if onSave != nil {
		onSave(stored, version)
	}
	return nil
}

// errorMessage 优先使用服务端返回的错误文本
func errorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
