package editable

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/dto"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNotAuthorized 无编辑权限时开启编辑模式
var ErrNotAuthorized = errors.New("editable: identity cannot edit content")

// DefaultLoadConcurrency LoadAll 默认并发数
const DefaultLoadConcurrency = 8

// Page owns the edit mode toggle and pushes context changes to its controls
// Page 持有编辑模式开关，并把上下文变化推送给所有控件
type Page struct {
	api    ContentAPI
	logger *zap.Logger

	mu       sync.RWMutex
	ctx      EditContext
	order    []string
	controls map[string]*Control
}

// NewPage 创建页面，identity 为空表示匿名访问
func NewPage(api ContentAPI, identity *dto.AuthUserDTO, logger *zap.Logger) *Page {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Page{
		api:      api,
		logger:   logger,
		ctx:      NewEditContext(identity, false),
		controls: make(map[string]*Control),
	}
}

// Add 挂载控件；同一 ID 重复挂载时返回已有控件
func (p *Page) Add(id string, element domain.Element, defaultContent string, opts ...Option) *Control {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.controls[id]; ok {
		return c
	}
	c := NewControl(id, element, defaultContent, p.api, opts...)
	c.SetContext(p.ctx)
	p.controls[id] = c
	p.order = append(p.order, id)
	return c
}

func (p *Page) Control(id string) (*Control, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.controls[id]
	return c, ok
}

func (p *Page) Context() EditContext {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ctx
}

func (p *Page) EditMode() bool {
	return p.Context().EditModeActive
}

// SetIdentity 登录或退出后调用，失去权限时同时退出编辑模式
func (p *Page) SetIdentity(identity *dto.AuthUserDTO) {
	p.mu.Lock()
	ec := NewEditContext(identity, p.ctx.EditModeActive)
	if !ec.CanEdit {
		ec.EditModeActive = false
	}
	p.ctx = ec
	p.mu.Unlock()
	p.broadcast(ec)
}

// SetEditMode 开启或关闭编辑模式
func (p *Page) SetEditMode(active bool) error {
	p.mu.Lock()
	if active && !p.ctx.CanEdit {
		p.mu.Unlock()
		return ErrNotAuthorized
	}
	p.ctx = p.ctx.WithEditMode(active)
	ec := p.ctx
	p.mu.Unlock()
	p.broadcast(ec)
	return nil
}

func (p *Page) ToggleEditMode() error {
	return p.SetEditMode(!p.EditMode())
}

func (p *Page) broadcast(ec EditContext) {
	for _, c := range p.list() {
		c.SetContext(ec)
	}
}

func (p *Page) list() []*Control {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Control, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.controls[id])
	}
	return out
}

// LoadAll refines every control concurrently. One failure never affects
// the others; failures are returned per id.
// LoadAll 并发加载全部控件，单个失败互不影响，按 ID 返回失败
func (p *Page) LoadAll(ctx context.Context) map[string]error {
	var (
		mu       sync.Mutex
		failures = make(map[string]error)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultLoadConcurrency)
	for _, c := range p.list() {
		g.Go(func() error {
			if err := c.Load(gctx); err != nil {
				p.logger.Warn("editable load failed, keep default", zap.String("id", c.ID()), zap.Error(err))
				mu.Lock()
				failures[c.ID()] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failures
}

// editing 当前处于编辑状态的控件
func (p *Page) editing() *Control {
	for _, c := range p.list() {
		if c.State() == StateEditing {
			return c
		}
	}
	return nil
}

// HandleKey 页面级快捷键：Ctrl/Cmd+E 切换编辑模式；
// 没有控件在编辑时 Escape 退出编辑模式；其余交给正在编辑的控件
func (p *Page) HandleKey(ctx context.Context, k Key) (bool, error) {
	if k.isToggleEditMode() {
		if !p.Context().CanEdit {
			return false, nil
		}
		return true, p.ToggleEditMode()
	}
	if c := p.editing(); c != nil {
		return c.HandleKey(ctx, k)
	}
	if k.isEscape() && p.EditMode() {
		return true, p.SetEditMode(false)
	}
	return false, nil
}

// Render 按挂载顺序输出全部控件
func (p *Page) Render() string {
	var b strings.Builder
	for _, c := range p.list() {
		b.WriteString(Render(c.View()))
		b.WriteString("\n")
	}
	return b.String()
}
