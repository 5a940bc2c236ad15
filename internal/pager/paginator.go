// Package pager windows the delivery history into pages.
//
// The Paginator owns the page-size preference and the current page index.
// It keeps 0 <= current < TotalPages() after every navigation call and after
// every mutation of the underlying history, and it ties the history capacity
// to the page size (see history.CapacityFor).
package pager

import (
	"context"
	"log/slog"

	"github.com/roach88/hookwatch/internal/history"
	"github.com/roach88/hookwatch/internal/kv"
)

// DefaultKey is the kv key holding the page-size preference.
const DefaultKey = "webhook_page_size"

// Renderer receives re-render requests.
type Renderer interface {
	Render()
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func()

func (f RendererFunc) Render() { f() }

// State is a snapshot of the pager for display.
type State struct {
	Setting      history.PageSetting
	CurrentPage  int // zero-based
	TotalPages   int
	TotalRecords int
	IsFirst      bool
	IsLast       bool
}

// Paginator derives the visible window from a history.Store.
type Paginator struct {
	store    *history.Store
	prefs    kv.Store
	key      string
	setting  history.PageSetting
	current  int
	renderer Renderer
	logger   *slog.Logger
}

// Option configures a Paginator.
type Option func(*Paginator)

// WithKey overrides the kv key for the page-size preference.
func WithKey(key string) Option {
	return func(p *Paginator) {
		if key != "" {
			p.key = key
		}
	}
}

// WithRenderer sets the target of re-render requests.
func WithRenderer(r Renderer) Option {
	return func(p *Paginator) {
		p.renderer = r
	}
}

// WithLogger sets the logger for preference persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Paginator) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Paginator over store using the default page setting.
// prefs may be nil, in which case the preference is not persisted.
// The Paginator re-clamps itself whenever store changes.
func New(store *history.Store, prefs kv.Store, opts ...Option) *Paginator {
	p := &Paginator{
		store:   store,
		prefs:   prefs,
		key:     DefaultKey,
		setting: history.DefaultPageSetting,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	store.OnChange(p.onStoreChanged)
	return p
}

// SetRenderer replaces the re-render target. Used when the surface is built
// after the Paginator.
func (p *Paginator) SetRenderer(r Renderer) {
	p.renderer = r
}

// Load reads the stored page-size preference and applies the matching
// capacity. Missing or unreadable preferences fall back to the default.
func (p *Paginator) Load(ctx context.Context) {
	p.setting = history.DefaultPageSetting
	if p.prefs != nil {
		raw, found, err := p.prefs.Get(ctx, p.key)
		switch {
		case err != nil:
			p.logger.Warn("failed to load page size preference", "key", p.key, "error", err)
		case found:
			setting, parseErr := history.ParsePageSetting(string(raw))
			if parseErr != nil {
				p.logger.Warn("ignoring stored page size", "key", p.key, "value", string(raw), "error", parseErr)
			} else {
				p.setting = setting
			}
		}
	}
	p.current = 0
	p.store.SetCapacity(ctx, history.CapacityFor(p.setting))
	p.clamp()
}

// SetPageSize persists setting, resizes the history, returns to the first
// page and requests a render.
func (p *Paginator) SetPageSize(ctx context.Context, setting history.PageSetting) {
	p.setting = setting
	if p.prefs != nil {
		if err := p.prefs.Set(ctx, p.key, []byte(setting.String())); err != nil {
			p.logger.Warn("failed to save page size preference", "key", p.key, "error", err)
		}
	}
	p.store.SetCapacity(ctx, history.CapacityFor(setting))
	p.current = 0
	p.render()
}

// Setting returns the active page setting.
func (p *Paginator) Setting() history.PageSetting {
	return p.setting
}

// CurrentPage returns the zero-based current page index.
func (p *Paginator) CurrentPage() int {
	return p.current
}

// PageSize returns the number of rows per page; for All it is the record count.
func (p *Paginator) PageSize() int {
	if p.setting.IsAll() {
		return p.store.Len()
	}
	return int(p.setting)
}

// TotalPages returns 1 for All, otherwise max(1, ceil(len/size)).
func (p *Paginator) TotalPages() int {
	if p.setting.IsAll() {
		return 1
	}
	size := int(p.setting)
	pages := (p.store.Len() + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// GotoPage clamps n into [0, TotalPages()-1], makes it current and requests
// a render.
func (p *Paginator) GotoPage(n int) {
	p.current = n
	p.clamp()
	p.render()
}

// First goes to the first page.
func (p *Paginator) First() {
	p.GotoPage(0)
}

// Last goes to the last page.
func (p *Paginator) Last() {
	p.GotoPage(p.TotalPages() - 1)
}

// Prev goes back one page. No-op on the first page.
func (p *Paginator) Prev() {
	if p.current > 0 {
		p.GotoPage(p.current - 1)
	}
}

// Next goes forward one page. No-op on the last page.
func (p *Paginator) Next() {
	if p.current < p.TotalPages()-1 {
		p.GotoPage(p.current + 1)
	}
}

// Window returns the records on the current page, newest first.
func (p *Paginator) Window() []history.DeliveryRecord {
	start := p.WindowStart()
	return p.store.Slice(start, start+p.PageSize())
}

// WindowStart returns the history index of the first row on the current page.
func (p *Paginator) WindowStart() int {
	return p.current * p.PageSize()
}

// State returns a display snapshot.
func (p *Paginator) State() State {
	total := p.TotalPages()
	return State{
		Setting:      p.setting,
		CurrentPage:  p.current,
		TotalPages:   total,
		TotalRecords: p.store.Len(),
		IsFirst:      p.current == 0,
		IsLast:       p.current >= total-1,
	}
}

func (p *Paginator) onStoreChanged() {
	p.clamp()
	p.render()
}

func (p *Paginator) clamp() {
	if last := p.TotalPages() - 1; p.current > last {
		p.current = last
	}
	if p.current < 0 {
		p.current = 0
	}
}

func (p *Paginator) render() {
	if p.renderer != nil {
		p.renderer.Render()
	}
}
