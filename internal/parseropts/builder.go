package parseropts

import (
	"context"
	"sync"

	"github.com/goliatone/go-wikiparse/internal/hooks"
	"github.com/goliatone/go-wikiparse/internal/logging"
	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// PageContext identifies what is being parsed and for whom.
type PageContext struct {
	Title  titles.Title
	Model  string
	Caller interfaces.Caller
}

// Request carries the per-request switches that affect options.
type Request struct {
	// DisableLimitReport and DisablePP are two independent legacy flags;
	// either one turns the limit report off.
	DisableLimitReport bool
	DisablePP          bool
	Preview            bool
	SectionPreview     bool
	WrapOutputClass    string
}

// HookContext is handed to MakeParserOptions handlers.
type HookContext struct {
	Page    PageContext
	Options *Options
	// SuppressCache asks the pipeline to skip the parser cache.
	SuppressCache bool

	resets []func()
}

// OnReset registers fn to run when the result is released. Handlers that
// change shared state must restore it here.
func (h *HookContext) OnReset(fn func()) {
	if fn != nil {
		h.resets = append(h.resets, fn)
	}
}

// Result is a built configuration plus the cleanup obligations of the hooks
// that shaped it. Callers defer Release.
type Result struct {
	Options       *Options
	SuppressCache bool

	resets []func()
	once   sync.Once
	logger interfaces.Logger
}

// Release runs hook resets in reverse registration order. Safe to call more
// than once and on a nil result.
func (r *Result) Release() {
	if r == nil {
		return
	}
	r.once.Do(func() {
		for i := len(r.resets) - 1; i >= 0; i-- {
			r.resets[i]()
		}
		if len(r.resets) > 0 && r.logger != nil {
			r.logger.Debug("parser options hooks reset", "count", len(r.resets))
		}
	})
}

// Builder derives options from site defaults, request switches and hooks.
type Builder struct {
	wrapClass string
	hooks     *hooks.Registry[*HookContext]
	logger    interfaces.Logger
}

// BuilderOption customises a Builder.
type BuilderOption func(*Builder)

func WithHooks(reg *hooks.Registry[*HookContext]) BuilderOption {
	return func(b *Builder) {
		if reg != nil {
			b.hooks = reg
		}
	}
}

func WithLogger(logger interfaces.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder uses siteWrapClass as the default output wrapper class.
func NewBuilder(siteWrapClass string, opts ...BuilderOption) *Builder {
	b := &Builder{
		wrapClass: siteWrapClass,
		hooks:     hooks.NewRegistry[*HookContext](hooks.MakeParserOptions),
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Hooks exposes the MakeParserOptions registry.
func (b *Builder) Hooks() *hooks.Registry[*HookContext] {
	return b.hooks
}

// Build returns frozen options. On error or panic every reset already
// registered has been run.
func (b *Builder) Build(ctx context.Context, page PageContext, req Request) (*Result, error) {
	opts := newOptions(b.wrapClass)
	opts.limitReport = !(req.DisableLimitReport || req.DisablePP)
	opts.preview = req.Preview || req.SectionPreview
	opts.sectionPreview = req.SectionPreview
	if req.WrapOutputClass != "" {
		opts.wrapClass = req.WrapOutputClass
	}

	hookCtx := &HookContext{Page: page, Options: opts}
	result := &Result{Options: opts, logger: b.logger}
	defer func() {
		if r := recover(); r != nil {
			result.resets = hookCtx.resets
			result.Release()
			panic(r)
		}
	}()

	aborted, err := b.hooks.Run(ctx, hookCtx)
	result.SuppressCache = hookCtx.SuppressCache
	result.resets = hookCtx.resets
	if err != nil {
		result.Release()
		return nil, err
	}
	if aborted {
		b.logger.Debug("parser options hooks aborted", "title", page.Title.PrefixedText())
	}
	opts.Freeze()
	return result, nil
}
