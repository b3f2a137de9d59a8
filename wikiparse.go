package wikiparse

import (
	"context"

	"github.com/goliatone/go-wikiparse/internal/assembler"
	"github.com/goliatone/go-wikiparse/internal/cachemode"
	"github.com/goliatone/go-wikiparse/internal/di"
	"github.com/goliatone/go-wikiparse/internal/parse"
	"github.com/goliatone/go-wikiparse/internal/revisions"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// Request exports the parse request.
type Request = parse.Request

// Result exports the ordered parse result.
type Result = assembler.Result

// Caller exports the identity a parse runs for.
type Caller = interfaces.Caller

// CacheMode exports the response cacheability level.
type CacheMode = cachemode.Mode

// ParseService exports the parse pipeline.
type ParseService = *parse.Service

// Store exports the content store with its seeding methods.
type Store = revisions.Store

const (
	CacheModePublic                = cachemode.Public
	CacheModeAnonPublicUserPrivate = cachemode.AnonPublicUserPrivate
	CacheModePrivate               = cachemode.Private
)

// Module is the entry point for hosts embedding the parser.
type Module struct {
	container *di.Container
}

// New wires a module from cfg. Options override individual collaborators.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Parser returns the configured parse service.
func (m *Module) Parser() ParseService {
	return m.container.Parser()
}

// Parse runs req through the pipeline.
func (m *Module) Parse(ctx context.Context, req Request) (*Result, error) {
	return m.container.Parser().Parse(ctx, req)
}

// CacheMode reports how cacheable the response to req would be.
func (m *Module) CacheMode(req Request) CacheMode {
	return m.container.Parser().CacheMode(req)
}

// Store returns the content store.
func (m *Module) Store() Store {
	return m.container.Store()
}

// Skins lists the installed skin names.
func (m *Module) Skins() []string {
	return m.container.Skins().Installed()
}

// Close releases storage opened by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
