package di

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-wikiparse/internal/assembler"
	"github.com/goliatone/go-wikiparse/internal/content"
	"github.com/goliatone/go-wikiparse/internal/logging"
	"github.com/goliatone/go-wikiparse/internal/logging/gologger"
	"github.com/goliatone/go-wikiparse/internal/pageset"
	"github.com/goliatone/go-wikiparse/internal/parse"
	"github.com/goliatone/go-wikiparse/internal/parsecache"
	"github.com/goliatone/go-wikiparse/internal/parseropts"
	"github.com/goliatone/go-wikiparse/internal/permissions"
	"github.com/goliatone/go-wikiparse/internal/poolcounter"
	"github.com/goliatone/go-wikiparse/internal/render"
	"github.com/goliatone/go-wikiparse/internal/resolver"
	"github.com/goliatone/go-wikiparse/internal/revisions"
	"github.com/goliatone/go-wikiparse/internal/runtimeconfig"
	"github.com/goliatone/go-wikiparse/internal/skins"
	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// Container wires the parse pipeline and its collaborators.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	site        titles.Site
	models      *content.Registry
	store       *storeProxy
	pageSet     *pageset.Resolver
	permissions interfaces.PermissionChecker
	renderer    interfaces.MarkupRenderer
	skins       *skins.Registry
	parserCache *parserCacheProxy
	pool        interfaces.WorkerPool

	customStore       revisions.Store
	customRenderer    interfaces.MarkupRenderer
	customParserCache interfaces.ParserCache
	customPool        interfaces.WorkerPool

	options   *parseropts.Builder
	executor  *poolcounter.Executor
	resolver  *resolver.Resolver
	assembler *assembler.Assembler
	parser    *parse.Service
	now       func() time.Time
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the go-logger provider built from config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithBunDB supplies the database used by the bun storage provider.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache in front of bun storage.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithContentStore bypasses the configured storage provider.
func WithContentStore(store revisions.Store) Option {
	return func(c *Container) {
		c.customStore = store
	}
}

// WithSite overrides the interwiki map and URL layout.
func WithSite(site titles.Site) Option {
	return func(c *Container) {
		c.site = site
	}
}

// WithContentModels overrides the content model registry.
func WithContentModels(models *content.Registry) Option {
	return func(c *Container) {
		if models != nil {
			c.models = models
		}
	}
}

func WithPermissions(checker interfaces.PermissionChecker) Option {
	return func(c *Container) {
		if checker != nil {
			c.permissions = checker
		}
	}
}

func WithRenderer(renderer interfaces.MarkupRenderer) Option {
	return func(c *Container) {
		c.customRenderer = renderer
	}
}

func WithParserCache(cache interfaces.ParserCache) Option {
	return func(c *Container) {
		c.customParserCache = cache
	}
}

func WithWorkerPool(pool interfaces.WorkerPool) Option {
	return func(c *Container) {
		c.customPool = pool
	}
}

// WithClock overrides the time source used for signatures and timings.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.now = now
		}
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.TTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	site := titles.DefaultSite()
	if server := strings.TrimSpace(cfg.Site.Server); server != "" {
		site.Server = server
	}

	c := &Container{
		Config:      cfg,
		cacheTTL:    cacheTTL,
		site:        site,
		models:      content.NewRegistry(),
		permissions: permissions.NewPolicy(),
		parserCache: &parserCacheProxy{},
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogger(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	if err := c.configureSkins(); err != nil {
		return nil, err
	}
	c.configureParserCache()
	c.configurePool()
	c.configureServices()
	return c, nil
}

func (c *Container) configureLogger() error {
	if c.loggerProvider == nil {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
			Fields:    map[string]any{"domain": c.Config.Site.Domain},
		})
		if err != nil {
			return fmt.Errorf("di: logger: %w", err)
		}
		c.loggerProvider = provider
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "wikiparse")
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || !c.usesBun() {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		} else {
			c.logger.Warn("repository cache disabled", "error", err)
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) usesBun() bool {
	return c.customStore == nil && strings.EqualFold(strings.TrimSpace(c.Config.Storage.Provider), runtimeconfig.StorageBun)
}

func (c *Container) configureStorage() error {
	store, err := c.buildStore(context.Background())
	if err != nil {
		return err
	}
	c.store = newStoreProxy(store)
	c.pageSet = pageset.New(c.store, c.site)
	return nil
}

func (c *Container) buildStore(ctx context.Context) (revisions.Store, error) {
	if c.customStore != nil {
		return c.customStore, nil
	}
	if !c.usesBun() {
		return revisions.NewMemoryStore(), nil
	}

	if c.bunDB == nil {
		sqlDB, err := sql.Open("sqlite3", c.Config.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: open storage: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		c.bunDB = bun.NewDB(sqlDB, sqlitedialect.New())
		c.ownsDB = true
	}

	opts := []revisions.BunOption{revisions.WithLogger(logging.StorageLogger(c.loggerProvider))}
	if c.cacheService != nil && c.keySerializer != nil {
		opts = append(opts, revisions.WithCache(c.cacheService, c.keySerializer))
	}
	store := revisions.NewBunStore(c.bunDB, opts...)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("di: storage schema: %w", err)
	}
	return store, nil
}

func (c *Container) configureSkins() error {
	c.skins = skins.NewRegistry(c.site,
		skins.WithDefaultSkin(c.Config.Skins.Default),
		skins.WithLogger(logging.ModuleLogger(c.loggerProvider, "wikiparse.skins")),
	)
	for _, name := range c.Config.Skins.Installed {
		if c.skins.HasSkin(name) {
			continue
		}
		if err := c.skins.Register(skins.Skin{Name: name}); err != nil {
			return fmt.Errorf("di: skin %q: %w", name, err)
		}
	}
	return nil
}

func (c *Container) configureParserCache() {
	switch {
	case c.customParserCache != nil:
		c.parserCache.swap(c.customParserCache)
	case c.Config.Cache.Enabled:
		c.parserCache.swap(c.newParserCache())
	}
}

func (c *Container) newParserCache() interfaces.ParserCache {
	return parsecache.New(parsecache.Config{
		Capacity: c.Config.Cache.Capacity,
		Shards:   c.Config.Cache.Shards,
		TTL:      c.cacheTTL,
	}, parsecache.WithLogger(logging.ModuleLogger(c.loggerProvider, "wikiparse.parsecache")))
}

func (c *Container) configurePool() {
	switch {
	case c.customPool != nil:
		c.pool = c.customPool
	case c.Config.Pool.Enabled:
		c.pool = poolcounter.New(poolcounter.Config{
			Workers:   c.Config.Pool.Workers,
			MaxQueued: c.Config.Pool.MaxQueued,
			Timeout:   c.Config.Pool.Timeout,
		}, poolcounter.WithLogger(logging.PoolLogger(c.loggerProvider)))
	default:
		c.pool = poolcounter.Direct{}
	}
}

func (c *Container) configureServices() {
	c.renderer = c.customRenderer
	if c.renderer == nil {
		c.renderer = render.New(c.site, render.WithTemplates(render.StoreTemplates{Store: c.store}))
	}

	c.options = parseropts.NewBuilder(c.Config.Site.WrapOutputClass,
		parseropts.WithLogger(logging.ModuleLogger(c.loggerProvider, "wikiparse.options")),
	)
	c.executor = poolcounter.NewExecutor(c.pool, c.Config.Site.Domain,
		poolcounter.WithExecutorLogger(logging.PoolLogger(c.loggerProvider)),
	)
	c.resolver = resolver.New(c.store, c.models, c.site,
		resolver.WithPageSet(c.pageSet),
		resolver.WithPermissions(c.permissions),
		resolver.WithDefaultModel(c.Config.Site.DefaultModel),
		resolver.WithLogger(logging.ResolverLogger(c.loggerProvider)),
	)
	c.assembler = assembler.New(c.site,
		assembler.WithPageSet(c.pageSet),
		assembler.WithDecorator(c.skins),
		assembler.WithRenderer(c.renderer),
		assembler.WithLanguageLinker(c.skins),
		assembler.WithLogger(logging.ModuleLogger(c.loggerProvider, "wikiparse.assembler")),
	)

	serviceOpts := []parse.Option{
		parse.WithPageSet(c.pageSet),
		parse.WithClock(c.now),
		parse.WithLogger(logging.ParseLogger(c.loggerProvider)),
	}
	if c.customParserCache != nil || c.Config.Cache.Enabled {
		serviceOpts = append(serviceOpts, parse.WithParserCache(c.parserCache))
	}
	c.parser = parse.NewService(c.resolver, c.options, c.executor, c.renderer, c.assembler, serviceOpts...)
}

// SwapStore replaces the content store behind every service and starts a
// fresh parser cache.
func (c *Container) SwapStore(store revisions.Store) {
	if store == nil {
		return
	}
	c.store.swap(store)
	if c.customParserCache == nil && c.Config.Cache.Enabled {
		c.parserCache.swap(c.newParserCache())
	}
	c.logger.Info("content store swapped", "store", fmt.Sprintf("%T", store))
}

// Close releases the database opened from the storage DSN.
func (c *Container) Close() error {
	if c.ownsDB && c.bunDB != nil {
		return c.bunDB.Close()
	}
	return nil
}

func (c *Container) Parser() *parse.Service {
	return c.parser
}

// Store exposes the content store, including the seeding methods.
func (c *Container) Store() revisions.Store {
	return c.store
}

func (c *Container) Skins() *skins.Registry {
	return c.skins
}

func (c *Container) Site() titles.Site {
	return c.site
}

func (c *Container) ContentModels() *content.Registry {
	return c.models
}

// ParserOptionsBuilder exposes the MakeParserOptions hook registry owner.
func (c *Container) ParserOptionsBuilder() *parseropts.Builder {
	return c.options
}

func (c *Container) Assembler() *assembler.Assembler {
	return c.assembler
}

func (c *Container) WorkerPool() interfaces.WorkerPool {
	return c.pool
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}
