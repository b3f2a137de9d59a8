package parsecache

import (
	"strconv"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-wikiparse/internal/logging"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// Config sizes the in-memory parser output cache.
type Config struct {
	Capacity           int
	Shards             int
	TTL                time.Duration
	EvictionPercentage int
}

// DefaultConfig keeps up to 10k outputs for a day.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		Shards:             10,
		TTL:                24 * time.Hour,
		EvictionPercentage: 10,
	}
}

// Cache stores parser output keyed by page, revision and options fingerprint.
type Cache struct {
	client *sturdyc.Client[*interfaces.ParserOutput]
	logger interfaces.Logger
}

var _ interfaces.ParserCache = (*Cache)(nil)

// Option customises a Cache.
type Option func(*Cache)

func WithLogger(logger interfaces.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a cache. Zero config fields fall back to DefaultConfig.
func New(cfg Config, opts ...Option) *Cache {
	def := DefaultConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.Shards <= 0 {
		cfg.Shards = def.Shards
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.EvictionPercentage <= 0 || cfg.EvictionPercentage > 100 {
		cfg.EvictionPercentage = def.EvictionPercentage
	}

	c := &Cache{
		client: sturdyc.New[*interfaces.ParserOutput](cfg.Capacity, cfg.Shards, cfg.TTL, cfg.EvictionPercentage),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Key builds the cache key for a revision rendered with the given options
// fingerprint.
func Key(pageID, revID int64, fingerprint string) string {
	return strconv.FormatInt(pageID, 10) + ":" + strconv.FormatInt(revID, 10) + ":" + fingerprint
}

func (c *Cache) Get(key string) (*interfaces.ParserOutput, bool) {
	out, ok := c.client.Get(key)
	if ok && out != nil {
		c.logger.Trace("parser cache hit", "key", key)
		return out, true
	}
	c.logger.Trace("parser cache miss", "key", key)
	return nil, false
}

func (c *Cache) Set(key string, output *interfaces.ParserOutput) {
	if output == nil {
		return
	}
	c.client.Set(key, output)
}

func (c *Cache) Delete(key string) {
	c.client.Delete(key)
}

// Size reports the number of cached outputs.
func (c *Cache) Size() int {
	return c.client.Size()
}
