package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrSiteDomainRequired      = errors.New("wikiparse config: site domain is required")
	ErrStorageProviderUnknown  = errors.New("wikiparse config: storage provider is invalid")
	ErrStorageDSNRequired      = errors.New("wikiparse config: storage dsn is required for the bun provider")
	ErrPoolWorkersInvalid      = errors.New("wikiparse config: pool workers must be positive")
	ErrPoolQueueInvalid        = errors.New("wikiparse config: pool queue size must be zero or positive")
	ErrCacheCapacityInvalid    = errors.New("wikiparse config: cache capacity must be positive when the cache is enabled")
	ErrDefaultSkinNotInstalled = errors.New("wikiparse config: default skin must be one of the installed skins")
	ErrLoggingLevelInvalid     = errors.New("wikiparse config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("wikiparse config: logging format is invalid")
)

// Storage providers.
const (
	StorageMemory = "memory"
	StorageBun    = "bun"
)

// Config aggregates the settings of the parse module.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Pool    PoolConfig    `yaml:"pool"`
	Cache   CacheConfig   `yaml:"cache"`
	Storage StorageConfig `yaml:"storage"`
	Skins   SkinsConfig   `yaml:"skins"`
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig describes the wiki the parser renders for.
type SiteConfig struct {
	// Domain scopes pool keys so several wikis can share one process.
	Domain string `yaml:"domain"`
	// Server prefixes full URLs of local titles.
	Server       string `yaml:"server"`
	DefaultModel string `yaml:"default_model"`
	// WrapOutputClass is the class of the div wrapped around parser output.
	WrapOutputClass string `yaml:"wrap_output_class"`
}

// PoolConfig bounds concurrent parses per caller.
type PoolConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Workers   int           `yaml:"workers"`
	MaxQueued int           `yaml:"max_queued"`
	Timeout   time.Duration `yaml:"timeout"`
}

// CacheConfig configures the parser output cache and the repository cache in
// front of bun storage.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	TTL      time.Duration `yaml:"ttl"`
	Capacity int           `yaml:"capacity"`
	Shards   int           `yaml:"shards"`
}

// StorageConfig selects the content store.
type StorageConfig struct {
	Provider string `yaml:"provider"`
	DSN      string `yaml:"dsn"`
}

// SkinsConfig lists the skins available to useskin.
type SkinsConfig struct {
	Default   string   `yaml:"default"`
	Installed []string `yaml:"installed"`
}

// LoggingConfig captures go-logger options.
type LoggingConfig struct {
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns defaults suitable for a single wiki.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Domain:          "localhost",
			Server:          "http://localhost",
			DefaultModel:    "wikitext",
			WrapOutputClass: "mw-parser-output",
		},
		Pool: PoolConfig{
			Enabled:   true,
			Workers:   1,
			MaxQueued: 50,
			Timeout:   15 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:  true,
			TTL:      time.Hour,
			Capacity: 10000,
			Shards:   10,
		},
		Storage: StorageConfig{
			Provider: StorageMemory,
		},
		Skins: SkinsConfig{
			Default: "vector",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks field values first, then cross-field consistency.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Site.Domain) == "" {
		return ErrSiteDomainRequired
	}

	provider := normalize(cfg.Storage.Provider)
	if err := validation.Validate(provider, validation.In(StorageMemory, StorageBun)); err != nil {
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}
	if provider == StorageBun && strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}

	if cfg.Pool.Enabled {
		if err := validation.Validate(cfg.Pool.Workers, validation.Required, validation.Min(1)); err != nil {
			return ErrPoolWorkersInvalid
		}
		if err := validation.Validate(cfg.Pool.MaxQueued, validation.Min(0)); err != nil {
			return ErrPoolQueueInvalid
		}
	}

	if cfg.Cache.Enabled {
		if err := validation.Validate(cfg.Cache.Capacity, validation.Required, validation.Min(1)); err != nil {
			return ErrCacheCapacityInvalid
		}
	}

	if def := strings.TrimSpace(cfg.Skins.Default); def != "" && len(cfg.Skins.Installed) > 0 {
		found := false
		for _, name := range cfg.Skins.Installed {
			if strings.EqualFold(strings.TrimSpace(name), def) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrDefaultSkinNotInstalled, def)
		}
	}

	if level := normalize(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, cfg.Logging.Level)
	}
	if format := normalize(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, cfg.Logging.Format)
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch format {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
