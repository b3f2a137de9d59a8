package wikiparse

import "github.com/goliatone/go-wikiparse/internal/runtimeconfig"

var (
	ErrSiteDomainRequired      = runtimeconfig.ErrSiteDomainRequired
	ErrStorageProviderUnknown  = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired      = runtimeconfig.ErrStorageDSNRequired
	ErrPoolWorkersInvalid      = runtimeconfig.ErrPoolWorkersInvalid
	ErrPoolQueueInvalid        = runtimeconfig.ErrPoolQueueInvalid
	ErrCacheCapacityInvalid    = runtimeconfig.ErrCacheCapacityInvalid
	ErrDefaultSkinNotInstalled = runtimeconfig.ErrDefaultSkinNotInstalled
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config        = runtimeconfig.Config
	SiteConfig    = runtimeconfig.SiteConfig
	PoolConfig    = runtimeconfig.PoolConfig
	CacheConfig   = runtimeconfig.CacheConfig
	StorageConfig = runtimeconfig.StorageConfig
	SkinsConfig   = runtimeconfig.SkinsConfig
	LoggingConfig = runtimeconfig.LoggingConfig
)

// DefaultConfig returns the module defaults.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
