package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-wikiparse/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if cfg.Pool.Workers != 1 || cfg.Pool.MaxQueued != 50 || cfg.Pool.Timeout.Seconds() != 15 {
		t.Fatalf("unexpected pool defaults %+v", cfg.Pool)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{
			name:   "domain required",
			mutate: func(c *runtimeconfig.Config) { c.Site.Domain = " " },
			want:   runtimeconfig.ErrSiteDomainRequired,
		},
		{
			name:   "unknown storage provider",
			mutate: func(c *runtimeconfig.Config) { c.Storage.Provider = "mongo" },
			want:   runtimeconfig.ErrStorageProviderUnknown,
		},
		{
			name:   "bun requires dsn",
			mutate: func(c *runtimeconfig.Config) { c.Storage.Provider = "bun" },
			want:   runtimeconfig.ErrStorageDSNRequired,
		},
		{
			name: "bun with dsn",
			mutate: func(c *runtimeconfig.Config) {
				c.Storage.Provider = "BUN"
				c.Storage.DSN = "file:wiki.db"
			},
		},
		{
			name:   "zero workers",
			mutate: func(c *runtimeconfig.Config) { c.Pool.Workers = 0 },
			want:   runtimeconfig.ErrPoolWorkersInvalid,
		},
		{
			name: "zero workers with pool disabled",
			mutate: func(c *runtimeconfig.Config) {
				c.Pool.Enabled = false
				c.Pool.Workers = 0
			},
		},
		{
			name:   "negative queue",
			mutate: func(c *runtimeconfig.Config) { c.Pool.MaxQueued = -1 },
			want:   runtimeconfig.ErrPoolQueueInvalid,
		},
		{
			name:   "cache without capacity",
			mutate: func(c *runtimeconfig.Config) { c.Cache.Capacity = 0 },
			want:   runtimeconfig.ErrCacheCapacityInvalid,
		},
		{
			name: "default skin not installed",
			mutate: func(c *runtimeconfig.Config) {
				c.Skins.Default = "timeless"
				c.Skins.Installed = []string{"vector", "monobook"}
			},
			want: runtimeconfig.ErrDefaultSkinNotInstalled,
		},
		{
			name:   "bad level",
			mutate: func(c *runtimeconfig.Config) { c.Logging.Level = "loud" },
			want:   runtimeconfig.ErrLoggingLevelInvalid,
		},
		{
			name:   "bad format",
			mutate: func(c *runtimeconfig.Config) { c.Logging.Format = "xml" },
			want:   runtimeconfig.ErrLoggingFormatInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
