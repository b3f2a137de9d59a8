package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	wikiparse "github.com/goliatone/go-wikiparse"
	"github.com/goliatone/go-wikiparse/internal/commands/seedcmd"
	"github.com/goliatone/go-wikiparse/internal/di"
	"github.com/goliatone/go-wikiparse/internal/revisions"
	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// Options captures configuration for CLI bootstraps.
type Options struct {
	ConfigPath     string
	DSN            string
	LogLevel       string
	LoggerProvider interfaces.LoggerProvider
}

// LoadConfig reads a YAML config file onto the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (wikiparse.Config, error) {
	cfg := wikiparse.DefaultConfig()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// BuildModule constructs a parse module from the options.
func BuildModule(opts Options) (*wikiparse.Module, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if dsn := strings.TrimSpace(opts.DSN); dsn != "" {
		cfg.Storage.Provider = "bun"
		cfg.Storage.DSN = dsn
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := wikiparse.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise wikiparse module: %w", err)
	}
	return module, nil
}

// SeedFile lists pages to load into a content store.
type SeedFile struct {
	Pages []seedcmd.Page `yaml:"pages"`
}

// LoadSeedFile decodes a YAML seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var file SeedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return &file, nil
}

// Seed writes every page of file into store through the seed command
// handler. source names the file in log entries.
func Seed(ctx context.Context, store revisions.Writer, site titles.Site, file *SeedFile, source string, logger interfaces.Logger) (seedcmd.Summary, error) {
	var summary seedcmd.Summary
	if file == nil {
		return summary, nil
	}
	handler := seedcmd.NewSeedPagesHandler(store, site, logger)
	err := handler.Execute(ctx, seedcmd.SeedPagesCommand{
		Source: source,
		Pages:  file.Pages,
		ResultCallback: func(s seedcmd.Summary) {
			summary = s
		},
	})
	return summary, err
}

// SplitList parses a pipe or comma separated list into trimmed values.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == '|' || r == ',' })
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
