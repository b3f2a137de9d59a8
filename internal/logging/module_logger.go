package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

const (
	rootModule     = "wikiparse"
	parseModule    = "wikiparse.parse"
	resolverModule = "wikiparse.resolver"
	poolModule     = "wikiparse.poolcounter"
	storageModule  = "wikiparse.storage"
)

const (
	fieldTitle   = "title"
	fieldRevID   = "revid"
	fieldSection = "section"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ParseLogger returns the logger namespace reserved for the parse service.
func ParseLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, parseModule)
}

// ResolverLogger returns the logger namespace reserved for content resolution.
func ResolverLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, resolverModule)
}

// PoolLogger returns the logger namespace reserved for the parse pool counter.
func PoolLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, poolModule)
}

// StorageLogger returns the logger namespace reserved for page storage.
func StorageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storageModule)
}

// WithParseTarget enriches the logger with the page being parsed. Empty or
// zero values are ignored.
func WithParseTarget(logger interfaces.Logger, title string, revID int64, section string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		fields[fieldTitle] = trimmed
	}
	if revID > 0 {
		fields[fieldRevID] = revID
	}
	if trimmed := strings.TrimSpace(section); trimmed != "" {
		fields[fieldSection] = trimmed
	}
	return WithFields(logger, fields)
}

// WithFields attaches a copy of fields when logger implements
// interfaces.FieldsLogger. Other loggers are returned unchanged.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
