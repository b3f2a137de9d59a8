package logging

import (
	"context"
	"maps"

	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

type contextKey string

const contextFieldsKey contextKey = "wikiparse.logging.fields"

const (
	fieldCaller     = "caller"
	fieldRegistered = "registered"
)

// ContextWithFields returns a context carrying structured logging fields.
// Fields already on the context are kept unless fields overrides them.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	existing := ContextFields(ctx)
	merged := make(map[string]any, len(existing)+len(fields))
	maps.Copy(merged, existing)
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextFieldsKey, merged)
}

// ContextWithCaller tags ctx with the caller a parse runs for, so entries
// logged deeper in the pipeline carry it.
func ContextWithCaller(ctx context.Context, caller interfaces.Caller) context.Context {
	if caller.Name == "" && !caller.IsRegistered() {
		return ctx
	}
	return ContextWithFields(ctx, map[string]any{
		fieldCaller:     caller.Name,
		fieldRegistered: caller.IsRegistered(),
	})
}

// ContextFields extracts previously annotated logging fields from the context.
// The returned map is a copy.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(contextFieldsKey).(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// FromContext binds logger to ctx when ctx carries logging fields.
func FromContext(ctx context.Context, logger interfaces.Logger) interfaces.Logger {
	if logger == nil || len(ContextFields(ctx)) == 0 {
		return logger
	}
	return logger.WithContext(ctx)
}
