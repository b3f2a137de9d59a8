package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "wikiparse.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger = WithFields(logger, map[string]any{"foo": "bar"})
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	logger := ParseLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != parseModule {
		t.Fatalf("expected module %s, got %v", parseModule, provider.requested)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != parseModule {
		t.Fatalf("expected module field %s, got %v", parseModule, rec.fields)
	}
	logger.Info("with provider")
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "")

	if len(provider.requested) != 1 || provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
}

func TestModuleHelpersRequestTheirNamespace(t *testing.T) {
	cases := map[string]func(interfaces.LoggerProvider) interfaces.Logger{
		resolverModule: ResolverLogger,
		poolModule:     PoolLogger,
		storageModule:  StorageLogger,
	}
	for module, build := range cases {
		provider := &stubProvider{logger: &recordingLogger{}}
		_ = build(provider)
		if len(provider.requested) == 0 || provider.requested[0] != module {
			t.Fatalf("expected %s request, got %v", module, provider.requested)
		}
	}
}

func TestWithParseTargetSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}
	_ = WithParseTarget(rec, " Main Page ", 0, "")
	if len(rec.fields) != 1 {
		t.Fatalf("expected one field application, got %d", len(rec.fields))
	}
	fields := rec.fields[0]
	if fields[fieldTitle] != "Main Page" {
		t.Fatalf("expected trimmed title, got %v", fields[fieldTitle])
	}
	if _, ok := fields[fieldRevID]; ok {
		t.Fatalf("zero revid must be skipped")
	}

	untouched := &recordingLogger{}
	_ = WithParseTarget(untouched, "", 0, "")
	if len(untouched.fields) != 0 {
		t.Fatalf("expected no fields when nothing is set")
	}
}

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"a": 1})
	ctx = ContextWithFields(ctx, map[string]any{"b": 2})
	fields := ContextFields(ctx)
	if fields["a"] != 1 || fields["b"] != 2 {
		t.Fatalf("expected merged fields, got %v", fields)
	}
}

func TestContextWithCaller(t *testing.T) {
	ctx := ContextWithCaller(context.Background(), interfaces.Caller{ID: 7, Name: "Ann"})
	fields := ContextFields(ctx)
	if fields[fieldCaller] != "Ann" || fields[fieldRegistered] != true {
		t.Fatalf("unexpected caller fields %v", fields)
	}

	empty := ContextWithCaller(context.Background(), interfaces.Caller{})
	if ContextFields(empty) != nil {
		t.Fatal("expected no fields for an empty caller")
	}
}

func TestFromContextBindsOnlyAnnotatedContexts(t *testing.T) {
	rec := &recordingLogger{}
	_ = FromContext(context.Background(), rec)
	if len(rec.contexts) != 0 {
		t.Fatal("expected plain context to leave the logger untouched")
	}

	ctx := ContextWithFields(context.Background(), map[string]any{"request_id": "r-1"})
	_ = FromContext(ctx, rec)
	if len(rec.contexts) != 1 {
		t.Fatalf("expected logger bound to context, got %d bindings", len(rec.contexts))
	}
}
