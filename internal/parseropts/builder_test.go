package parseropts

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-wikiparse/internal/hooks"
	"github.com/goliatone/go-wikiparse/internal/titles"
)

func page() PageContext {
	return PageContext{Title: titles.DefaultSite().MustParse("Test"), Model: "wikitext"}
}

func TestBuildLimitReportLegacyFlags(t *testing.T) {
	b := NewBuilder("mw-parser-output")
	cases := []struct {
		req  Request
		want bool
	}{
		{Request{}, true},
		{Request{DisableLimitReport: true}, false},
		{Request{DisablePP: true}, false},
		{Request{DisableLimitReport: true, DisablePP: true}, false},
	}
	for _, tc := range cases {
		res, err := b.Build(context.Background(), page(), tc.req)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		if res.Options.LimitReport() != tc.want {
			t.Fatalf("%+v: expected limit report %v", tc.req, tc.want)
		}
		res.Release()
	}
}

func TestBuildPreviewAndWrapClass(t *testing.T) {
	b := NewBuilder("mw-parser-output")

	res, _ := b.Build(context.Background(), page(), Request{SectionPreview: true})
	if !res.Options.IsPreview() || !res.Options.IsSectionPreview() {
		t.Fatalf("section preview implies preview")
	}
	if res.Options.WrapOutputClass() != "mw-parser-output" {
		t.Fatalf("site default wrap class expected, got %q", res.Options.WrapOutputClass())
	}

	res, _ = b.Build(context.Background(), page(), Request{WrapOutputClass: "custom"})
	if res.Options.WrapOutputClass() != "custom" {
		t.Fatalf("explicit wrap class expected")
	}
	if !res.Options.Frozen() {
		t.Fatalf("built options must be frozen")
	}
	if err := res.Options.SetWrapOutputClass("late"); !errors.Is(err, ErrFrozen) {
		t.Fatalf("expected frozen error, got %v", err)
	}
}

var sharedState = "default"

func TestHooksMutateAndResetSharedState(t *testing.T) {
	b := NewBuilder("")
	_ = b.Hooks().Register("ext", func(_ context.Context, h *HookContext) error {
		previous := sharedState
		sharedState = "changed"
		h.OnReset(func() { sharedState = previous })
		h.SuppressCache = true
		return h.Options.SetOverride("ext.flag", 1)
	})

	res, err := b.Build(context.Background(), page(), Request{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !res.SuppressCache {
		t.Fatalf("hook should suppress cache")
	}
	if v, ok := res.Options.Override("ext.flag"); !ok || v != 1 {
		t.Fatalf("override missing")
	}
	if sharedState != "changed" {
		t.Fatalf("state should be changed while result is held")
	}
	res.Release()
	res.Release()
	if sharedState != "default" {
		t.Fatalf("release must restore state, got %q", sharedState)
	}
}

func TestResetRunsWhenLaterHookFails(t *testing.T) {
	reg := hooks.NewRegistry[*HookContext](hooks.MakeParserOptions)
	restored := false
	_ = reg.Register("first", func(_ context.Context, h *HookContext) error {
		h.OnReset(func() { restored = true })
		return nil
	})
	_ = reg.Register("second", func(context.Context, *HookContext) error {
		return errors.New("boom")
	})

	b := NewBuilder("", WithHooks(reg))
	if _, err := b.Build(context.Background(), page(), Request{}); err == nil {
		t.Fatalf("expected error")
	}
	if !restored {
		t.Fatalf("resets must run on failure")
	}
}

func TestResetRunsWhenLaterHookPanics(t *testing.T) {
	reg := hooks.NewRegistry[*HookContext](hooks.MakeParserOptions)
	state := "default"
	_ = reg.Register("first", func(_ context.Context, h *HookContext) error {
		state = "changed"
		h.OnReset(func() { state = "restored" })
		return nil
	})
	_ = reg.Register("second", func(context.Context, *HookContext) error {
		panic("hook exploded")
	})

	b := NewBuilder("", WithHooks(reg))
	func() {
		defer func() {
			if r := recover(); r != "hook exploded" {
				t.Fatalf("expected panic to propagate, got %v", r)
			}
		}()
		_, _ = b.Build(context.Background(), page(), Request{})
	}()
	if state != "restored" {
		t.Fatalf("expected reset after panic, state is %q", state)
	}
}

func TestFingerprintTracksOptions(t *testing.T) {
	b := NewBuilder("")
	a, _ := b.Build(context.Background(), page(), Request{})
	same, _ := b.Build(context.Background(), page(), Request{})
	other, _ := b.Build(context.Background(), page(), Request{DisablePP: true})

	if a.Options.Fingerprint() != same.Options.Fingerprint() {
		t.Fatalf("identical options must share a fingerprint")
	}
	if a.Options.Fingerprint() == other.Options.Fingerprint() {
		t.Fatalf("different options must differ")
	}
}
