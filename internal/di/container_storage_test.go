package di

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-wikiparse/internal/parse"
	"github.com/goliatone/go-wikiparse/internal/revisions"
	"github.com/goliatone/go-wikiparse/internal/runtimeconfig"
	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

var reader = interfaces.Caller{Name: "10.0.0.1", Rights: []string{"read"}}

func seed(t *testing.T, store revisions.Store, title, text string) {
	t.Helper()
	ctx := context.Background()
	page, err := store.CreatePage(ctx, revisions.PageInput{Namespace: titles.NSMain, Title: title, Model: "wikitext"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	if _, err := store.AddRevision(ctx, revisions.RevisionInput{PageID: page.ID, Text: text}); err != nil {
		t.Fatalf("add revision: %v", err)
	}
}

func TestContainerBunStorage(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.DSN = fmt.Sprintf("file:wikiparse_di_%d?mode=memory&cache=shared", time.Now().UnixNano())

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if container.bunDB == nil || !container.ownsDB {
		t.Fatal("expected bun database opened from the dsn")
	}
	if container.cacheService == nil || container.keySerializer == nil {
		t.Fatal("expected repository cache in front of bun storage")
	}
	if _, ok := container.store.current().(*revisions.BunStore); !ok {
		t.Fatalf("expected bun store, got %T", container.store.current())
	}

	seed(t, container.Store(), "Main", "Stored '''text'''")
	res, err := container.Parser().Parse(context.Background(), parse.Request{
		Caller:             reader,
		Page:               "Main",
		Props:              []string{"wikitext"},
		DisableLimitReport: true,
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, _ := res.Get("wikitext"); got != "Stored '''text'''" {
		t.Fatalf("unexpected wikitext %v", got)
	}
}

func TestContainerSwapStore(t *testing.T) {
	first := revisions.NewMemoryStore()
	seed(t, first, "Main", "first")

	container, err := NewContainer(runtimeconfig.DefaultConfig(), WithContentStore(first))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	req := parse.Request{Caller: reader, Page: "Main", Props: []string{"text"}, DisableLimitReport: true}

	before, err := container.Parser().Parse(context.Background(), req)
	if err != nil {
		t.Fatalf("parse before swap: %v", err)
	}

	second := revisions.NewMemoryStore()
	seed(t, second, "Main", "second")
	container.SwapStore(second)

	after, err := container.Parser().Parse(context.Background(), req)
	if err != nil {
		t.Fatalf("parse after swap: %v", err)
	}
	b, _ := before.Get("text")
	a, _ := after.Get("text")
	if b == a {
		t.Fatalf("expected output from the swapped store, got %v twice", a)
	}
	if a != "<div class=\"mw-parser-output\"><p>second\n</p></div>" {
		t.Fatalf("unexpected text after swap %q", a)
	}
}
