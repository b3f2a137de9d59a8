package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-wikiparse/internal/commands/seedcmd"
	"github.com/goliatone/go-wikiparse/internal/revisions"
	"github.com/goliatone/go-wikiparse/internal/titles"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "wikiparse.yaml", `
site:
  domain: enwiki
pool:
  enabled: true
  workers: 2
  max_queued: 0
  timeout: 5s
logging:
  format: console
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Site.Domain != "enwiki" || cfg.Site.WrapOutputClass != "mw-parser-output" {
		t.Fatalf("unexpected site %+v", cfg.Site)
	}
	if cfg.Pool.Workers != 2 || cfg.Pool.MaxQueued != 0 || cfg.Pool.Timeout != 5*time.Second {
		t.Fatalf("unexpected pool %+v", cfg.Pool)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil || cfg.Storage.Provider != "memory" {
		t.Fatalf("expected defaults, got %+v %v", cfg, err)
	}
}

func TestSeed(t *testing.T) {
	path := writeFile(t, "seed.yaml", `
pages:
  - title: Main Page
    revisions:
      - text: first
        user: Ann
      - text: "Hello [[Category:Docs]]"
        user: Ann
  - title: Category:Docs
    revisions:
      - text: hidden
    props:
      hiddencat: ""
`)
	file, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile: %v", err)
	}

	store := revisions.NewMemoryStore()
	summary, err := Seed(context.Background(), store, titles.DefaultSite(), file, path, nil)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if summary.Pages != 2 || summary.Revisions != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	page, err := store.PageByTitle(context.Background(), "Category:Docs")
	if err != nil {
		t.Fatalf("page by title: %v", err)
	}
	props, err := store.PageProps(context.Background(), []int64{page.ID}, "hiddencat")
	if err != nil {
		t.Fatalf("page props: %v", err)
	}
	if _, ok := props[page.ID]; !ok {
		t.Fatalf("expected hiddencat prop, got %v", props)
	}

	main, err := store.PageByTitle(context.Background(), "Main Page")
	if err != nil {
		t.Fatalf("main page: %v", err)
	}
	current, err := store.CurrentContent(context.Background(), main.ID)
	if err != nil || current.Text != "Hello [[Category:Docs]]" {
		t.Fatalf("unexpected current content %+v %v", current, err)
	}
}

func TestSeedRejectsInvalidTitle(t *testing.T) {
	file := &SeedFile{Pages: []seedcmd.Page{{Title: "Bad[title]"}}}
	if _, err := Seed(context.Background(), revisions.NewMemoryStore(), titles.DefaultSite(), file, "inline", nil); err == nil {
		t.Fatal("expected invalid title error")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" text| links ,,categories ")
	if len(got) != 3 || got[0] != "text" || got[1] != "links" || got[2] != "categories" {
		t.Fatalf("unexpected list %v", got)
	}
	if SplitList("  ") != nil {
		t.Fatal("expected nil for blank input")
	}
}
