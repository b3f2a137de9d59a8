package revisions

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-wikiparse/pkg/interfaces"
	"github.com/goliatone/go-wikiparse/pkg/testsupport"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func newTestStore(t *testing.T) *BunStore {
	t.Helper()
	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	store := NewBunStore(db)
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return store
}

func TestBunStorePagesAndRevisions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	page, err := store.CreatePage(ctx, PageInput{Namespace: 14, Title: "Hidden", Model: "wikitext"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	again, err := store.CreatePage(ctx, PageInput{Namespace: 14, Title: "Hidden", Model: "wikitext"})
	if err != nil || again.ID != page.ID {
		t.Fatalf("create must be idempotent per title: %+v %v", again, err)
	}

	rev, err := store.AddRevision(ctx, RevisionInput{PageID: page.ID, Text: "#REDIRECT [[Elsewhere]]"})
	if err != nil {
		t.Fatalf("add revision: %v", err)
	}

	loaded, err := store.PageByTitle(ctx, "Category:Hidden")
	if err != nil {
		t.Fatalf("page by title: %v", err)
	}
	if loaded.Latest != rev.ID || !loaded.IsRedirect || loaded.RedirectTarget != "Elsewhere" {
		t.Fatalf("unexpected page after revision %+v", loaded)
	}

	content, err := store.CurrentContent(ctx, page.ID)
	if err != nil || content.Text != "#REDIRECT [[Elsewhere]]" {
		t.Fatalf("unexpected content %+v %v", content, err)
	}

	if err := store.SetPageProp(ctx, page.ID, "hiddencat", ""); err != nil {
		t.Fatalf("set prop: %v", err)
	}
	props, err := store.PageProps(ctx, []int64{page.ID, 999}, "hiddencat")
	if err != nil {
		t.Fatalf("props: %v", err)
	}
	if _, ok := props[page.ID]; !ok || len(props) != 1 {
		t.Fatalf("unexpected props %v", props)
	}

	batch, err := store.PagesByTitles(ctx, []string{"Category:Hidden", "Nope"})
	if err != nil || len(batch) != 1 {
		t.Fatalf("unexpected batch %+v %v", batch, err)
	}
}

func TestBunStoreMissingRevision(t *testing.T) {
	store := newTestStore(t)
	_, err := store.RevisionByID(context.Background(), 404)
	if !errors.Is(err, interfaces.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
