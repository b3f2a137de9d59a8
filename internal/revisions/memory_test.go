package revisions

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	page, err := store.CreatePage(ctx, PageInput{Namespace: 0, Title: "Main Page", Model: "wikitext"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	first, err := store.AddRevision(ctx, RevisionInput{PageID: page.ID, Text: "v1", User: "Alice"})
	if err != nil {
		t.Fatalf("add revision: %v", err)
	}
	second, err := store.AddRevision(ctx, RevisionInput{PageID: page.ID, Text: "v2", Deleted: interfaces.DeletedText})
	if err != nil {
		t.Fatalf("add revision: %v", err)
	}

	current, err := store.CurrentContent(ctx, page.ID)
	if err != nil || current.Text != "v2" || current.RevisionID != second.ID {
		t.Fatalf("unexpected current content %+v %v", current, err)
	}
	old, err := store.RevisionContent(ctx, first.ID)
	if err != nil || old.Text != "v1" || old.Model != "wikitext" {
		t.Fatalf("unexpected old content %+v %v", old, err)
	}

	rev, err := store.RevisionByID(ctx, second.ID)
	if err != nil || !rev.IsDeleted(interfaces.DeletedText) || rev.Title != "Main Page" {
		t.Fatalf("unexpected revision %+v %v", rev, err)
	}

	byTitle, err := store.PageByTitle(ctx, "Main_Page")
	if err != nil || byTitle.Latest != second.ID {
		t.Fatalf("unexpected page %+v %v", byTitle, err)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.RevisionByID(context.Background(), 42)
	if !errors.Is(err, interfaces.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Resource != "revision" {
		t.Fatalf("expected typed not found error, got %v", err)
	}
}

func TestRedirectTarget(t *testing.T) {
	target, ok := RedirectTarget("#redirect [[Foo bar|label]]\nrest")
	if !ok || target != "Foo bar" {
		t.Fatalf("unexpected redirect %q %v", target, ok)
	}
	if _, ok := RedirectTarget("plain [[Link]]"); ok {
		t.Fatalf("plain text is not a redirect")
	}
}
