package sections

import (
	"errors"
	"testing"

	"github.com/goliatone/go-wikiparse/internal/apierrors"
	"github.com/goliatone/go-wikiparse/internal/content"
)

func TestParseID(t *testing.T) {
	for _, ok := range []string{"", "0", "12", "T-3", "new"} {
		if _, err := ParseID(ok); err != nil {
			t.Fatalf("%q should be valid: %v", ok, err)
		}
	}
	for _, bad := range []string{"-1", "T-", "New", "1a", "t-1", " 1"} {
		_, err := ParseID(bad)
		if !errors.Is(err, apierrors.ErrInvalidSection) {
			t.Fatalf("%q should be invalid, got %v", bad, err)
		}
	}
}

func TestExtractNewIsPristine(t *testing.T) {
	page := content.NewWikitext("Existing body\n== A ==\ntext")

	fresh, err := Extract(page, New, "", "page")
	if err != nil {
		t.Fatalf("extract new: %v", err)
	}
	if !fresh.IsEmpty() {
		t.Fatalf("new section must not carry prior content, got %q", fresh.Serialize())
	}

	again, err := Extract(fresh, "1", "", "page")
	if !errors.Is(err, apierrors.ErrSectionNotFound) || again != nil {
		t.Fatalf("re-extraction from a new section must find nothing, got %v", err)
	}

	titled, err := Extract(page, New, "Topic", "page")
	if err != nil {
		t.Fatalf("extract titled new: %v", err)
	}
	if titled.Serialize() != "== Topic ==\n\n" {
		t.Fatalf("unexpected header-only section %q", titled.Serialize())
	}
}

func TestExtractNumericIsDeterministic(t *testing.T) {
	page := content.NewWikitext("Lead\n== A ==\none\n== B ==\ntwo")
	first, err := Extract(page, "2", "", "page")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	second, _ := Extract(page, "2", "", "page")
	if first.Serialize() != second.Serialize() || first.Serialize() != "== B ==\ntwo" {
		t.Fatalf("unexpected section 2: %q / %q", first.Serialize(), second.Serialize())
	}
}

func TestExtractErrorsAreDistinct(t *testing.T) {
	css := content.NewText(content.ModelCSS, content.FormatCSS, "body{}")
	_, err := Extract(css, "5", "", "page")
	if !errors.Is(err, apierrors.ErrSectionNotSupported) || errors.Is(err, apierrors.ErrSectionNotFound) {
		t.Fatalf("expected not supported, got %v", err)
	}

	page := content.NewWikitext("Lead only")
	_, err = Extract(page, "5", "", "page")
	if !errors.Is(err, apierrors.ErrSectionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if apierrors.Code(err) == apierrors.CodeSectionsNotSupported {
		t.Fatalf("codes must differ")
	}
}

func TestNewSectionKeepsBody(t *testing.T) {
	got := NewSection(content.NewWikitext("Hello"), "Greeting")
	if got.Serialize() != "== Greeting ==\n\nHello" {
		t.Fatalf("unexpected %q", got.Serialize())
	}
	if got := NewSection(content.NewWikitext("Hello"), ""); got.Serialize() != "Hello" {
		t.Fatalf("empty title should keep body, got %q", got.Serialize())
	}
}

func TestNewSectionWithoutSectionSupport(t *testing.T) {
	body := content.NewText(content.ModelText, content.FormatPlain, "plain body")
	for _, title := range []string{"", "Heading"} {
		got := NewSection(body, title)
		if got.Model() != content.ModelText || got.Serialize() != "plain body" {
			t.Fatalf("title %q: expected body unchanged, got %s %q", title, got.Model(), got.Serialize())
		}
	}
}
