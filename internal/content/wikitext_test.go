package content

import (
	"testing"
	"time"

	"github.com/goliatone/go-wikiparse/internal/titles"
)

const sample = `Intro line
== History ==
Early days
=== Founding ===
Details
== Geography ==
<!--
== Hidden ==
-->
Hills
<nowiki>== Not a heading ==</nowiki>
`

func TestHeadingsIgnoreMaskedRegions(t *testing.T) {
	headings := Headings(sample)
	if len(headings) != 3 {
		t.Fatalf("expected 3 headings, got %d: %+v", len(headings), headings)
	}
	want := []struct {
		level int
		title string
	}{{2, "History"}, {3, "Founding"}, {2, "Geography"}}
	for i, w := range want {
		if headings[i].Level != w.level || headings[i].Title != w.title {
			t.Fatalf("heading %d: got %+v want %+v", i, headings[i], w)
		}
	}
}

func TestSectionExtractionIncludesSubsections(t *testing.T) {
	w := NewWikitext(sample)

	zero, ok := w.Section("0")
	if !ok || zero.Serialize() != "Intro line" {
		t.Fatalf("unexpected section 0: %q %v", zero, ok)
	}

	first, ok := w.Section("1")
	if !ok {
		t.Fatalf("expected section 1")
	}
	if got := first.Serialize(); got != "== History ==\nEarly days\n=== Founding ===\nDetails" {
		t.Fatalf("unexpected section 1: %q", got)
	}

	again, _ := w.Section("1")
	if again.Serialize() != first.Serialize() {
		t.Fatalf("repeated extraction must be identical")
	}

	if _, ok := w.Section("4"); ok {
		t.Fatalf("section 4 must not exist")
	}
}

func TestTemplateSectionsUseInclusionView(t *testing.T) {
	w := NewWikitext("<noinclude>== Docs ==\nusage</noinclude><includeonly>== Body ==\ncontent</includeonly>")
	sec, ok := w.Section("T-1")
	if !ok {
		t.Fatalf("expected T-1")
	}
	if sec.Serialize() != "== Body ==\ncontent" {
		t.Fatalf("unexpected T-1 content %q", sec.Serialize())
	}
}

func TestAddSectionHeader(t *testing.T) {
	got := NewWikitext("Body").AddSectionHeader("Topic").Serialize()
	if got != "== Topic ==\n\nBody" {
		t.Fatalf("unexpected header insertion %q", got)
	}
	if NewWikitext("Body").AddSectionHeader(" ").Serialize() != "Body" {
		t.Fatalf("blank header must be ignored")
	}
}

func TestWikitextPreSaveTransform(t *testing.T) {
	site := titles.DefaultSite()
	ctx := PSTContext{
		Title:    site.MustParse("Help:Sandbox"),
		UserName: "Alice",
		Now:      time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC),
	}
	in := NewWikitext("Signed ~~~~ on {{subst:PAGENAME}} <nowiki>~~~</nowiki>  \n\n")
	got := PreSaveTransform(in, ctx).Serialize()
	want := "Signed [[User:Alice|Alice]] 09:07, 5 March 2024 (UTC) on Sandbox <nowiki>~~~</nowiki>"
	if got != want {
		t.Fatalf("unexpected pst\n got: %q\nwant: %q", got, want)
	}
}
