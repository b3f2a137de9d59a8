package titles

import (
	"errors"
	"testing"
)

func TestParseNamespacesAndNormalisation(t *testing.T) {
	site := DefaultSite()
	cases := []struct {
		in       string
		ns       int
		text     string
		prefixed string
	}{
		{"main page", NSMain, "Main page", "Main page"},
		{"Category:Foo_bar", NSCategory, "Foo bar", "Category:Foo bar"},
		{"template: infobox", NSTemplate, "Infobox", "Template:Infobox"},
		{"Image:Cat.jpg", NSFile, "Cat.jpg", "File:Cat.jpg"},
		{":Help:Contents", NSHelp, "Contents", "Help:Contents"},
		{"Unknown:Thing", NSMain, "Unknown:Thing", "Unknown:Thing"},
	}
	for _, tc := range cases {
		got, err := site.Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got.Namespace != tc.ns || got.Text != tc.text || got.PrefixedText() != tc.prefixed {
			t.Fatalf("parse %q: got %+v (%q)", tc.in, got, got.PrefixedText())
		}
	}
}

func TestParseInterwikiAndFragment(t *testing.T) {
	site := DefaultSite()
	got, err := site.Parse("fr:Paris#Histoire")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.IsExternal() || got.Interwiki != "fr" || got.Text != "Paris" || got.Fragment != "Histoire" {
		t.Fatalf("unexpected title %+v", got)
	}
	if got.CanExist() {
		t.Fatalf("external titles cannot exist locally")
	}
	if url := site.FullURL(got); url != "https://fr.wikipedia.org/wiki/Paris#Histoire" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestParseRejectsInvalidTitles(t *testing.T) {
	site := DefaultSite()
	if _, err := site.Parse("  "); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected empty title error, got %v", err)
	}
	if _, err := site.Parse("Foo[bar]"); !errors.Is(err, ErrIllegalChars) {
		t.Fatalf("expected illegal chars error, got %v", err)
	}
}

func TestSubpageBaseText(t *testing.T) {
	site := DefaultSite()
	sub := site.MustParse("User:Alice/Sandbox")
	base, ok := sub.BaseText()
	if !ok || base != "Alice" {
		t.Fatalf("expected base Alice, got %q %v", base, ok)
	}
	if _, ok := site.MustParse("AC/DC").BaseText(); ok {
		t.Fatalf("main namespace has no subpages")
	}
}
