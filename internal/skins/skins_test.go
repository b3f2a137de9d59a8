package skins

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-wikiparse/internal/apierrors"
	"github.com/goliatone/go-wikiparse/internal/hooks"
	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

func TestNormalizeKeyAndLookup(t *testing.T) {
	reg := NewRegistry(titles.DefaultSite())

	if got := NormalizeKey("  Vector "); got != "vector" {
		t.Fatalf("NormalizeKey = %q", got)
	}
	if !reg.HasSkin("VECTOR") || !reg.HasSkin("") || !reg.HasSkin("default") {
		t.Fatalf("expected vector and the default to resolve")
	}
	if reg.HasSkin("nostalgia") {
		t.Fatalf("unexpected skin")
	}
	want := []string{"apioutput", "minerva", "monobook", "vector"}
	if got := reg.Installed(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Installed = %v", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry(titles.DefaultSite())
	if err := reg.Register(Skin{}); !errors.Is(err, ErrSkinNameRequired) {
		t.Fatalf("expected name error, got %v", err)
	}
	if err := reg.Register(Skin{Name: "Vector"}); !errors.Is(err, ErrSkinExists) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := reg.Register(Skin{Name: "broken", HeadTemplate: "{% if %}"}); !errors.Is(err, ErrTemplateInvalid) {
		t.Fatalf("expected template error, got %v", err)
	}
}

func TestDecorateUnknownSkin(t *testing.T) {
	reg := NewRegistry(titles.DefaultSite())
	_, err := reg.Decorate(context.Background(), interfaces.DecorationRequest{Skin: "nostalgia", Title: "Main Page"})
	if !errors.Is(err, apierrors.ErrUnknownSkin) {
		t.Fatalf("expected unknown skin, got %v", err)
	}
	if apierrors.Code(err) != apierrors.CodeUnknownSkin {
		t.Fatalf("unexpected code %q", apierrors.Code(err))
	}
}

func TestDecorateRendersChrome(t *testing.T) {
	reg := NewRegistry(titles.DefaultSite())
	out := &interfaces.ParserOutput{
		DisplayTitle: "<i>Notes</i>",
		HeadItems:    []interfaces.HeadItem{{Tag: "robots", Content: `<meta name="robots" content="noindex,nofollow"/>`}},
		Modules:      []string{"mediawiki.toc"},
		ModuleStyles: []string{"mediawiki.toc.styles"},
		Categories: []interfaces.CategoryLink{
			{Name: "Birds"},
			{Name: "Maintenance"},
			{Name: "Ghosts"},
		},
		LanguageLinks: []string{"fr:Notes"},
	}
	dec, err := reg.Decorate(context.Background(), interfaces.DecorationRequest{
		Title:  "User:Ann/Drafts/Notes",
		RevID:  7,
		Output: out,
		CategoryInfos: map[string]interfaces.CategoryInfo{
			"Birds":       {Exists: true},
			"Maintenance": {Exists: true, Hidden: true},
		},
	})
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}

	if dec.Skin != "vector" {
		t.Fatalf("expected default skin, got %q", dec.Skin)
	}
	if !strings.Contains(dec.HeadHTML, "<title>Notes</title>") {
		t.Fatalf("head html missing title: %s", dec.HeadHTML)
	}
	if !strings.Contains(dec.HeadHTML, `<meta name="robots" content="noindex,nofollow"/>`) {
		t.Fatalf("head html missing head item: %s", dec.HeadHTML)
	}
	if !strings.Contains(dec.HeadHTML, "skin-vector") {
		t.Fatalf("head html missing skin class: %s", dec.HeadHTML)
	}

	if !strings.Contains(dec.CategoriesHTML, `<a href="/wiki/Category:Birds" title="Category:Birds">Birds</a>`) {
		t.Fatalf("categories html missing normal category: %s", dec.CategoriesHTML)
	}
	if !strings.Contains(dec.CategoriesHTML, `class="new">Ghosts</a>`) {
		t.Fatalf("missing category should be marked new: %s", dec.CategoriesHTML)
	}
	if !strings.Contains(dec.CategoriesHTML, `mw-hidden-catlinks`) || !strings.Contains(dec.CategoriesHTML, "Maintenance") {
		t.Fatalf("hidden category not rendered separately: %s", dec.CategoriesHTML)
	}

	if !strings.Contains(dec.Subtitle, `<a href="/wiki/User:Ann" title="User:Ann">User:Ann</a>`) {
		t.Fatalf("subtitle missing parent link: %s", dec.Subtitle)
	}
	if !strings.Contains(dec.Subtitle, `title="User:Ann/Drafts">Drafts</a>`) {
		t.Fatalf("subtitle missing nested parent: %s", dec.Subtitle)
	}

	if strings.Join(dec.Modules, ",") != "mediawiki.toc,skins.vector.js" {
		t.Fatalf("modules = %v", dec.Modules)
	}
	if dec.JSConfigVars["wgPageName"] != "User:Ann/Drafts/Notes" || dec.JSConfigVars["wgCurRevisionId"] != int64(7) {
		t.Fatalf("jsconfigvars = %v", dec.JSConfigVars)
	}
	if len(dec.LanguageLinks) != 1 || dec.LanguageLinks[0] != "fr:Notes" {
		t.Fatalf("language links = %v", dec.LanguageLinks)
	}
}

func TestDecorateWithoutCategoriesIsEmpty(t *testing.T) {
	reg := NewRegistry(titles.DefaultSite())
	dec, err := reg.Decorate(context.Background(), interfaces.DecorationRequest{Skin: "monobook", Title: "Main Page"})
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if dec.CategoriesHTML != "" || dec.Subtitle != "" {
		t.Fatalf("expected empty fragments, got %q / %q", dec.CategoriesHTML, dec.Subtitle)
	}
}

func TestDecorationHooks(t *testing.T) {
	reg := NewRegistry(titles.DefaultSite())
	if err := reg.LanguageLinksHooks().Register("drop-fr", func(_ context.Context, c *LanguageLinksContext) error {
		kept := c.Links[:0]
		for _, l := range c.Links {
			if !strings.HasPrefix(l, "fr:") {
				kept = append(kept, l)
			}
		}
		c.Links = kept
		return nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.OutputPageHooks().Register("banner", func(_ context.Context, c *OutputPageContext) error {
		c.Decoration.Subtitle = "banner"
		return hooks.ErrAbort
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.OutputPageHooks().Register("never", func(context.Context, *OutputPageContext) error {
		t.Fatalf("handler after abort must not run")
		return nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	dec, err := reg.Decorate(context.Background(), interfaces.DecorationRequest{
		Title:  "Main Page",
		Output: &interfaces.ParserOutput{LanguageLinks: []string{"fr:Accueil", "de:Hauptseite"}},
	})
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if len(dec.LanguageLinks) != 1 || dec.LanguageLinks[0] != "de:Hauptseite" {
		t.Fatalf("language links = %v", dec.LanguageLinks)
	}
	if dec.Subtitle != "banner" {
		t.Fatalf("subtitle = %q", dec.Subtitle)
	}
}
