package wikiparse_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wikiparse "github.com/goliatone/go-wikiparse"
	"github.com/goliatone/go-wikiparse/internal/revisions"
	"github.com/goliatone/go-wikiparse/internal/titles"
)

func strPtr(s string) *string { return &s }

var reader = wikiparse.Caller{Name: "10.0.0.1", Rights: []string{"read"}}

func newModule(t *testing.T) *wikiparse.Module {
	t.Helper()
	mod, err := wikiparse.New(wikiparse.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mod.Close() })
	return mod
}

func TestModuleParseText(t *testing.T) {
	mod := newModule(t)

	res, err := mod.Parse(context.Background(), wikiparse.Request{
		Caller:             reader,
		Text:               strPtr("Hello {{PAGENAME}}"),
		Title:              "Test",
		Props:              []string{"text"},
		DisableLimitReport: true,
	})
	require.NoError(t, err)
	assert.Equal(t, wikiparse.CacheModeAnonPublicUserPrivate, res.CacheMode)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Test","pageid":0,"text":"<div class=\"mw-parser-output\"><p>Hello Test\n</p></div>"}`, string(raw))
}

func TestModuleParseStoredPage(t *testing.T) {
	mod := newModule(t)
	ctx := context.Background()

	page, err := mod.Store().CreatePage(ctx, revisions.PageInput{Namespace: titles.NSMain, Title: "Home", Model: "wikitext"})
	require.NoError(t, err)
	rev, err := mod.Store().AddRevision(ctx, revisions.RevisionInput{PageID: page.ID, Text: "See [[Elsewhere]] and [[Home]].\n[[Category:Docs]]"})
	require.NoError(t, err)

	req := wikiparse.Request{Caller: reader, Page: "Home"}
	res, err := mod.Parse(ctx, req)
	require.NoError(t, err)

	revID, ok := res.Get("revid")
	require.True(t, ok)
	assert.Equal(t, rev.ID, revID)
	assert.Equal(t, "pl", res.IndexedTagName("links"))
	assert.Equal(t, "cl", res.IndexedTagName("categories"))
	assert.Equal(t, wikiparse.CacheModeAnonPublicUserPrivate, mod.CacheMode(req))
}

func TestModuleErrors(t *testing.T) {
	mod := newModule(t)

	_, err := mod.Parse(context.Background(), wikiparse.Request{Caller: reader, Page: "Missing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, wikiparse.ErrPageNotFound))
	assert.Equal(t, "missingtitle", wikiparse.Code(err))
	assert.False(t, wikiparse.IsRetryable(err))

	wrapped := wikiparse.ToGoError(err)
	assert.True(t, goerrors.IsWrapped(wrapped))
	assert.True(t, goerrors.IsCategory(wrapped, goerrors.CategoryNotFound))
	assert.Equal(t, wrapped, wikiparse.ToGoError(wrapped))
}

func TestModuleInvalidConfig(t *testing.T) {
	cfg := wikiparse.DefaultConfig()
	cfg.Site.Domain = ""

	_, err := wikiparse.New(cfg)
	assert.ErrorIs(t, err, wikiparse.ErrSiteDomainRequired)
}

func TestModuleSkins(t *testing.T) {
	mod := newModule(t)
	assert.Equal(t, []string{"apioutput", "minerva", "monobook", "vector"}, mod.Skins())
}
