package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"

	"github.com/goliatone/go-wikiparse/internal/content"
	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// Expansion limits reported in the limit report.
const (
	DefaultMaxDepth      = 40
	DefaultMaxExpansions = 500
	DefaultMaxIncludeLen = 2 << 20
)

// TemplateSource loads the wikitext of a transcluded page.
type TemplateSource interface {
	Template(ctx context.Context, prefixedTitle string) (text string, found bool, err error)
}

// Renderer turns content into ParserOutput. It keeps no per-call state and is
// safe for concurrent use.
type Renderer struct {
	site          titles.Site
	templates     TemplateSource
	markdown      goldmark.Markdown
	uploadPath    string
	maxDepth      int
	maxExpansions int
}

var _ interfaces.MarkupRenderer = (*Renderer)(nil)

// Option customises a Renderer.
type Option func(*Renderer)

func WithTemplates(src TemplateSource) Option {
	return func(r *Renderer) { r.templates = src }
}

// WithMarkdownExtensions selects goldmark extensions by name ("gfm", "table",
// "footnote", ...). Unknown names are ignored.
func WithMarkdownExtensions(names ...string) Option {
	return func(r *Renderer) { r.markdown = newGoldmarkEngine(names) }
}

func WithUploadPath(path string) Option {
	return func(r *Renderer) {
		if strings.TrimSpace(path) != "" {
			r.uploadPath = strings.TrimRight(path, "/")
		}
	}
}

func WithLimits(maxDepth, maxExpansions int) Option {
	return func(r *Renderer) {
		if maxDepth > 0 {
			r.maxDepth = maxDepth
		}
		if maxExpansions > 0 {
			r.maxExpansions = maxExpansions
		}
	}
}

func New(site titles.Site, opts ...Option) *Renderer {
	r := &Renderer{
		site:          site,
		markdown:      newGoldmarkEngine(nil),
		uploadPath:    "/images",
		maxDepth:      DefaultMaxDepth,
		maxExpansions: DefaultMaxExpansions,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Render dispatches on the content model.
func (r *Renderer) Render(ctx context.Context, req interfaces.RenderRequest) (*interfaces.ParserOutput, error) {
	title, err := r.site.Parse(req.Title)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	var out *interfaces.ParserOutput
	switch req.Model {
	case content.ModelWikitext, "":
		out, err = r.renderWikitext(ctx, title, req)
	case content.ModelMarkdown:
		out, err = r.renderMarkdown(title, req)
	case content.ModelCSS, content.ModelJavaScript, content.ModelJSON, content.ModelText:
		out = renderCode(req.Model, req.Text)
	default:
		return nil, fmt.Errorf("render: no renderer for model %q", req.Model)
	}
	if err != nil {
		return nil, err
	}
	if out.DisplayTitle == "" {
		out.DisplayTitle = html.EscapeString(title.PrefixedText())
	}
	if class := req.Options.WrapOutputClass; class != "" {
		out.Text = element("div", out.Text, "class", class)
	}
	return out, nil
}

func renderCode(model, text string) *interfaces.ParserOutput {
	var b strings.Builder
	b.WriteString(startTag("pre", "class", "mw-code mw-"+model, "dir", "ltr"))
	b.WriteString(html.EscapeString(text))
	b.WriteString("\n" + endTag("pre"))
	return &interfaces.ParserOutput{Text: b.String()}
}

// StoreTemplates loads templates from the current revision of stored pages.
type StoreTemplates struct {
	Store interfaces.ContentStore
}

func (s StoreTemplates) Template(ctx context.Context, prefixedTitle string) (string, bool, error) {
	if s.Store == nil {
		return "", false, nil
	}
	page, err := s.Store.PageByTitle(ctx, prefixedTitle)
	if errors.Is(err, interfaces.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	rec, err := s.Store.CurrentContent(ctx, page.ID)
	if errors.Is(err, interfaces.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.Text, true, nil
}
