package content

import (
	"strings"
	"time"

	"github.com/goliatone/go-wikiparse/internal/titles"
)

// Content models.
const (
	ModelWikitext   = "wikitext"
	ModelText       = "text"
	ModelCSS        = "css"
	ModelJavaScript = "javascript"
	ModelJSON       = "json"
	ModelMarkdown   = "markdown"
)

// Serialization formats.
const (
	FormatWikitext   = "text/x-wiki"
	FormatPlain      = "text/plain"
	FormatCSS        = "text/css"
	FormatJavaScript = "text/javascript"
	FormatJSON       = "application/json"
	FormatMarkdown   = "text/markdown"
)

// Content is an immutable piece of page content in a given model.
type Content interface {
	Model() string
	Format() string
	Serialize() string
	IsEmpty() bool
}

// Sectioned is implemented by models that can be split into sections.
type Sectioned interface {
	Content
	// Section returns the section addressed by id ("3", "T-2"); ok is false
	// when the id does not exist in this content.
	Section(id string) (Content, bool)
	AddSectionHeader(header string) Content
}

// PSTContext carries what a pre-save transform needs to know.
type PSTContext struct {
	Title    titles.Title
	UserName string
	Now      time.Time
}

// PreSaveTransformer is implemented by models with a pre-save normalisation.
type PreSaveTransformer interface {
	PreSaveTransform(ctx PSTContext) Content
}

// SupportsSections reports whether c can be split into sections.
func SupportsSections(c Content) bool {
	_, ok := c.(Sectioned)
	return ok
}

// PreSaveTransform applies the model transform when there is one.
func PreSaveTransform(c Content, ctx PSTContext) Content {
	if t, ok := c.(PreSaveTransformer); ok {
		return t.PreSaveTransform(ctx)
	}
	return c
}

type textContent struct {
	model  string
	format string
	text   string
}

func (c textContent) Model() string     { return c.model }
func (c textContent) Format() string    { return c.format }
func (c textContent) Serialize() string { return c.text }
func (c textContent) IsEmpty() bool     { return c.text == "" }

func (c textContent) PreSaveTransform(PSTContext) Content {
	c.text = strings.TrimRight(c.text, " \t\r\n")
	return c
}

// NewText builds plain content in one of the text-like models.
func NewText(model, format, text string) Content {
	return textContent{model: model, format: format, text: text}
}
