package interfaces

import "context"

// ParserOptions is the frozen view of the per-request parser configuration
// handed to the renderer.
type ParserOptions struct {
	EnableLimitReport bool
	IsPreview         bool
	IsSectionPreview  bool
	WrapOutputClass   string
	Overrides         map[string]any
}

// LinkTarget is a namespaced link or template reference.
type LinkTarget struct {
	Namespace int
	Title     string
}

// CategoryLink is a category membership with its sort key.
type CategoryLink struct {
	Name    string
	SortKey string
}

// InterwikiLink is a link to another wiki.
type InterwikiLink struct {
	Prefix string
	Title  string
}

// SectionInfo describes one heading of the parsed content.
type SectionInfo struct {
	TocLevel   int    `json:"toclevel"`
	Level      string `json:"level"`
	Line       string `json:"line"`
	Number     string `json:"number"`
	Index      string `json:"index"`
	FromTitle  string `json:"fromtitle"`
	ByteOffset *int   `json:"byteoffset"`
	Anchor     string `json:"anchor"`
	LinkAnchor string `json:"linkAnchor"`
}

// HeadItem is a keyed chunk of HTML destined for the document head.
type HeadItem struct {
	Tag     string
	Content string
}

// Indicator is a page status indicator rendered near the title.
type Indicator struct {
	Name string
	HTML string
}

// LimitReportEntry is one named value (or value/limit pair) from the limit report.
type LimitReportEntry struct {
	Name   string
	Values []any
}

// Property is a page property set by the parse.
type Property struct {
	Name  string
	Value string
}

// ParserOutput is the immutable product of a successful parse.
type ParserOutput struct {
	Text           string
	Categories     []CategoryLink
	Links          []LinkTarget
	Templates      []LinkTarget
	Images         []string
	ExternalLinks  []string
	InterwikiLinks []InterwikiLink
	LanguageLinks  []string
	Sections       []SectionInfo
	HeadItems      []HeadItem
	JSConfigVars   map[string]any
	Warnings       []string
	LimitReport    []LimitReportEntry
	Modules        []string
	ModuleStyles   []string
	Indicators     []Indicator
	DisplayTitle   string
	Properties     []Property
}

// Property returns the named page property.
func (o *ParserOutput) Property(name string) (string, bool) {
	if o == nil {
		return "", false
	}
	for _, prop := range o.Properties {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return "", false
}

// RenderRequest carries everything a renderer needs; no ambient page state.
type RenderRequest struct {
	Title     string
	Namespace int
	PageID    int64
	RevID     int64
	Model     string
	Text      string
	Options   ParserOptions
}

// MarkupRenderer turns content into parser output. The markup grammar itself
// is owned by the implementation.
type MarkupRenderer interface {
	Render(ctx context.Context, req RenderRequest) (*ParserOutput, error)
	PreprocessToXML(ctx context.Context, title string, text string) (string, error)
	FormatComment(comment string, title string, local bool) string
	StripSectionName(text string) string
}
