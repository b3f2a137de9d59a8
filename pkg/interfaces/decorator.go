package interfaces

import "context"

// DecorationRequest asks a skin to wrap parser output as a full page view.
type DecorationRequest struct {
	Skin          string
	Title         string
	Namespace     int
	PageID        int64
	RevID         int64
	Output        *ParserOutput
	ContentModel  string
	CategoryInfos map[string]CategoryInfo
}

// Decoration holds everything the page view adds on top of parser output.
type Decoration struct {
	Skin           string
	HeadHTML       string
	CategoriesHTML string
	Subtitle       string
	LanguageLinks  []string
	HeadItems      []HeadItem
	Modules        []string
	ModuleStyles   []string
	JSConfigVars   map[string]any
	Indicators     []Indicator
}

// Decorator renders the optional full-page theme pass.
type Decorator interface {
	Decorate(ctx context.Context, req DecorationRequest) (*Decoration, error)
	HasSkin(name string) bool
}
