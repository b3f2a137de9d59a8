package resolver

import (
	"github.com/goliatone/go-wikiparse/internal/apierrors"
	"github.com/goliatone/go-wikiparse/internal/sections"
)

// DefaultTitle is used for raw text when no title is supplied.
const DefaultTitle = "API"

// Selector names the content to parse. Exactly one source is used: inline
// text (optionally tied to a title or revid), a page by title or id, or an
// old revision.
type Selector struct {
	Text          *string
	Title         string
	RevID         int64
	Page          string
	PageID        int64
	OldID         int64
	Redirects     bool
	Section       string
	ContentModel  string
	ContentFormat string
	// WantsOutput is set when props or the XML flag were requested; it only
	// affects the title/revid-without-text warnings.
	WantsOutput bool
}

type param struct {
	name string
	set  bool
}

// Validate checks the exclusive parameter groups and the section id. It runs
// before any storage access.
func (s Selector) Validate() error {
	page := param{"page", s.Page != ""}
	pageID := param{"pageid", s.PageID != 0}
	oldID := param{"oldid", s.OldID != 0}

	groups := [][]param{
		{page, pageID, oldID, {"text", s.Text != nil}},
		{page, pageID, oldID, {"title", s.Title != ""}},
		{page, pageID, oldID, {"revid", s.RevID != 0}},
	}
	for _, group := range groups {
		var names []string
		for _, p := range group {
			if p.set {
				names = append(names, p.name)
			}
		}
		if len(names) > 1 {
			return apierrors.InvalidParameterCombination(names...)
		}
	}

	if _, err := sections.ParseID(s.Section); err != nil {
		return err
	}
	if sections.IsNew(s.Section) && s.UsesStoredPage() {
		return apierrors.NewSectionWithPage()
	}
	return nil
}

// UsesStoredPage reports whether content comes from storage rather than
// inline text.
func (s Selector) UsesStoredPage() bool {
	return s.Page != "" || s.PageID != 0 || s.OldID != 0
}

// TitleProvided reports whether the caller named a title for inline text.
func (s Selector) TitleProvided() bool {
	return s.Title != ""
}
