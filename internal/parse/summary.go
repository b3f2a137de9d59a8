package parse

import (
	"fmt"

	"github.com/goliatone/go-wikiparse/internal/content"
	"github.com/goliatone/go-wikiparse/internal/sections"
)

// newSectionSummary is the edit summary of a new section named after its title.
const newSectionSummary = "/* %s */ new section"

// formatSummary renders the edit summary. For a new section an empty summary
// or section title falls back to the other one.
func (s *Service) formatSummary(snap content.Snapshot, req Request) string {
	summary := ""
	if req.Summary != nil {
		summary = *req.Summary
	}
	sectionTitle := req.sectionTitle()
	isNew := sections.IsNew(req.Section)
	if isNew && (sectionTitle == "" || summary == "") {
		if sectionTitle != "" {
			summary = sectionTitle
		}
		if summary != "" {
			summary = fmt.Sprintf(newSectionSummary, s.renderer.StripSectionName(summary))
		}
	}
	return s.renderer.FormatComment(summary, snap.Title.PrefixedText(), isNew)
}
