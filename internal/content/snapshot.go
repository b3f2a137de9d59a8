package content

import "github.com/goliatone/go-wikiparse/internal/titles"

// Snapshot is the resolved input of one parse: what content, owned by which
// page and revision, and whether its text is hidden by revision deletion.
// Snapshots are values; derive new ones with the With helpers.
type Snapshot struct {
	Title          titles.Title
	PageID         int64
	RevID          int64
	Content        Content
	Section        string
	TextDeleted    bool
	TextSuppressed bool
}

// HasRevision reports whether the snapshot is tied to a stored revision.
func (s Snapshot) HasRevision() bool {
	return s.RevID > 0
}

// Model returns the content model, empty when there is no content yet.
func (s Snapshot) Model() string {
	if s.Content == nil {
		return ""
	}
	return s.Content.Model()
}

// WithContent returns a copy carrying c.
func (s Snapshot) WithContent(c Content) Snapshot {
	s.Content = c
	return s
}

// WithSection returns a copy carrying c as the content of section id.
func (s Snapshot) WithSection(id string, c Content) Snapshot {
	s.Content = c
	s.Section = id
	return s
}
