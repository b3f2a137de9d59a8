package revisions

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// NotFoundError reports a missing page, revision or content row.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return interfaces.ErrRecordNotFound
}

// PageInput describes a page to create.
type PageInput struct {
	Namespace int
	Title     string
	Model     string
}

// RevisionInput describes a revision appended to an existing page.
type RevisionInput struct {
	PageID    int64
	Text      string
	Model     string
	Format    string
	User      string
	Comment   string
	Deleted   int
	Timestamp time.Time
}

// Writer seeds pages, revisions and properties.
type Writer interface {
	CreatePage(ctx context.Context, in PageInput) (*interfaces.PageRecord, error)
	AddRevision(ctx context.Context, in RevisionInput) (*interfaces.RevisionRecord, error)
	SetPageProp(ctx context.Context, pageID int64, name, value string) error
}

// Store is the full storage surface used by the resolver, the page set and
// the CLI seeder.
type Store interface {
	interfaces.ContentStore
	interfaces.PageLookup
	Writer
}

var redirectPattern = regexp.MustCompile(`(?i)^\s*#REDIRECT\s*:?\s*\[\[([^\]|]+)(?:\|[^\]]*)?\]\]`)

// RedirectTarget extracts the target of a "#REDIRECT [[...]]" page.
func RedirectTarget(text string) (string, bool) {
	m := redirectPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func pageKey(namespace int, title string) string {
	return titles.Title{Namespace: namespace, Text: title}.PrefixedText()
}

func normalizeKey(prefixed string) string {
	return strings.TrimSpace(strings.ReplaceAll(prefixed, "_", " "))
}

func revisionDefaults(in RevisionInput, model string) RevisionInput {
	if in.Model == "" {
		in.Model = model
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now().UTC()
	}
	return in
}
