package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrRecordNotFound is returned (possibly wrapped) by storage collaborators
// when a page or revision does not exist.
var ErrRecordNotFound = errors.New("interfaces: record not found")

// Revision deletion bits. They mirror the classic revision-deletion bitfield
// so stored values stay portable.
const (
	DeletedText       = 1
	DeletedComment    = 2
	DeletedUser       = 4
	DeletedRestricted = 8
)

// PageRecord describes a page row without its content.
type PageRecord struct {
	ID             int64
	Namespace      int
	Title          string
	Latest         int64
	Model          string
	IsRedirect     bool
	RedirectTarget string
	Touched        time.Time
}

// RevisionRecord describes a revision without its content so visibility can
// be checked before any text is fetched.
type RevisionRecord struct {
	ID        int64
	PageID    int64
	Namespace int
	Title     string
	Model     string
	Format    string
	Deleted   int
	User      string
	Comment   string
	Timestamp time.Time
}

// IsDeleted reports whether every bit in field is set on the revision.
func (r RevisionRecord) IsDeleted(field int) bool {
	return r.Deleted&field == field
}

// ContentRecord is the serialized main-slot content of a revision.
type ContentRecord struct {
	RevisionID int64
	Model      string
	Format     string
	Text       string
}

// ContentStore is the read-only storage contract the parse core needs.
type ContentStore interface {
	PageByID(ctx context.Context, id int64) (*PageRecord, error)
	PageByTitle(ctx context.Context, prefixedTitle string) (*PageRecord, error)
	RevisionByID(ctx context.Context, revID int64) (*RevisionRecord, error)
	CurrentContent(ctx context.Context, pageID int64) (*ContentRecord, error)
	RevisionContent(ctx context.Context, revID int64) (*ContentRecord, error)
}

// PageLookup exposes batched lookups used for existence checks. Every method
// must issue a single query regardless of the number of inputs.
type PageLookup interface {
	PagesByTitles(ctx context.Context, prefixedTitles []string) ([]*PageRecord, error)
	PagesByIDs(ctx context.Context, ids []int64) ([]*PageRecord, error)
	PageProps(ctx context.Context, pageIDs []int64, name string) (map[int64]string, error)
}
