package revisions

import (
	"time"

	"github.com/goliatone/go-wikiparse/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Page is the stored page row. PageID is the public numeric id; ID is the
// storage key used by the generic repositories.
type Page struct {
	bun.BaseModel `bun:"table:wiki_pages,alias:wp"`

	ID             uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PageID         int64     `bun:"page_id,notnull,unique" json:"page_id"`
	Namespace      int       `bun:"namespace,notnull" json:"namespace"`
	Title          string    `bun:"title,notnull" json:"title"`
	Key            string    `bun:"page_key,notnull,unique" json:"key"`
	Latest         int64     `bun:"latest,notnull,default:0" json:"latest"`
	Model          string    `bun:"content_model,notnull" json:"content_model"`
	IsRedirect     bool      `bun:"is_redirect,notnull,default:false" json:"is_redirect"`
	RedirectTarget string    `bun:"redirect_target" json:"redirect_target,omitempty"`
	Touched        time.Time `bun:"touched,nullzero,notnull,default:current_timestamp" json:"touched"`
}

// Revision stores one version of a page together with its text.
type Revision struct {
	bun.BaseModel `bun:"table:wiki_revisions,alias:wr"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	RevID     int64     `bun:"rev_id,notnull,unique" json:"rev_id"`
	PageID    int64     `bun:"page_id,notnull" json:"page_id"`
	Model     string    `bun:"content_model,notnull" json:"content_model"`
	Format    string    `bun:"content_format" json:"content_format"`
	Text      string    `bun:"text" json:"text"`
	Deleted   int       `bun:"deleted,notnull,default:0" json:"deleted"`
	User      string    `bun:"user_text" json:"user"`
	Comment   string    `bun:"comment" json:"comment"`
	Timestamp time.Time `bun:"timestamp,nullzero,notnull,default:current_timestamp" json:"timestamp"`
}

// PageProp is a named page property such as "hiddencat" or "displaytitle".
type PageProp struct {
	bun.BaseModel `bun:"table:wiki_page_props,alias:wpp"`

	ID     uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PageID int64     `bun:"page_id,notnull" json:"page_id"`
	Name   string    `bun:"name,notnull" json:"name"`
	Value  string    `bun:"value" json:"value"`
}

func (p *Page) record() *interfaces.PageRecord {
	return &interfaces.PageRecord{
		ID:             p.PageID,
		Namespace:      p.Namespace,
		Title:          p.Title,
		Latest:         p.Latest,
		Model:          p.Model,
		IsRedirect:     p.IsRedirect,
		RedirectTarget: p.RedirectTarget,
		Touched:        p.Touched,
	}
}

func (r *Revision) record(page *Page) *interfaces.RevisionRecord {
	rec := &interfaces.RevisionRecord{
		ID:        r.RevID,
		PageID:    r.PageID,
		Model:     r.Model,
		Format:    r.Format,
		Deleted:   r.Deleted,
		User:      r.User,
		Comment:   r.Comment,
		Timestamp: r.Timestamp,
	}
	if page != nil {
		rec.Namespace = page.Namespace
		rec.Title = page.Title
	}
	return rec
}

func (r *Revision) content() *interfaces.ContentRecord {
	return &interfaces.ContentRecord{
		RevisionID: r.RevID,
		Model:      r.Model,
		Format:     r.Format,
		Text:       r.Text,
	}
}
