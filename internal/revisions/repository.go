package revisions

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(p *Page) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Page, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "page_key"
		},
		GetIdentifierValue: func(p *Page) string {
			return p.Key
		},
	})
}

func NewRevisionRepository(db *bun.DB) repository.Repository[*Revision] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Revision]{
		NewRecord: func() *Revision { return &Revision{} },
		GetID: func(r *Revision) uuid.UUID {
			return r.ID
		},
		SetID: func(r *Revision, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return ""
		},
		GetIdentifierValue: func(*Revision) string {
			return ""
		},
	})
}

func NewPagePropRepository(db *bun.DB) repository.Repository[*PageProp] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*PageProp]{
		NewRecord: func() *PageProp { return &PageProp{} },
		GetID: func(p *PageProp) uuid.UUID {
			return p.ID
		},
		SetID: func(p *PageProp, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return ""
		},
		GetIdentifierValue: func(*PageProp) string {
			return ""
		},
	})
}
