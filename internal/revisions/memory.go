package revisions

import (
	"context"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-wikiparse/internal/identity"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// MemoryStore is an in-memory Store for tests and the CLI.
type MemoryStore struct {
	mu        sync.RWMutex
	pages     map[int64]*Page
	keyIndex  map[string]int64
	revisions map[int64]*Revision
	props     map[int64]map[string]string
	nextPage  int64
	nextRev   int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pages:     make(map[int64]*Page),
		keyIndex:  make(map[string]int64),
		revisions: make(map[int64]*Revision),
		props:     make(map[int64]map[string]string),
	}
}

func (m *MemoryStore) CreatePage(_ context.Context, in PageInput) (*interfaces.PageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pageKey(in.Namespace, in.Title)
	if id, ok := m.keyIndex[key]; ok {
		return m.pages[id].record(), nil
	}
	m.nextPage++
	page := &Page{
		ID:        identity.PageUUID(key),
		PageID:    m.nextPage,
		Namespace: in.Namespace,
		Title:     in.Title,
		Key:       key,
		Model:     in.Model,
	}
	m.pages[page.PageID] = page
	m.keyIndex[key] = page.PageID
	return page.record(), nil
}

func (m *MemoryStore) AddRevision(_ context.Context, in RevisionInput) (*interfaces.RevisionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	page, ok := m.pages[in.PageID]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: strconv.FormatInt(in.PageID, 10)}
	}
	in = revisionDefaults(in, page.Model)
	m.nextRev++
	rev := &Revision{
		ID:        uuid.New(),
		RevID:     m.nextRev,
		PageID:    page.PageID,
		Model:     in.Model,
		Format:    in.Format,
		Text:      in.Text,
		Deleted:   in.Deleted,
		User:      in.User,
		Comment:   in.Comment,
		Timestamp: in.Timestamp,
	}
	m.revisions[rev.RevID] = rev
	page.Latest = rev.RevID
	page.Touched = rev.Timestamp
	page.RedirectTarget, page.IsRedirect = RedirectTarget(rev.Text)
	return rev.record(page), nil
}

func (m *MemoryStore) SetPageProp(_ context.Context, pageID int64, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pages[pageID]; !ok {
		return &NotFoundError{Resource: "page", Key: strconv.FormatInt(pageID, 10)}
	}
	if m.props[pageID] == nil {
		m.props[pageID] = map[string]string{}
	}
	m.props[pageID][name] = value
	return nil
}

func (m *MemoryStore) PageByID(_ context.Context, id int64) (*interfaces.PageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[id]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: strconv.FormatInt(id, 10)}
	}
	return page.record(), nil
}

func (m *MemoryStore) PageByTitle(_ context.Context, prefixedTitle string) (*interfaces.PageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := normalizeKey(prefixedTitle)
	id, ok := m.keyIndex[key]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: key}
	}
	return m.pages[id].record(), nil
}

func (m *MemoryStore) RevisionByID(_ context.Context, revID int64) (*interfaces.RevisionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rev, ok := m.revisions[revID]
	if !ok {
		return nil, &NotFoundError{Resource: "revision", Key: strconv.FormatInt(revID, 10)}
	}
	return rev.record(m.pages[rev.PageID]), nil
}

func (m *MemoryStore) CurrentContent(_ context.Context, pageID int64) (*interfaces.ContentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[pageID]
	if !ok || page.Latest == 0 {
		return nil, &NotFoundError{Resource: "content", Key: strconv.FormatInt(pageID, 10)}
	}
	rev, ok := m.revisions[page.Latest]
	if !ok {
		return nil, &NotFoundError{Resource: "content", Key: strconv.FormatInt(pageID, 10)}
	}
	return rev.content(), nil
}

func (m *MemoryStore) RevisionContent(_ context.Context, revID int64) (*interfaces.ContentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rev, ok := m.revisions[revID]
	if !ok {
		return nil, &NotFoundError{Resource: "content", Key: strconv.FormatInt(revID, 10)}
	}
	return rev.content(), nil
}

func (m *MemoryStore) PagesByTitles(_ context.Context, prefixedTitles []string) ([]*interfaces.PageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*interfaces.PageRecord, 0, len(prefixedTitles))
	for _, title := range prefixedTitles {
		if id, ok := m.keyIndex[normalizeKey(title)]; ok {
			out = append(out, m.pages[id].record())
		}
	}
	return out, nil
}

func (m *MemoryStore) PagesByIDs(_ context.Context, ids []int64) ([]*interfaces.PageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*interfaces.PageRecord, 0, len(ids))
	for _, id := range ids {
		if page, ok := m.pages[id]; ok {
			out = append(out, page.record())
		}
	}
	return out, nil
}

func (m *MemoryStore) PageProps(_ context.Context, pageIDs []int64, name string) (map[int64]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]string)
	for _, id := range pageIDs {
		if value, ok := m.props[id][name]; ok {
			out[id] = value
		}
	}
	return out, nil
}
