package di

import (
	"context"
	"sync"

	"github.com/goliatone/go-wikiparse/internal/revisions"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// storeProxy routes calls to the current content store so the backing store
// can be swapped without rebuilding the services that hold it.
type storeProxy struct {
	mu    sync.RWMutex
	store revisions.Store
}

var _ revisions.Store = (*storeProxy)(nil)

func newStoreProxy(store revisions.Store) *storeProxy {
	return &storeProxy{store: store}
}

func (p *storeProxy) swap(store revisions.Store) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if store != nil {
		p.store = store
	}
}

func (p *storeProxy) current() revisions.Store {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store
}

func (p *storeProxy) PageByID(ctx context.Context, id int64) (*interfaces.PageRecord, error) {
	return p.current().PageByID(ctx, id)
}

func (p *storeProxy) PageByTitle(ctx context.Context, prefixedTitle string) (*interfaces.PageRecord, error) {
	return p.current().PageByTitle(ctx, prefixedTitle)
}

func (p *storeProxy) RevisionByID(ctx context.Context, revID int64) (*interfaces.RevisionRecord, error) {
	return p.current().RevisionByID(ctx, revID)
}

func (p *storeProxy) CurrentContent(ctx context.Context, pageID int64) (*interfaces.ContentRecord, error) {
	return p.current().CurrentContent(ctx, pageID)
}

func (p *storeProxy) RevisionContent(ctx context.Context, revID int64) (*interfaces.ContentRecord, error) {
	return p.current().RevisionContent(ctx, revID)
}

func (p *storeProxy) PagesByTitles(ctx context.Context, prefixedTitles []string) ([]*interfaces.PageRecord, error) {
	return p.current().PagesByTitles(ctx, prefixedTitles)
}

func (p *storeProxy) PagesByIDs(ctx context.Context, ids []int64) ([]*interfaces.PageRecord, error) {
	return p.current().PagesByIDs(ctx, ids)
}

func (p *storeProxy) PageProps(ctx context.Context, pageIDs []int64, name string) (map[int64]string, error) {
	return p.current().PageProps(ctx, pageIDs, name)
}

func (p *storeProxy) CreatePage(ctx context.Context, in revisions.PageInput) (*interfaces.PageRecord, error) {
	return p.current().CreatePage(ctx, in)
}

func (p *storeProxy) AddRevision(ctx context.Context, in revisions.RevisionInput) (*interfaces.RevisionRecord, error) {
	return p.current().AddRevision(ctx, in)
}

func (p *storeProxy) SetPageProp(ctx context.Context, pageID int64, name, value string) error {
	return p.current().SetPageProp(ctx, pageID, name, value)
}

// parserCacheProxy lets a store swap start from an empty parser cache, since
// cache keys are only unique within one store.
type parserCacheProxy struct {
	mu    sync.RWMutex
	cache interfaces.ParserCache
}

var _ interfaces.ParserCache = (*parserCacheProxy)(nil)

func (p *parserCacheProxy) swap(cache interfaces.ParserCache) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = cache
}

func (p *parserCacheProxy) current() interfaces.ParserCache {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cache
}

func (p *parserCacheProxy) Get(key string) (*interfaces.ParserOutput, bool) {
	if c := p.current(); c != nil {
		return c.Get(key)
	}
	return nil, false
}

func (p *parserCacheProxy) Set(key string, output *interfaces.ParserOutput) {
	if c := p.current(); c != nil {
		c.Set(key, output)
	}
}

func (p *parserCacheProxy) Delete(key string) {
	if c := p.current(); c != nil {
		c.Delete(key)
	}
}
