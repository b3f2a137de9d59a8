package revisions

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-wikiparse/internal/identity"
	"github.com/goliatone/go-wikiparse/internal/logging"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// BunStore persists pages and revisions through go-repository-bun, optionally
// wrapped with the repository cache.
type BunStore struct {
	db        *bun.DB
	pages     repository.Repository[*Page]
	revisions repository.Repository[*Revision]
	props     repository.Repository[*PageProp]
	logger    interfaces.Logger

	// serialises numeric id allocation
	writeMu sync.Mutex
}

var _ Store = (*BunStore)(nil)

// BunOption customises a BunStore.
type BunOption func(*bunOptions)

type bunOptions struct {
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	logger        interfaces.Logger
}

// WithCache enables the repository cache decorator.
func WithCache(service cache.CacheService, serializer cache.KeySerializer) BunOption {
	return func(o *bunOptions) {
		o.cacheService = service
		o.keySerializer = serializer
	}
}

// WithLogger sets the storage logger.
func WithLogger(logger interfaces.Logger) BunOption {
	return func(o *bunOptions) {
		o.logger = logger
	}
}

func NewBunStore(db *bun.DB, opts ...BunOption) *BunStore {
	cfg := bunOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	logger := cfg.logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &BunStore{
		db:        db,
		pages:     wrapWithCache(NewPageRepository(db), cfg.cacheService, cfg.keySerializer),
		revisions: wrapWithCache(NewRevisionRepository(db), cfg.cacheService, cfg.keySerializer),
		props:     wrapWithCache(NewPagePropRepository(db), cfg.cacheService, cfg.keySerializer),
		logger:    logger,
	}
}

// EnsureSchema creates the storage tables when missing.
func (s *BunStore) EnsureSchema(ctx context.Context) error {
	models := []any{(*Page)(nil), (*Revision)(nil), (*PageProp)(nil)}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table %T: %w", model, err)
		}
	}
	return nil
}

func (s *BunStore) CreatePage(ctx context.Context, in PageInput) (*interfaces.PageRecord, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	key := pageKey(in.Namespace, in.Title)
	if existing, err := s.pages.GetByIdentifier(ctx, key); err == nil {
		return existing.record(), nil
	}
	next, err := s.nextID(ctx, (*Page)(nil), "page_id")
	if err != nil {
		return nil, err
	}
	created, err := s.pages.Create(ctx, &Page{
		ID:        identity.PageUUID(key),
		PageID:    next,
		Namespace: in.Namespace,
		Title:     in.Title,
		Key:       key,
		Model:     in.Model,
		Touched:   time.Now().UTC(),
	})
	if err != nil {
		return nil, mapRepositoryError(err, "page", key)
	}
	s.logger.Debug("page created", "page_id", created.PageID, "title", key)
	return created.record(), nil
}

func (s *BunStore) AddRevision(ctx context.Context, in RevisionInput) (*interfaces.RevisionRecord, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	page, err := s.pageByID(ctx, in.PageID)
	if err != nil {
		return nil, err
	}
	in = revisionDefaults(in, page.Model)
	next, err := s.nextID(ctx, (*Revision)(nil), "rev_id")
	if err != nil {
		return nil, err
	}
	rev, err := s.revisions.Create(ctx, &Revision{
		ID:        uuid.New(),
		RevID:     next,
		PageID:    page.PageID,
		Model:     in.Model,
		Format:    in.Format,
		Text:      in.Text,
		Deleted:   in.Deleted,
		User:      in.User,
		Comment:   in.Comment,
		Timestamp: in.Timestamp,
	})
	if err != nil {
		return nil, mapRepositoryError(err, "revision", strconv.FormatInt(next, 10))
	}

	page.Latest = rev.RevID
	page.Touched = rev.Timestamp
	page.RedirectTarget, page.IsRedirect = RedirectTarget(rev.Text)
	if _, err := s.pages.Update(ctx, page,
		repository.UpdateByID(page.ID.String()),
		repository.UpdateColumns("latest", "touched", "is_redirect", "redirect_target"),
	); err != nil {
		return nil, mapRepositoryError(err, "page", page.Key)
	}
	return rev.record(page), nil
}

func (s *BunStore) SetPageProp(ctx context.Context, pageID int64, name, value string) error {
	records, _, err := s.props.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.page_id = ?", pageID).Where("?TableAlias.name = ?", name)
	}))
	if err != nil {
		return mapRepositoryError(err, "page_prop", name)
	}
	if len(records) > 0 {
		prop := records[0]
		prop.Value = value
		_, err := s.props.Update(ctx, prop,
			repository.UpdateByID(prop.ID.String()),
			repository.UpdateColumns("value"),
		)
		return mapRepositoryError(err, "page_prop", name)
	}
	_, err = s.props.Create(ctx, &PageProp{ID: identity.PagePropUUID(pageID, name), PageID: pageID, Name: name, Value: value})
	return mapRepositoryError(err, "page_prop", name)
}

func (s *BunStore) PageByID(ctx context.Context, id int64) (*interfaces.PageRecord, error) {
	page, err := s.pageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return page.record(), nil
}

func (s *BunStore) PageByTitle(ctx context.Context, prefixedTitle string) (*interfaces.PageRecord, error) {
	key := normalizeKey(prefixedTitle)
	page, err := s.pages.GetByIdentifier(ctx, key)
	if err != nil {
		return nil, mapRepositoryError(err, "page", key)
	}
	return page.record(), nil
}

func (s *BunStore) RevisionByID(ctx context.Context, revID int64) (*interfaces.RevisionRecord, error) {
	rev, err := s.revisionByID(ctx, revID)
	if err != nil {
		return nil, err
	}
	page, err := s.pageByID(ctx, rev.PageID)
	if err != nil {
		return nil, err
	}
	return rev.record(page), nil
}

func (s *BunStore) CurrentContent(ctx context.Context, pageID int64) (*interfaces.ContentRecord, error) {
	page, err := s.pageByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if page.Latest == 0 {
		return nil, &NotFoundError{Resource: "content", Key: strconv.FormatInt(pageID, 10)}
	}
	rev, err := s.revisionByID(ctx, page.Latest)
	if err != nil {
		return nil, err
	}
	return rev.content(), nil
}

func (s *BunStore) RevisionContent(ctx context.Context, revID int64) (*interfaces.ContentRecord, error) {
	rev, err := s.revisionByID(ctx, revID)
	if err != nil {
		return nil, err
	}
	return rev.content(), nil
}

// PagesByTitles resolves every title with a single query.
func (s *BunStore) PagesByTitles(ctx context.Context, prefixedTitles []string) ([]*interfaces.PageRecord, error) {
	if len(prefixedTitles) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(prefixedTitles))
	for _, title := range prefixedTitles {
		keys = append(keys, normalizeKey(title))
	}
	records, _, err := s.pages.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.page_key IN (?)", bun.In(keys))
	}))
	if err != nil {
		return nil, mapRepositoryError(err, "page", "batch")
	}
	return toPageRecords(records), nil
}

func (s *BunStore) PagesByIDs(ctx context.Context, ids []int64) ([]*interfaces.PageRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	records, _, err := s.pages.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.page_id IN (?)", bun.In(ids))
	}))
	if err != nil {
		return nil, mapRepositoryError(err, "page", "batch")
	}
	return toPageRecords(records), nil
}

func (s *BunStore) PageProps(ctx context.Context, pageIDs []int64, name string) (map[int64]string, error) {
	out := make(map[int64]string)
	if len(pageIDs) == 0 {
		return out, nil
	}
	records, _, err := s.props.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.page_id IN (?)", bun.In(pageIDs)).Where("?TableAlias.name = ?", name)
	}))
	if err != nil {
		return nil, mapRepositoryError(err, "page_prop", name)
	}
	for _, prop := range records {
		out[prop.PageID] = prop.Value
	}
	return out, nil
}

func (s *BunStore) pageByID(ctx context.Context, id int64) (*Page, error) {
	records, _, err := s.pages.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.page_id = ?", id)
		}),
		repository.SelectPaginate(1, 0),
	)
	key := strconv.FormatInt(id, 10)
	if err != nil {
		return nil, mapRepositoryError(err, "page", key)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "page", Key: key}
	}
	return records[0], nil
}

func (s *BunStore) revisionByID(ctx context.Context, revID int64) (*Revision, error) {
	records, _, err := s.revisions.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.rev_id = ?", revID)
		}),
		repository.SelectPaginate(1, 0),
	)
	key := strconv.FormatInt(revID, 10)
	if err != nil {
		return nil, mapRepositoryError(err, "revision", key)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "revision", Key: key}
	}
	return records[0], nil
}

func (s *BunStore) nextID(ctx context.Context, model any, column string) (int64, error) {
	var current int64
	err := s.db.NewSelect().
		Model(model).
		ColumnExpr("COALESCE(MAX(?), 0)", bun.Ident(column)).
		Scan(ctx, &current)
	if err != nil {
		return 0, fmt.Errorf("allocate %s: %w", column, err)
	}
	return current + 1, nil
}

func toPageRecords(records []*Page) []*interfaces.PageRecord {
	out := make([]*interfaces.PageRecord, 0, len(records))
	for _, record := range records {
		out = append(out, record.record())
	}
	return out
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
