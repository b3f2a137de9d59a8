package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/goliatone/go-wikiparse/internal/apierrors"
	"github.com/goliatone/go-wikiparse/internal/content"
	"github.com/goliatone/go-wikiparse/internal/logging"
	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// Source tells how a resolution found its content.
type Source string

const (
	SourceText     Source = "text"
	SourcePage     Source = "page"
	SourceRevision Source = "revision"
)

// Resolution is the outcome of resolving a selector.
type Resolution struct {
	Snapshot content.Snapshot
	Source   Source
	// Page is the stored page, nil for text that does not belong to one.
	Page      *interfaces.PageRecord
	Redirects []interfaces.Redirect
	Warnings  []apierrors.Warning
}

// IsCurrent reports whether the snapshot is the latest revision of its page.
func (r *Resolution) IsCurrent() bool {
	return r.Page != nil && r.Snapshot.RevID > 0 && r.Page.Latest == r.Snapshot.RevID
}

// What names the content source in section error messages.
func (r *Resolution) What() string {
	switch r.Source {
	case SourceRevision:
		return "revision " + strconv.FormatInt(r.Snapshot.RevID, 10)
	case SourcePage:
		return "page " + r.Snapshot.Title.PrefixedText()
	default:
		return "text"
	}
}

// Resolver turns a Selector into a content snapshot. It only reads storage.
type Resolver struct {
	store        interfaces.ContentStore
	models       *content.Registry
	site         titles.Site
	pages        interfaces.PageSetResolver
	perms        interfaces.PermissionChecker
	defaultModel string
	logger       interfaces.Logger
}

type Option func(*Resolver)

// WithPageSet routes page lookups through a page set resolver, which is
// required for redirect following.
func WithPageSet(pages interfaces.PageSetResolver) Option {
	return func(r *Resolver) {
		r.pages = pages
	}
}

func WithPermissions(perms interfaces.PermissionChecker) Option {
	return func(r *Resolver) {
		if perms != nil {
			r.perms = perms
		}
	}
}

// WithDefaultModel sets the site default content model.
func WithDefaultModel(model string) Option {
	return func(r *Resolver) {
		if model != "" {
			r.defaultModel = model
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(store interfaces.ContentStore, models *content.Registry, site titles.Site, opts ...Option) *Resolver {
	if models == nil {
		models = content.NewRegistry()
	}
	r := &Resolver{
		store:        store,
		models:       models,
		site:         site,
		perms:        allowAll{},
		defaultModel: content.ModelWikitext,
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve validates sel and loads the content it names. Section extraction
// is left to the caller.
func (r *Resolver) Resolve(ctx context.Context, caller interfaces.Caller, sel Selector) (*Resolution, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	switch {
	case sel.OldID != 0:
		return r.fromRevision(ctx, caller, sel.OldID)
	case sel.Page != "" || sel.PageID != 0:
		return r.fromPage(ctx, caller, sel)
	default:
		return r.fromText(ctx, sel)
	}
}

func (r *Resolver) fromRevision(ctx context.Context, caller interfaces.Caller, revID int64) (*Resolution, error) {
	rev, err := r.store.RevisionByID(ctx, revID)
	if err != nil {
		if isNotFound(err) {
			return nil, apierrors.RevisionNotFound(revID)
		}
		return nil, err
	}
	page, err := r.store.PageByID(ctx, rev.PageID)
	if err != nil {
		if isNotFound(err) {
			return nil, apierrors.RevisionNotFound(revID)
		}
		return nil, err
	}

	if !r.perms.CanRead(ctx, caller, *page) {
		return nil, apierrors.PermissionDenied(apierrors.ReasonRead)
	}
	// Visibility is checked before any text leaves storage.
	if !r.perms.CanSeeDeletedText(ctx, caller, *rev) {
		r.logger.Debug("resolver: deleted revision text hidden", "revid", revID)
		return nil, apierrors.PermissionDenied(apierrors.ReasonDeletedText)
	}

	rec, err := r.store.RevisionContent(ctx, revID)
	if err != nil {
		if isNotFound(err) {
			return nil, apierrors.MissingRevisionContent(revID)
		}
		return nil, err
	}
	title := titles.Title{Namespace: page.Namespace, Text: page.Title}
	c, err := r.makeContent(rec, title)
	if err != nil {
		return nil, err
	}

	textDeleted := rev.IsDeleted(interfaces.DeletedText)
	return &Resolution{
		Source: SourceRevision,
		Page:   page,
		Snapshot: content.Snapshot{
			Title:          title,
			PageID:         page.ID,
			RevID:          rev.ID,
			Content:        c,
			TextDeleted:    textDeleted,
			TextSuppressed: textDeleted && rev.IsDeleted(interfaces.DeletedRestricted),
		},
	}, nil
}

func (r *Resolver) fromPage(ctx context.Context, caller interfaces.Caller, sel Selector) (*Resolution, error) {
	page, redirects, err := r.lookupPage(ctx, sel)
	if err != nil {
		return nil, err
	}
	if !r.perms.CanRead(ctx, caller, *page) {
		return nil, apierrors.PermissionDenied(apierrors.ReasonRead)
	}

	rec, err := r.store.CurrentContent(ctx, page.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, apierrors.MissingPageContent(page.ID)
		}
		return nil, err
	}
	title := titles.Title{Namespace: page.Namespace, Text: page.Title}
	c, err := r.makeContent(rec, title)
	if err != nil {
		return nil, err
	}
	revID := rec.RevisionID
	if revID == 0 {
		revID = page.Latest
	}
	return &Resolution{
		Source:    SourcePage,
		Page:      page,
		Redirects: redirects,
		Snapshot: content.Snapshot{
			Title:   title,
			PageID:  page.ID,
			RevID:   revID,
			Content: c,
		},
	}, nil
}

func (r *Resolver) lookupPage(ctx context.Context, sel Selector) (*interfaces.PageRecord, []interfaces.Redirect, error) {
	var name string
	if sel.Page != "" {
		t, err := r.site.Parse(sel.Page)
		if err != nil || !t.CanExist() {
			return nil, nil, apierrors.InvalidTitle(sel.Page)
		}
		name = t.PrefixedText()
	}

	if r.pages == nil {
		var page *interfaces.PageRecord
		var err error
		if name != "" {
			page, err = r.store.PageByTitle(ctx, name)
		} else {
			page, err = r.store.PageByID(ctx, sel.PageID)
		}
		if err != nil {
			if isNotFound(err) {
				return nil, nil, notFound(name, sel.PageID)
			}
			return nil, nil, err
		}
		return page, nil, nil
	}

	req := interfaces.PageSetRequest{FollowRedirects: sel.Redirects}
	if name != "" {
		req.Titles = []string{name}
	} else {
		req.PageIDs = []int64{sel.PageID}
	}
	set, err := r.pages.Resolve(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if len(set.Good) == 0 {
		return nil, nil, notFound(name, sel.PageID)
	}
	return set.Good[0], set.Redirects, nil
}

func (r *Resolver) fromText(ctx context.Context, sel Selector) (*Resolution, error) {
	res := &Resolution{Source: SourceText}

	raw := sel.Title
	if raw == "" {
		raw = DefaultTitle
	}
	title, err := r.site.Parse(raw)
	if err != nil || title.IsExternal() {
		return nil, apierrors.InvalidTitle(raw)
	}

	if sel.RevID != 0 {
		rev, err := r.store.RevisionByID(ctx, sel.RevID)
		if err != nil {
			if isNotFound(err) {
				return nil, apierrors.RevisionNotFound(sel.RevID)
			}
			return nil, err
		}
		revTitle := titles.Title{Namespace: rev.Namespace, Text: rev.Title}
		if sel.TitleProvided() && !revTitle.Equals(title) {
			res.Warnings = append(res.Warnings, apierrors.NewWarning(apierrors.WarnRevWrongPage, sel.RevID, title.PrefixedText()))
		}
		title = revTitle
		res.Snapshot.RevID = rev.ID
		res.Snapshot.PageID = rev.PageID
	} else if r.store != nil {
		page, err := r.store.PageByTitle(ctx, title.PrefixedText())
		switch {
		case err == nil:
			res.Page = page
			res.Snapshot.PageID = page.ID
		case !isNotFound(err):
			return nil, err
		}
	}

	text := ""
	if sel.Text != nil {
		text = *sel.Text
	} else if sel.TitleProvided() && sel.WantsOutput {
		code := apierrors.WarnTitleWithoutText
		if sel.RevID != 0 {
			code = apierrors.WarnRevIDWithoutText
		}
		res.Warnings = append(res.Warnings, apierrors.NewWarning(code))
	}

	model := sel.ContentModel
	if model == "" {
		if sel.Text != nil && !sel.TitleProvided() {
			model = content.ModelWikitext
			res.Warnings = append(res.Warnings, apierrors.NewWarning(apierrors.WarnNoContentModel, model))
		} else {
			model = content.DefaultModelFor(title, r.defaultModel)
		}
	}
	c, err := r.models.MakeContent(text, model, sel.ContentFormat)
	if err != nil {
		return nil, err
	}

	res.Snapshot.Title = title
	res.Snapshot.Content = c
	return res, nil
}

func (r *Resolver) makeContent(rec *interfaces.ContentRecord, title titles.Title) (content.Content, error) {
	model := rec.Model
	if model == "" {
		model = content.DefaultModelFor(title, r.defaultModel)
	}
	return r.models.MakeContent(rec.Text, model, rec.Format)
}

func notFound(name string, pageID int64) error {
	if name == "" {
		name = fmt.Sprintf("#%d", pageID)
	}
	return apierrors.PageNotFound(name)
}

func isNotFound(err error) bool {
	return errors.Is(err, interfaces.ErrRecordNotFound)
}

// allowAll grants every read when no permission checker is configured.
type allowAll struct{}

func (allowAll) CanRead(context.Context, interfaces.Caller, interfaces.PageRecord) bool {
	return true
}

func (allowAll) CanSeeDeletedText(context.Context, interfaces.Caller, interfaces.RevisionRecord) bool {
	return true
}
