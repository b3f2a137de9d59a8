package parse

import (
	"context"
	"time"

	"github.com/goliatone/go-wikiparse/internal/apierrors"
	"github.com/goliatone/go-wikiparse/internal/assembler"
	"github.com/goliatone/go-wikiparse/internal/cachemode"
	"github.com/goliatone/go-wikiparse/internal/content"
	"github.com/goliatone/go-wikiparse/internal/logging"
	"github.com/goliatone/go-wikiparse/internal/parsecache"
	"github.com/goliatone/go-wikiparse/internal/parseropts"
	"github.com/goliatone/go-wikiparse/internal/poolcounter"
	"github.com/goliatone/go-wikiparse/internal/resolver"
	"github.com/goliatone/go-wikiparse/internal/sections"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// Operation names reported to the cache mode tracker.
const (
	opPageSet = "pageset"
	opParse   = "parse"
)

// Service runs the parse pipeline: resolve, extract the section, build
// options, render under the caller's pool slot and assemble the result.
type Service struct {
	resolver  *resolver.Resolver
	options   *parseropts.Builder
	executor  *poolcounter.Executor
	renderer  interfaces.MarkupRenderer
	assembler *assembler.Assembler
	cache     interfaces.ParserCache
	pages     interfaces.PageSetResolver
	now       func() time.Time
	logger    interfaces.Logger
}

type Option func(*Service)

// WithParserCache enables output caching for stored revisions.
func WithParserCache(cache interfaces.ParserCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithPageSet lets the service report page set lookups to the cache mode.
func WithPageSet(pages interfaces.PageSetResolver) Option {
	return func(s *Service) {
		s.pages = pages
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(
	res *resolver.Resolver,
	options *parseropts.Builder,
	executor *poolcounter.Executor,
	renderer interfaces.MarkupRenderer,
	asm *assembler.Assembler,
	opts ...Option,
) *Service {
	s := &Service{
		resolver:  res,
		options:   options,
		executor:  executor,
		renderer:  renderer,
		assembler: asm,
		now:       time.Now,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CacheMode reports how cacheable the response to req is, folding every
// operation the request runs.
func (s *Service) CacheMode(req Request) cachemode.Mode {
	modes := []cachemode.Mode{cachemode.AnonPublicUserPrivate}
	if req.selector().UsesStoredPage() && s.pages != nil {
		modes = append(modes, cachemode.Mode(s.pages.CacheMode()))
	}
	return cachemode.Fold(modes...)
}

// Parse runs one request. Any error aborts the whole call; advisory
// conditions are returned as result warnings.
func (s *Service) Parse(ctx context.Context, req Request) (*assembler.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	started := s.now()
	tracker := cachemode.NewTracker()
	ctx = logging.ContextWithCaller(ctx, req.Caller)
	logger := logging.FromContext(ctx, s.targetLogger(req))

	resolved, err := s.resolver.Resolve(ctx, req.Caller, req.selector())
	if err != nil {
		return nil, err
	}
	if resolved.Source != resolver.SourceText && s.pages != nil {
		if err := tracker.Report(opPageSet, cachemode.Mode(s.pages.CacheMode())); err != nil {
			return nil, err
		}
	}
	if err := tracker.Report(opParse, cachemode.AnonPublicUserPrivate); err != nil {
		return nil, err
	}

	snap := resolved.Snapshot
	if req.Section != "" {
		snap, err = s.extractSection(resolved, req)
		if err != nil {
			return nil, err
		}
	}

	var parsedSummary *string
	if req.Summary != nil || (sections.IsNew(req.Section) && req.SectionTitle != nil) {
		formatted := s.formatSummary(snap, req)
		parsedSummary = &formatted
	}

	source := snap.Content.Serialize()
	var pstText string
	pst := (req.PST || req.OnlyPST) && resolved.Source == resolver.SourceText
	if pst {
		transformed := content.PreSaveTransform(snap.Content, content.PSTContext{
			Title:    snap.Title,
			UserName: req.Caller.DisplayName(),
			Now:      s.now(),
		})
		pstText = transformed.Serialize()
		if req.OnlyPST {
			res := s.onlyPST(req, source, pstText, parsedSummary, resolved.Warnings)
			res.CacheMode = tracker.Mode()
			return res, nil
		}
		snap = snap.WithContent(transformed)
	}

	props := req.props()
	if (containsProp(props, "parsetree") || req.GenerateXML) && snap.Model() != content.ModelWikitext {
		return nil, apierrors.UnsupportedContentModel(snap.Model())
	}

	built, err := s.options.Build(ctx, parseropts.PageContext{
		Title:  snap.Title,
		Model:  snap.Model(),
		Caller: req.Caller,
	}, parseropts.Request{
		DisableLimitReport: req.DisableLimitReport,
		DisablePP:          req.DisablePP,
		Preview:            req.Preview,
		SectionPreview:     req.SectionPreview,
		WrapOutputClass:    req.WrapOutputClass,
	})
	if err != nil {
		return nil, err
	}
	defer built.Release()

	out, err := s.render(ctx, req.Caller, snap, built, resolved.Source != resolver.SourceText)
	if err != nil {
		return nil, err
	}

	res, err := s.assembler.Assemble(ctx, assembler.Input{
		Output:        out,
		Title:         snap.Title,
		PageID:        snap.PageID,
		RevID:         snap.RevID,
		Model:         snap.Model(),
		Source:        source,
		PSTText:       pstText,
		PST:           pst,
		Props:         props,
		Skin:          req.UseSkin,
		UseSkin:       req.UseSkin != "",
		GenerateXML:   req.GenerateXML,
		Redirects:     resolved.Redirects,
		ParsedSummary: parsedSummary,
		Text: assembler.TextOptions{
			DisableTOC:                req.DisableTOC,
			DisableEditSection:        req.DisableEditSection,
			DisableStyleDeduplication: req.DisableStyleDeduplication,
		},
	})
	if err != nil {
		return nil, err
	}

	if snap.TextDeleted {
		res.Set("textdeleted", true)
		if snap.TextSuppressed {
			res.Set("textsuppressed", true)
		}
	}
	res.Warnings = append(append([]apierrors.Warning(nil), resolved.Warnings...), res.Warnings...)
	for _, w := range res.Warnings {
		logger.Debug("parse warning", "code", w.Code)
	}
	res.CacheMode = tracker.Mode()

	logger.Debug("parse finished", "duration", s.now().Sub(started), "model", snap.Model())
	return res, nil
}

func (s *Service) extractSection(resolved *resolver.Resolution, req Request) (content.Snapshot, error) {
	snap := resolved.Snapshot
	if resolved.Source == resolver.SourceText && sections.IsNew(req.Section) {
		return snap.WithSection(req.Section, sections.NewSection(snap.Content, req.sectionTitle())), nil
	}
	part, err := sections.Extract(snap.Content, req.Section, req.sectionTitle(), resolved.What())
	if err != nil {
		return content.Snapshot{}, err
	}
	return snap.WithSection(req.Section, part), nil
}

// render produces parser output, using the parser cache for whole stored
// revisions whose text is visible and whose options allow it.
func (s *Service) render(ctx context.Context, caller interfaces.Caller, snap content.Snapshot, built *parseropts.Result, stored bool) (*interfaces.ParserOutput, error) {
	cacheable := s.cache != nil && stored && snap.Section == "" && !snap.TextDeleted && !built.SuppressCache
	key := parsecache.Key(snap.PageID, snap.RevID, built.Options.Fingerprint())
	if cacheable {
		if out, ok := s.cache.Get(key); ok {
			return out, nil
		}
	}

	req := interfaces.RenderRequest{
		Title:     snap.Title.PrefixedText(),
		Namespace: snap.Title.Namespace,
		PageID:    snap.PageID,
		RevID:     snap.RevID,
		Model:     snap.Model(),
		Text:      snap.Content.Serialize(),
		Options:   built.Options.ParserOptions(),
	}
	return s.executor.Execute(ctx, caller, func(workCtx context.Context) (*interfaces.ParserOutput, error) {
		out, err := s.renderer.Render(workCtx, req)
		if err != nil {
			return nil, err
		}
		if cacheable {
			s.cache.Set(key, out)
		}
		return out, nil
	})
}

func (s *Service) onlyPST(req Request, source, pstText string, summary *string, warnings []apierrors.Warning) *assembler.Result {
	res := assembler.NewResult()
	res.Set("text", pstText)
	res.SetSubElement("text")
	if containsProp(req.props(), "wikitext") {
		res.Set("wikitext", source)
		res.SetSubElement("wikitext")
	}
	if summary != nil {
		res.Set("parsedsummary", *summary)
		res.SetSubElement("parsedsummary")
	}
	res.Warnings = append(res.Warnings, warnings...)
	return res
}

func (s *Service) targetLogger(req Request) interfaces.Logger {
	title, revID := req.Title, req.RevID
	if req.Page != "" {
		title = req.Page
	}
	if req.OldID != 0 {
		revID = req.OldID
	}
	return logging.WithParseTarget(s.logger, title, revID, req.Section)
}

func containsProp(props []string, name string) bool {
	for _, p := range props {
		if p == name {
			return true
		}
	}
	return false
}
