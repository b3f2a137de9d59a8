package assembler

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-wikiparse/internal/apierrors"
	"github.com/goliatone/go-wikiparse/internal/content"
	"github.com/goliatone/go-wikiparse/internal/hooks"
	"github.com/goliatone/go-wikiparse/internal/logging"
	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// errSkip tells Assemble to leave a requested field out of the result.
var errSkip = errors.New("assembler: skip field")

// TextOptions shape the projection of the rendered body.
type TextOptions struct {
	DisableTOC                bool
	DisableEditSection        bool
	DisableStyleDeduplication bool
}

// Input is everything the assembler needs about one finished parse.
type Input struct {
	Output        *interfaces.ParserOutput
	Title         titles.Title
	PageID        int64
	RevID         int64
	Model         string
	Source        string
	PSTText       string
	PST           bool
	Props         []string
	Skin          string
	UseSkin       bool
	GenerateXML   bool
	Text          TextOptions
	Redirects     []interfaces.Redirect
	ParsedSummary *string
}

// TextContext is handed to BeforeHTML handlers, which may rewrite HTML.
type TextContext struct {
	Title  titles.Title
	Output *interfaces.ParserOutput
	HTML   string
}

// LanguageLinker filters interlanguage links when no skin is involved.
type LanguageLinker interface {
	EffectiveLanguageLinks(ctx context.Context, title string, links []string) ([]string, error)
}

// Assembler projects parser output into the requested result fields.
type Assembler struct {
	site       titles.Site
	pages      interfaces.PageSetResolver
	decorator  interfaces.Decorator
	renderer   interfaces.MarkupRenderer
	langLinks  LanguageLinker
	beforeHTML *hooks.Registry[*TextContext]
	logger     interfaces.Logger
}

type Option func(*Assembler)

// WithPageSet sets the resolver used for batched existence lookups.
func WithPageSet(pages interfaces.PageSetResolver) Option {
	return func(a *Assembler) {
		a.pages = pages
	}
}

func WithDecorator(decorator interfaces.Decorator) Option {
	return func(a *Assembler) {
		a.decorator = decorator
	}
}

// WithRenderer sets the renderer used for the parse tree field.
func WithRenderer(renderer interfaces.MarkupRenderer) Option {
	return func(a *Assembler) {
		a.renderer = renderer
	}
}

func WithLanguageLinker(linker LanguageLinker) Option {
	return func(a *Assembler) {
		a.langLinks = linker
	}
}

// WithBeforeHTMLHooks shares an existing BeforeHTML registry.
func WithBeforeHTMLHooks(reg *hooks.Registry[*TextContext]) Option {
	return func(a *Assembler) {
		if reg != nil {
			a.beforeHTML = reg
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New builds an assembler for site.
func New(site titles.Site, opts ...Option) *Assembler {
	a := &Assembler{
		site:       site,
		beforeHTML: hooks.NewRegistry[*TextContext](hooks.BeforeHTML),
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// BeforeHTMLHooks exposes the text projection extension point.
func (a *Assembler) BeforeHTMLHooks() *hooks.Registry[*TextContext] {
	return a.beforeHTML
}

// Assemble builds the result for in. Only requested fields are computed.
func (a *Assembler) Assemble(ctx context.Context, in Input) (*Result, error) {
	wanted := make(map[string]bool, len(in.Props))
	for _, p := range in.Props {
		wanted[p] = true
	}

	if (wanted["parsetree"] || in.GenerateXML) && in.Model != content.ModelWikitext {
		return nil, apierrors.UnsupportedContentModel(in.Model)
	}

	out := in.Output
	if out == nil {
		out = &interfaces.ParserOutput{}
	}
	s := &session{a: a, in: in, out: out}

	res := NewResult()
	res.Set("title", in.Title.PrefixedText())
	res.Set("pageid", in.PageID)
	if wanted["revid"] && in.RevID > 0 {
		res.Set("revid", in.RevID)
	}
	if len(in.Redirects) > 0 {
		res.Set("redirects", in.Redirects)
		res.SetIndexedTagName("redirects", "r")
	}
	if in.ParsedSummary != nil {
		res.Set("parsedsummary", *in.ParsedSummary)
		res.SetSubElement("parsedsummary")
	}

	if in.UseSkin || needsDecoration(wanted) {
		if _, err := s.decorate(ctx); err != nil {
			return nil, err
		}
	}

	for _, f := range fields {
		if !wanted[f.name] && !(f.name == "parsetree" && in.GenerateXML) {
			continue
		}
		value, err := f.compute(ctx, s)
		if errors.Is(err, errSkip) {
			continue
		}
		if err != nil {
			return nil, err
		}
		res.Set(f.name, value)
		if f.tag != "" {
			res.SetIndexedTagName(f.name, f.tag)
		}
		if f.subElement {
			res.SetSubElement(f.name)
		}
	}

	if wanted["modules"] && !wanted["jsconfigvars"] && !wanted["encodedjsconfigvars"] {
		res.AddWarning(apierrors.NewWarning(apierrors.WarnModulesWithoutVar))
	}
	return res, nil
}

// session holds the lazily computed, shared inputs of one Assemble call.
type session struct {
	a   *Assembler
	in  Input
	out *interfaces.ParserOutput

	decorated     bool
	decoration    *interfaces.Decoration
	decorationErr error

	categoriesLoaded bool
	categoryInfos    map[string]interfaces.CategoryInfo
	categoriesErr    error
}

// decorate runs the skin pass at most once per session.
func (s *session) decorate(ctx context.Context) (*interfaces.Decoration, error) {
	if s.decorated {
		return s.decoration, s.decorationErr
	}
	s.decorated = true

	if s.a.decorator == nil || !s.a.decorator.HasSkin(s.in.Skin) {
		s.decorationErr = apierrors.UnknownSkin(s.in.Skin)
		return nil, s.decorationErr
	}
	infos, err := s.categories(ctx)
	if err != nil {
		s.decorationErr = err
		return nil, err
	}
	s.decoration, s.decorationErr = s.a.decorator.Decorate(ctx, interfaces.DecorationRequest{
		Skin:          s.in.Skin,
		Title:         s.in.Title.PrefixedText(),
		Namespace:     s.in.Title.Namespace,
		PageID:        s.in.PageID,
		RevID:         s.in.RevID,
		Output:        s.out,
		ContentModel:  s.in.Model,
		CategoryInfos: infos,
	})
	if s.decorationErr == nil {
		s.a.logger.Debug("assembler: page decorated", "skin", s.decoration.Skin, "title", s.in.Title.PrefixedText())
	}
	return s.decoration, s.decorationErr
}

// categories loads existence and hidden flags for every category in one batch.
func (s *session) categories(ctx context.Context) (map[string]interfaces.CategoryInfo, error) {
	if s.categoriesLoaded {
		return s.categoryInfos, s.categoriesErr
	}
	s.categoriesLoaded = true
	s.categoryInfos = map[string]interfaces.CategoryInfo{}
	if s.a.pages == nil || len(s.out.Categories) == 0 {
		return s.categoryInfos, nil
	}
	names := make([]string, 0, len(s.out.Categories))
	for _, c := range s.out.Categories {
		names = append(names, c.Name)
	}
	infos, err := s.a.pages.Categories(ctx, names)
	if err != nil {
		s.categoriesErr = err
		return nil, err
	}
	s.categoryInfos = infos
	return infos, nil
}

// linkEntries resolves existence of all targets with a single lookup.
func (s *session) linkEntries(ctx context.Context, targets []interfaces.LinkTarget) ([]LinkEntry, error) {
	out := make([]LinkEntry, 0, len(targets))
	if len(targets) == 0 {
		return out, nil
	}
	prefixed := make([]string, len(targets))
	for i, target := range targets {
		prefixed[i] = titles.Title{Namespace: target.Namespace, Text: target.Title}.PrefixedText()
	}
	existing := map[string]int64{}
	if s.a.pages != nil {
		found, err := s.a.pages.LinkExistence(ctx, prefixed)
		if err != nil {
			return nil, err
		}
		existing = found
	}
	for i, target := range targets {
		_, exists := existing[prefixed[i]]
		out = append(out, LinkEntry{NS: target.Namespace, Title: prefixed[i], Exists: exists})
	}
	return out, nil
}

func (s *session) headItems(ctx context.Context) ([]interfaces.HeadItem, error) {
	if !s.in.UseSkin {
		return s.out.HeadItems, nil
	}
	dec, err := s.decorate(ctx)
	if err != nil {
		return nil, err
	}
	return dec.HeadItems, nil
}

func (s *session) modules(ctx context.Context) ([]string, []string, error) {
	if !s.in.UseSkin {
		return nonNil(s.out.Modules), nonNil(s.out.ModuleStyles), nil
	}
	dec, err := s.decorate(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nonNil(dec.Modules), nonNil(dec.ModuleStyles), nil
}

func (s *session) jsConfigVars(ctx context.Context) (map[string]any, error) {
	vars := s.out.JSConfigVars
	if s.in.UseSkin {
		dec, err := s.decorate(ctx)
		if err != nil {
			return nil, err
		}
		vars = dec.JSConfigVars
	}
	if vars == nil {
		vars = map[string]any{}
	}
	return vars, nil
}

func (s *session) indicators(ctx context.Context) ([]interfaces.Indicator, error) {
	if !s.in.UseSkin {
		return s.out.Indicators, nil
	}
	dec, err := s.decorate(ctx)
	if err != nil {
		return nil, err
	}
	return dec.Indicators, nil
}

func (s *session) languageLinks(ctx context.Context) ([]string, error) {
	if s.in.UseSkin {
		dec, err := s.decorate(ctx)
		if err != nil {
			return nil, err
		}
		return dec.LanguageLinks, nil
	}
	if s.a.langLinks != nil {
		return s.a.langLinks.EffectiveLanguageLinks(ctx, s.in.Title.PrefixedText(), s.out.LanguageLinks)
	}
	return s.out.LanguageLinks, nil
}

func computeLangLinks(ctx context.Context, s *session) (any, error) {
	links, err := s.languageLinks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]LangLink, 0, len(links))
	for _, link := range links {
		idx := strings.Index(link, ":")
		if idx <= 0 {
			continue
		}
		lang := strings.ToLower(strings.TrimSpace(link[:idx]))
		title := strings.TrimSpace(link[idx+1:])
		entry := LangLink{
			Lang:  lang,
			URL:   s.a.site.FullURL(titles.Title{Interwiki: lang, Text: title}),
			Title: title,
		}
		if info, ok := titles.LookupLanguage(lang); ok {
			entry.LangName = info.Name
			entry.Autonym = info.Autonym
		}
		out = append(out, entry)
	}
	return out, nil
}

func computeCategories(ctx context.Context, s *session) (any, error) {
	infos, err := s.categories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryEntry, 0, len(s.out.Categories))
	for _, c := range s.out.Categories {
		info := infos[c.Name]
		entry := CategoryEntry{SortKey: c.SortKey, Category: c.Name, Hidden: info.Hidden}
		if !info.Exists {
			entry.Missing = true
			entry.Known = info.Known
		}
		out = append(out, entry)
	}
	return out, nil
}
