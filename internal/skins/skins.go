package skins

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-wikiparse/internal/apierrors"
	"github.com/goliatone/go-wikiparse/internal/hooks"
	"github.com/goliatone/go-wikiparse/internal/logging"
	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// DefaultSkin is used when a request does not name one.
const DefaultSkin = "vector"

var (
	ErrSkinNameRequired = errors.New("skins: name required")
	ErrSkinExists       = errors.New("skins: skin already registered")
	ErrTemplateInvalid  = errors.New("skins: template invalid")
)

// Skin describes the page chrome added around parser output. Empty templates
// fall back to the built-in ones.
type Skin struct {
	Name               string
	HeadTemplate       string
	CategoriesTemplate string
	SubtitleTemplate   string
	Modules            []string
	ModuleStyles       []string
	JSConfigVars       map[string]any
}

type compiledSkin struct {
	skin       Skin
	head       *pongo2.Template
	categories *pongo2.Template
	subtitle   *pongo2.Template
}

// OutputPageContext is handed to MakeOutputPage handlers after decoration.
type OutputPageContext struct {
	Request    interfaces.DecorationRequest
	Decoration *interfaces.Decoration
}

// LanguageLinksContext is handed to LanguageLinks handlers.
type LanguageLinksContext struct {
	Title string
	Links []string
}

// Registry holds the installed skins and implements interfaces.Decorator.
type Registry struct {
	site        titles.Site
	defaultSkin string
	logger      interfaces.Logger

	outputPage *hooks.Registry[*OutputPageContext]
	langLinks  *hooks.Registry[*LanguageLinksContext]

	mu    sync.RWMutex
	skins map[string]*compiledSkin
}

var _ interfaces.Decorator = (*Registry)(nil)

// Option customises a Registry.
type Option func(*Registry)

func WithDefaultSkin(name string) Option {
	return func(r *Registry) {
		if key := NormalizeKey(name); key != "" {
			r.defaultSkin = key
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithOutputPageHooks(reg *hooks.Registry[*OutputPageContext]) Option {
	return func(r *Registry) {
		if reg != nil {
			r.outputPage = reg
		}
	}
}

func WithLanguageLinksHooks(reg *hooks.Registry[*LanguageLinksContext]) Option {
	return func(r *Registry) {
		if reg != nil {
			r.langLinks = reg
		}
	}
}

// NewRegistry returns a registry with the built-in skins installed.
func NewRegistry(site titles.Site, opts ...Option) *Registry {
	r := &Registry{
		site:        site,
		defaultSkin: DefaultSkin,
		logger:      logging.NoOp(),
		outputPage:  hooks.NewRegistry[*OutputPageContext](hooks.MakeOutputPage),
		langLinks:   hooks.NewRegistry[*LanguageLinksContext](hooks.LanguageLinks),
		skins:       map[string]*compiledSkin{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	for _, s := range builtinSkins() {
		if err := r.Register(s); err != nil {
			panic(fmt.Sprintf("skins: builtin %q: %v", s.Name, err))
		}
	}
	return r
}

func builtinSkins() []Skin {
	return []Skin{
		{
			Name:         "vector",
			Modules:      []string{"skins.vector.js"},
			ModuleStyles: []string{"skins.vector.styles"},
		},
		{
			Name:         "monobook",
			ModuleStyles: []string{"skins.monobook.styles"},
		},
		{
			Name:         "minerva",
			Modules:      []string{"skins.minerva.scripts"},
			ModuleStyles: []string{"skins.minerva.base.styles"},
		},
		{
			Name: "apioutput",
		},
	}
}

// NormalizeKey lower-cases and trims a skin name. "default" maps to the
// empty key, which selects the registry default.
func NormalizeKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "default" {
		return ""
	}
	return key
}

// OutputPageHooks exposes the MakeOutputPage extension point.
func (r *Registry) OutputPageHooks() *hooks.Registry[*OutputPageContext] {
	return r.outputPage
}

// LanguageLinksHooks exposes the LanguageLinks extension point.
func (r *Registry) LanguageLinksHooks() *hooks.Registry[*LanguageLinksContext] {
	return r.langLinks
}

// Register compiles and installs a skin.
func (r *Registry) Register(s Skin) error {
	key := NormalizeKey(s.Name)
	if key == "" {
		return ErrSkinNameRequired
	}
	compiled, err := compile(s)
	if err != nil {
		return err
	}
	compiled.skin.Name = key

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.skins[key]; ok {
		return ErrSkinExists
	}
	r.skins[key] = compiled
	return nil
}

func compile(s Skin) (*compiledSkin, error) {
	parse := func(src, fallback string) (*pongo2.Template, error) {
		if strings.TrimSpace(src) == "" {
			src = fallback
		}
		tpl, err := pongo2.FromString(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTemplateInvalid, err)
		}
		return tpl, nil
	}
	head, err := parse(s.HeadTemplate, defaultHeadTemplate)
	if err != nil {
		return nil, err
	}
	categories, err := parse(s.CategoriesTemplate, defaultCategoriesTemplate)
	if err != nil {
		return nil, err
	}
	subtitle, err := parse(s.SubtitleTemplate, defaultSubtitleTemplate)
	if err != nil {
		return nil, err
	}
	return &compiledSkin{skin: s, head: head, categories: categories, subtitle: subtitle}, nil
}

// Installed lists registered skin names in order.
func (r *Registry) Installed() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.skins))
	for name := range r.skins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Default returns the name used for requests without a skin.
func (r *Registry) Default() string {
	return r.defaultSkin
}

func (r *Registry) HasSkin(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

func (r *Registry) lookup(name string) (*compiledSkin, bool) {
	key := NormalizeKey(name)
	if key == "" {
		key = r.defaultSkin
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skins[key]
	return s, ok
}

// Decorate renders the page chrome for req.Output.
func (r *Registry) Decorate(ctx context.Context, req interfaces.DecorationRequest) (*interfaces.Decoration, error) {
	compiled, ok := r.lookup(req.Skin)
	if !ok {
		return nil, apierrors.UnknownSkin(req.Skin)
	}
	out := req.Output
	if out == nil {
		out = &interfaces.ParserOutput{}
	}
	title, err := r.site.Parse(req.Title)
	if err != nil {
		return nil, apierrors.InvalidTitle(req.Title)
	}

	dec := &interfaces.Decoration{
		Skin:         compiled.skin.Name,
		HeadItems:    append([]interfaces.HeadItem(nil), out.HeadItems...),
		Modules:      union(out.Modules, compiled.skin.Modules),
		ModuleStyles: union(out.ModuleStyles, compiled.skin.ModuleStyles),
		JSConfigVars: map[string]any{},
		Indicators:   append([]interfaces.Indicator(nil), out.Indicators...),
	}
	for k, v := range out.JSConfigVars {
		dec.JSConfigVars[k] = v
	}
	for k, v := range compiled.skin.JSConfigVars {
		dec.JSConfigVars[k] = v
	}
	dec.JSConfigVars["skin"] = compiled.skin.Name
	dec.JSConfigVars["wgPageName"] = title.DBKey()
	dec.JSConfigVars["wgTitle"] = title.Text
	dec.JSConfigVars["wgNamespaceNumber"] = title.Namespace
	if req.RevID > 0 {
		dec.JSConfigVars["wgCurRevisionId"] = req.RevID
	}

	links, err := r.EffectiveLanguageLinks(ctx, title.PrefixedText(), out.LanguageLinks)
	if err != nil {
		return nil, err
	}
	dec.LanguageLinks = links

	if dec.HeadHTML, err = r.renderHead(compiled, title, out, dec); err != nil {
		return nil, err
	}
	if dec.CategoriesHTML, err = r.renderCategories(compiled, out.Categories, req.CategoryInfos); err != nil {
		return nil, err
	}
	if dec.Subtitle, err = r.renderSubtitle(compiled, title); err != nil {
		return nil, err
	}

	if _, err := r.outputPage.Run(ctx, &OutputPageContext{Request: req, Decoration: dec}); err != nil {
		return nil, err
	}
	r.logger.Debug("page decorated", "skin", dec.Skin, "title", title.PrefixedText())
	return dec, nil
}

// EffectiveLanguageLinks runs the LanguageLinks handlers over links.
func (r *Registry) EffectiveLanguageLinks(ctx context.Context, title string, links []string) ([]string, error) {
	c := &LanguageLinksContext{Title: title, Links: append([]string(nil), links...)}
	if _, err := r.langLinks.Run(ctx, c); err != nil {
		return nil, err
	}
	return c.Links, nil
}

func (r *Registry) renderHead(s *compiledSkin, title titles.Title, out *interfaces.ParserOutput, dec *interfaces.Decoration) (string, error) {
	pageTitle := stripTags(out.DisplayTitle)
	if pageTitle == "" {
		pageTitle = html.EscapeString(title.PrefixedText())
	}
	items := make([]string, 0, len(dec.HeadItems))
	for _, item := range dec.HeadItems {
		items = append(items, item.Content)
	}
	return s.head.Execute(pongo2.Context{
		"lang":      "en",
		"pagetitle": pongo2.AsSafeValue(pageTitle),
		"headitems": items,
		"styles":    dec.ModuleStyles,
		"skin":      dec.Skin,
		"namespace": title.Namespace,
		"bodyclass": strings.ReplaceAll(title.DBKey(), ":", "_"),
	})
}

func (r *Registry) renderCategories(s *compiledSkin, cats []interfaces.CategoryLink, infos map[string]interfaces.CategoryInfo) (string, error) {
	var normal, hidden []map[string]any
	for _, c := range cats {
		t := titles.Title{Namespace: titles.NSCategory, Text: strings.ReplaceAll(c.Name, "_", " ")}
		info := infos[c.Name]
		entry := map[string]any{
			"url":     r.site.LocalURL(t),
			"title":   t.PrefixedText(),
			"label":   t.Text,
			"missing": !info.Exists && !info.Known,
		}
		if info.Hidden {
			hidden = append(hidden, entry)
		} else {
			normal = append(normal, entry)
		}
	}
	normalLabel := "Category"
	if len(normal) > 1 {
		normalLabel = "Categories"
	}
	hiddenLabel := "Hidden category"
	if len(hidden) > 1 {
		hiddenLabel = "Hidden categories"
	}
	return s.categories.Execute(pongo2.Context{
		"normal":        normal,
		"hidden":        hidden,
		"normallabel":   normalLabel,
		"hiddenlabel":   hiddenLabel,
		"categoriesurl": r.site.LocalURL(titles.Title{Namespace: titles.NSSpecial, Text: "Categories"}),
	})
}

func (r *Registry) renderSubtitle(s *compiledSkin, title titles.Title) (string, error) {
	var parents []map[string]any
	if _, ok := title.BaseText(); ok {
		parts := strings.Split(title.Text, "/")
		for i := 1; i < len(parts); i++ {
			t := titles.Title{Namespace: title.Namespace, Text: strings.Join(parts[:i], "/")}
			label := parts[i-1]
			if i == 1 {
				label = t.PrefixedText()
			}
			parents = append(parents, map[string]any{
				"url":   r.site.LocalURL(t),
				"title": t.PrefixedText(),
				"label": label,
			})
		}
	}
	return s.subtitle.Execute(pongo2.Context{"parents": parents})
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func stripTags(text string) string {
	var b strings.Builder
	in := false
	for _, r := range text {
		switch {
		case r == '<':
			in = true
		case r == '>':
			in = false
		case !in:
			b.WriteRune(r)
		}
	}
	return b.String()
}
