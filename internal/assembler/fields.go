package assembler

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// DefaultProps is the field set used when the caller does not choose one.
var DefaultProps = []string{
	"text", "langlinks", "categories", "links", "templates", "images",
	"externallinks", "sections", "revid", "displaytitle", "iwlinks",
	"properties", "parsewarnings",
}

// ParseProps splits a pipe separated prop list. An empty list yields the
// defaults.
func ParseProps(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return append([]string(nil), DefaultProps...)
	}
	var out []string
	for _, p := range strings.Split(raw, "|") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LangLink is one interlanguage link entry.
type LangLink struct {
	Lang     string `json:"lang"`
	URL      string `json:"url"`
	LangName string `json:"langname,omitempty"`
	Autonym  string `json:"autonym,omitempty"`
	Title    string `json:"title"`
}

// CategoryEntry is one category membership entry.
type CategoryEntry struct {
	SortKey  string `json:"sortkey"`
	Category string `json:"category"`
	Missing  bool   `json:"missing,omitempty"`
	Known    bool   `json:"known,omitempty"`
	Hidden   bool   `json:"hidden,omitempty"`
}

// LinkEntry is one internal link or template entry.
type LinkEntry struct {
	NS     int    `json:"ns"`
	Title  string `json:"title"`
	Exists bool   `json:"exists"`
}

// InterwikiEntry is one interwiki link entry.
type InterwikiEntry struct {
	Prefix string `json:"prefix"`
	URL    string `json:"url"`
	Title  string `json:"title"`
}

// HeadItemEntry is one head item entry.
type HeadItemEntry struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

type computeFunc func(ctx context.Context, s *session) (any, error)

// field describes how one requested prop becomes a result entry.
type field struct {
	name       string
	tag        string
	subElement bool
	decorated  bool
	compute    computeFunc
}

// fields lists every projectable prop in result order.
var fields = []field{
	{name: "text", subElement: true, compute: computeText},
	{name: "langlinks", tag: "ll", compute: computeLangLinks},
	{name: "categories", tag: "cl", compute: computeCategories},
	{name: "categorieshtml", subElement: true, decorated: true, compute: computeCategoriesHTML},
	{name: "links", tag: "pl", compute: computeLinks},
	{name: "templates", tag: "tl", compute: computeTemplates},
	{name: "images", tag: "img", compute: computeImages},
	{name: "externallinks", tag: "el", compute: computeExternalLinks},
	{name: "sections", tag: "s", compute: computeSections},
	{name: "parsewarnings", tag: "pw", compute: computeParseWarnings},
	{name: "parsewarningshtml", tag: "pw", compute: computeParseWarningsHTML},
	{name: "displaytitle", compute: computeDisplayTitle},
	{name: "subtitle", decorated: true, compute: computeSubtitle},
	{name: "headitems", tag: "hi", compute: computeHeadItems},
	{name: "headhtml", subElement: true, decorated: true, compute: computeHeadHTML},
	{name: "modules", tag: "m", compute: computeModules},
	{name: "modulescripts", tag: "m", compute: computeModuleScripts},
	{name: "modulestyles", tag: "m", compute: computeModuleStyles},
	{name: "jsconfigvars", compute: computeJSConfigVars},
	{name: "encodedjsconfigvars", subElement: true, compute: computeEncodedJSConfigVars},
	{name: "indicators", tag: "ind", compute: computeIndicators},
	{name: "iwlinks", tag: "iw", compute: computeInterwikiLinks},
	{name: "wikitext", subElement: true, compute: computeWikitext},
	{name: "psttext", subElement: true, compute: computePSTText},
	{name: "properties", tag: "pp", compute: computeProperties},
	{name: "limitreportdata", tag: "lr", compute: computeLimitReportData},
	{name: "limitreporthtml", subElement: true, compute: computeLimitReportHTML},
	{name: "parsetree", subElement: true, compute: computeParseTree},
}

// needsDecoration reports whether any requested prop is built by the skin.
func needsDecoration(wanted map[string]bool) bool {
	for _, f := range fields {
		if f.decorated && wanted[f.name] {
			return true
		}
	}
	return false
}

func computeCategoriesHTML(ctx context.Context, s *session) (any, error) {
	dec, err := s.decorate(ctx)
	if err != nil {
		return nil, err
	}
	return dec.CategoriesHTML, nil
}

func computeLinks(ctx context.Context, s *session) (any, error) {
	return s.linkEntries(ctx, s.out.Links)
}

func computeTemplates(ctx context.Context, s *session) (any, error) {
	return s.linkEntries(ctx, s.out.Templates)
}

func computeImages(_ context.Context, s *session) (any, error) {
	return nonNil(s.out.Images), nil
}

func computeExternalLinks(_ context.Context, s *session) (any, error) {
	return nonNil(s.out.ExternalLinks), nil
}

func computeSections(_ context.Context, s *session) (any, error) {
	if s.out.Sections == nil {
		return []interfaces.SectionInfo{}, nil
	}
	return s.out.Sections, nil
}

func computeParseWarnings(_ context.Context, s *session) (any, error) {
	return nonNil(s.out.Warnings), nil
}

func computeParseWarningsHTML(_ context.Context, s *session) (any, error) {
	out := make([]string, 0, len(s.out.Warnings))
	for _, w := range s.out.Warnings {
		out = append(out, html.EscapeString(w))
	}
	return out, nil
}

func computeDisplayTitle(_ context.Context, s *session) (any, error) {
	if s.out.DisplayTitle != "" {
		return s.out.DisplayTitle, nil
	}
	return html.EscapeString(s.in.Title.PrefixedText()), nil
}

func computeSubtitle(ctx context.Context, s *session) (any, error) {
	dec, err := s.decorate(ctx)
	if err != nil {
		return nil, err
	}
	return dec.Subtitle, nil
}

func computeHeadItems(ctx context.Context, s *session) (any, error) {
	items, err := s.headItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]HeadItemEntry, 0, len(items))
	for _, item := range items {
		out = append(out, HeadItemEntry{Tag: item.Tag, Content: item.Content})
	}
	return out, nil
}

func computeHeadHTML(ctx context.Context, s *session) (any, error) {
	dec, err := s.decorate(ctx)
	if err != nil {
		return nil, err
	}
	return dec.HeadHTML, nil
}

func computeModules(ctx context.Context, s *session) (any, error) {
	modules, _, err := s.modules(ctx)
	return modules, err
}

// Script-only modules are not tracked separately; the list is always empty.
func computeModuleScripts(context.Context, *session) (any, error) {
	return []string{}, nil
}

func computeModuleStyles(ctx context.Context, s *session) (any, error) {
	_, styles, err := s.modules(ctx)
	return styles, err
}

func computeJSConfigVars(ctx context.Context, s *session) (any, error) {
	return s.jsConfigVars(ctx)
}

func computeEncodedJSConfigVars(ctx context.Context, s *session) (any, error) {
	vars, err := s.jsConfigVars(ctx)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(vars)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

func computeIndicators(ctx context.Context, s *session) (any, error) {
	indicators, err := s.indicators(ctx)
	if err != nil {
		return nil, err
	}
	kv := KeyValues{KeyName: "name"}
	for _, ind := range indicators {
		kv.Pairs = append(kv.Pairs, KeyValue{Key: ind.Name, Value: ind.HTML})
	}
	return kv, nil
}

func computeInterwikiLinks(_ context.Context, s *session) (any, error) {
	out := make([]InterwikiEntry, 0, len(s.out.InterwikiLinks))
	for _, link := range s.out.InterwikiLinks {
		target := titles.Title{Interwiki: link.Prefix, Text: link.Title}
		out = append(out, InterwikiEntry{
			Prefix: link.Prefix,
			URL:    s.a.site.FullURL(target),
			Title:  link.Title,
		})
	}
	return out, nil
}

func computeWikitext(_ context.Context, s *session) (any, error) {
	return s.in.Source, nil
}

func computePSTText(_ context.Context, s *session) (any, error) {
	if !s.in.PST {
		return nil, errSkip
	}
	return s.in.PSTText, nil
}

func computeProperties(_ context.Context, s *session) (any, error) {
	kv := KeyValues{KeyName: "name"}
	for _, prop := range s.out.Properties {
		kv.Pairs = append(kv.Pairs, KeyValue{Key: prop.Name, Value: prop.Value})
	}
	return kv, nil
}

func computeLimitReportData(_ context.Context, s *session) (any, error) {
	out := make([]LimitReportItem, 0, len(s.out.LimitReport))
	for _, entry := range s.out.LimitReport {
		out = append(out, LimitReportItem{Name: entry.Name, Values: entry.Values})
	}
	return out, nil
}

func computeLimitReportHTML(_ context.Context, s *session) (any, error) {
	return limitReportHTML(s.out.LimitReport), nil
}

func computeParseTree(ctx context.Context, s *session) (any, error) {
	if s.a.renderer == nil {
		return nil, errSkip
	}
	source := s.in.Source
	if s.in.PST {
		source = s.in.PSTText
	}
	return s.a.renderer.PreprocessToXML(ctx, s.in.Title.PrefixedText(), source)
}

// IsKnownProp reports whether name is a projectable field or one of the
// identity fields handled outside the registry.
func IsKnownProp(name string) bool {
	switch name {
	case "revid":
		return true
	}
	for _, f := range fields {
		if f.name == name {
			return true
		}
	}
	return false
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func limitReportHTML(entries []interfaces.LimitReportEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<table class="wikitable limitreport">`)
	for _, entry := range entries {
		values := make([]string, 0, len(entry.Values))
		for _, v := range entry.Values {
			values = append(values, fmt.Sprint(v))
		}
		fmt.Fprintf(&b, "<tr><th>%s</th><td>%s</td></tr>",
			html.EscapeString(entry.Name), html.EscapeString(strings.Join(values, "/")))
	}
	b.WriteString("</table>")
	return b.String()
}
