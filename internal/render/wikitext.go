package render

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-wikiparse/internal/content"
	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// Page properties set by behaviour switches and magic words.
const (
	PropNoTOC         = "notoc"
	PropNoEditSection = "noeditsection"
	PropHiddenCat     = "hiddencat"
	PropNoIndex       = "noindex"
	PropDisplayTitle  = "displaytitle"
	PropDefaultSort   = "defaultsort"
)

const (
	markerPrefix = "\x7f'\"`UNIQ-"
	markerSuffix = "-QINU`\"'\x7f"
	tocMarker    = "\x7fTOC\x7f"
	tocExplicit  = "\x7fTOC-HERE\x7f"
)

var (
	commentPattern  = regexp.MustCompile(`(?s)<!--.*?(?:-->|$)`)
	nowikiPattern   = regexp.MustCompile(`(?is)<nowiki\s*>(.*?)(?:</nowiki\s*>|$)|<nowiki\s*/>`)
	prePattern      = regexp.MustCompile(`(?is)<pre(\s[^>]*)?>(.*?)(?:</pre\s*>|$)`)
	markerPattern   = regexp.MustCompile("\x7f'\"`UNIQ-(\\d+)-QINU`\"'\x7f")
	switchPattern   = regexp.MustCompile(`__(NOTOC|FORCETOC|TOC|NOEDITSECTION|HIDDENCAT|NOINDEX|INDEX|NEWSECTIONLINK|NONEWSECTIONLINK)__`)
	indicatorTag    = regexp.MustCompile(`(?is)<indicator\s+name\s*=\s*"([^"]*)"\s*>(.*?)</indicator\s*>`)
	whitespaceLines = regexp.MustCompile(`\n{3,}`)
)

// wikiState carries the per-call state of one markup render.
type wikiState struct {
	r     *Renderer
	ctx   context.Context
	title titles.Title
	req   interfaces.RenderRequest
	out   *interfaces.ParserOutput

	stash []string

	expansions   int
	visited      int
	maxDepthSeen int
	includeSize  int
	argSize      int
	stack        []string

	switches map[string]bool
	seen     map[string]struct{}
	extLinks int
	anchors  map[string]int
}

func (r *Renderer) renderWikitext(ctx context.Context, title titles.Title, req interfaces.RenderRequest) (*interfaces.ParserOutput, error) {
	s := &wikiState{
		r:        r,
		ctx:      ctx,
		title:    title,
		req:      req,
		out:      &interfaces.ParserOutput{JSConfigVars: map[string]any{}},
		switches: map[string]bool{},
		seen:     map[string]struct{}{},
		anchors:  map[string]int{},
	}

	text := content.ForView(req.Text)
	text = commentPattern.ReplaceAllString(text, "")
	text = s.protect(text)

	text, err := s.expand(text, nil, 0)
	if err != nil {
		return nil, err
	}
	text = s.behaviourSwitches(text)
	text = s.protect(text)
	text = sanitizeTags(text)
	text = s.wikiLinks(text)
	text = s.indicators(text)
	text = s.externalLinks(text)
	text = s.blocks(text)
	text = s.tableOfContents(text)
	text = s.restore(text)
	text = strings.TrimSpace(whitespaceLines.ReplaceAllString(text, "\n\n"))

	if req.Options.EnableLimitReport {
		s.limitReport()
		text += "\n" + s.limitReportComment()
	}
	s.out.Text = text
	return s.out, nil
}

// hold replaces html with an opaque marker that later passes leave alone.
func (s *wikiState) hold(htmlText string) string {
	s.stash = append(s.stash, htmlText)
	return markerPrefix + strconv.Itoa(len(s.stash)-1) + markerSuffix
}

func (s *wikiState) restore(text string) string {
	for i := 0; i < 4 && strings.Contains(text, markerPrefix); i++ {
		text = markerPattern.ReplaceAllStringFunc(text, func(m string) string {
			idx, err := strconv.Atoi(markerPattern.FindStringSubmatch(m)[1])
			if err != nil || idx >= len(s.stash) {
				return ""
			}
			return s.stash[idx]
		})
	}
	return text
}

func (s *wikiState) protect(text string) string {
	text = nowikiPattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := nowikiPattern.FindStringSubmatch(m)
		return s.hold(html.EscapeString(sub[1]))
	})
	return prePattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := prePattern.FindStringSubmatch(m)
		return "\n" + s.hold(element("pre", html.EscapeString(sub[2]))) + "\n"
	})
}

func (s *wikiState) behaviourSwitches(text string) string {
	return switchPattern.ReplaceAllStringFunc(text, func(m string) string {
		name := strings.Trim(m, "_")
		switch name {
		case "NOTOC":
			s.switches["notoc"] = true
			s.setProperty(PropNoTOC, "")
		case "FORCETOC":
			s.switches["forcetoc"] = true
		case "TOC":
			if !s.switches["tocplaced"] {
				s.switches["tocplaced"] = true
				return tocExplicit
			}
		case "NOEDITSECTION":
			s.switches["noeditsection"] = true
			s.setProperty(PropNoEditSection, "")
		case "HIDDENCAT":
			s.setProperty(PropHiddenCat, "")
		case "NOINDEX":
			s.setProperty(PropNoIndex, "")
			s.addHeadItem("robots", `<meta name="robots" content="noindex,nofollow"/>`)
		case "NEWSECTIONLINK":
			s.setProperty("newsectionlink", "")
		case "NONEWSECTIONLINK":
			s.setProperty("nonewsectionlink", "")
		}
		return ""
	})
}

func (s *wikiState) indicators(text string) string {
	return indicatorTag.ReplaceAllStringFunc(text, func(m string) string {
		sub := indicatorTag.FindStringSubmatch(m)
		name := strings.TrimSpace(sub[1])
		if name == "" {
			s.warn("indicator without a name ignored")
			return ""
		}
		body := s.restore(strings.TrimSpace(sub[2]))
		for i, ind := range s.out.Indicators {
			if ind.Name == name {
				s.out.Indicators[i].HTML = body
				return ""
			}
		}
		s.out.Indicators = append(s.out.Indicators, interfaces.Indicator{Name: name, HTML: body})
		return ""
	})
}

func (s *wikiState) setProperty(name, value string) {
	for i, prop := range s.out.Properties {
		if prop.Name == name {
			s.out.Properties[i].Value = value
			return
		}
	}
	s.out.Properties = append(s.out.Properties, interfaces.Property{Name: name, Value: value})
}

func (s *wikiState) addHeadItem(tag, htmlText string) {
	for _, item := range s.out.HeadItems {
		if item.Tag == tag {
			return
		}
	}
	s.out.HeadItems = append(s.out.HeadItems, interfaces.HeadItem{Tag: tag, Content: htmlText})
}

func (s *wikiState) addModule(module, style string) {
	if !contains(s.out.Modules, module) {
		s.out.Modules = append(s.out.Modules, module)
	}
	if style != "" && !contains(s.out.ModuleStyles, style) {
		s.out.ModuleStyles = append(s.out.ModuleStyles, style)
	}
}

func (s *wikiState) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !contains(s.out.Warnings, msg) {
		s.out.Warnings = append(s.out.Warnings, msg)
	}
}

// once reports whether key has not been recorded yet, and records it.
func (s *wikiState) once(key string) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

func (s *wikiState) limitReport() {
	s.out.LimitReport = []interfaces.LimitReportEntry{
		{Name: "limitreport-ppvisitednodes", Values: []any{s.visited, 1000000}},
		{Name: "limitreport-postexpandincludesize", Values: []any{s.includeSize, DefaultMaxIncludeLen}},
		{Name: "limitreport-templateargumentsize", Values: []any{s.argSize, DefaultMaxIncludeLen}},
		{Name: "limitreport-expansiondepth", Values: []any{s.maxDepthSeen, s.r.maxDepth}},
		{Name: "limitreport-templateexpansions", Values: []any{s.expansions, s.r.maxExpansions}},
	}
}

func (s *wikiState) limitReportComment() string {
	var b strings.Builder
	b.WriteString("<!-- \nNewPP limit report\n")
	labels := map[string]string{
		"limitreport-ppvisitednodes":        "Preprocessor visited node count",
		"limitreport-postexpandincludesize": "Post-expand include size",
		"limitreport-templateargumentsize":  "Template argument size",
		"limitreport-expansiondepth":        "Highest expansion depth",
		"limitreport-templateexpansions":    "Template expansions",
	}
	for _, entry := range s.out.LimitReport {
		fmt.Fprintf(&b, "%s: %v/%v\n", labels[entry.Name], entry.Values[0], entry.Values[1])
	}
	b.WriteString("-->")
	return b.String()
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
