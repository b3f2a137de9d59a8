package render

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/goliatone/go-wikiparse/internal/content"
	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

var (
	templateCall = regexp.MustCompile(`\{\{([^{}]*)\}\}`)
	templateArg  = regexp.MustCompile(`\{\{\{([^{}|]*)(?:\|([^{}]*))?\}\}\}`)
)

// expand resolves template arguments, magic words and transclusions from the
// innermost call outwards.
func (s *wikiState) expand(text string, args map[string]string, depth int) (string, error) {
	text = substituteArgs(text, args)
	for {
		if err := s.ctx.Err(); err != nil {
			return "", err
		}
		loc := templateCall.FindStringSubmatchIndex(text)
		if loc == nil {
			return text, nil
		}
		replacement, err := s.expandCall(text[loc[2]:loc[3]], depth)
		if err != nil {
			return "", err
		}
		text = text[:loc[0]] + replacement + text[loc[1]:]
	}
}

// substituteArgs replaces {{{name|default}}}. Unresolved arguments without a
// default are kept as literal text.
func substituteArgs(text string, args map[string]string) string {
	for templateArg.MatchString(text) {
		text = templateArg.ReplaceAllStringFunc(text, func(m string) string {
			sub := templateArg.FindStringSubmatch(m)
			name := strings.TrimSpace(sub[1])
			if v, ok := args[name]; ok {
				return v
			}
			if strings.Contains(m, "|") {
				return sub[2]
			}
			return escapeBraces(m)
		})
	}
	return text
}

func escapeBraces(text string) string {
	return strings.NewReplacer("{", "&#123;", "}", "&#125;", "|", "&#124;").Replace(text)
}

func (s *wikiState) expandCall(inner string, depth int) (string, error) {
	s.expansions++
	s.visited++
	if s.expansions > s.r.maxExpansions {
		s.warn("template expansion limit of %d exceeded", s.r.maxExpansions)
		return escapeBraces("{{" + inner + "}}"), nil
	}

	parts := splitPipes(inner)
	name := strings.TrimSpace(parts[0])
	name = strings.TrimPrefix(name, "subst:")
	name = strings.TrimPrefix(name, "safesubst:")
	if name == "" {
		return escapeBraces("{{" + inner + "}}"), nil
	}

	if out, ok := s.variable(name); ok {
		return out, nil
	}
	if idx := strings.Index(name, ":"); idx > 0 {
		fn := name[:idx]
		first := strings.TrimSpace(name[idx+1:])
		if out, ok := s.parserFunction(fn, first, parts[1:]); ok {
			return out, nil
		}
	}
	return s.transclude(name, parts[1:], depth)
}

// splitPipes splits on "|" outside of [[links]].
func splitPipes(text string) []string {
	var parts []string
	level := 0
	start := 0
	for i := 0; i < len(text); i++ {
		switch {
		case strings.HasPrefix(text[i:], "[["):
			level++
			i++
		case strings.HasPrefix(text[i:], "]]") && level > 0:
			level--
			i++
		case text[i] == '|' && level == 0:
			parts = append(parts, text[start:i])
			start = i + 1
		}
	}
	return append(parts, text[start:])
}

func (s *wikiState) variable(name string) (string, bool) {
	switch name {
	case "PAGENAME":
		return s.title.Text, true
	case "PAGENAMEE":
		return url.PathEscape(strings.ReplaceAll(s.title.Text, " ", "_")), true
	case "FULLPAGENAME":
		return s.title.PrefixedText(), true
	case "NAMESPACE":
		return titles.NamespaceName(s.title.Namespace), true
	case "NAMESPACENUMBER":
		return strconv.Itoa(s.title.Namespace), true
	case "BASEPAGENAME":
		if base, ok := s.title.BaseText(); ok {
			return base, true
		}
		return s.title.Text, true
	case "PAGEID":
		if s.req.PageID > 0 {
			return strconv.FormatInt(s.req.PageID, 10), true
		}
		return "", true
	case "REVISIONID":
		if s.req.RevID > 0 {
			return strconv.FormatInt(s.req.RevID, 10), true
		}
		return "", true
	case "!":
		return "|", true
	case "=":
		return "=", true
	}
	return "", false
}

func (s *wikiState) parserFunction(fn, first string, rest []string) (string, bool) {
	arg := func(i int) string {
		if i < len(rest) {
			return strings.TrimSpace(rest[i])
		}
		return ""
	}
	switch strings.ToLower(fn) {
	case "#if":
		if first != "" {
			return arg(0), true
		}
		return arg(1), true
	case "#ifeq":
		if first == arg(0) {
			return arg(1), true
		}
		return arg(2), true
	case "#switch":
		return switchCase(first, rest), true
	case "lc":
		return strings.ToLower(first), true
	case "uc":
		return strings.ToUpper(first), true
	case "lcfirst":
		return changeFirst(first, unicode.ToLower), true
	case "ucfirst":
		return changeFirst(first, unicode.ToUpper), true
	case "urlencode":
		return url.QueryEscape(first), true
	case "localurl", "fullurl":
		t, err := s.r.site.Parse(first)
		if err != nil {
			return "", true
		}
		if strings.EqualFold(fn, "fullurl") {
			return s.r.site.FullURL(t), true
		}
		return s.r.site.LocalURL(t), true
	case "displaytitle":
		s.out.DisplayTitle = first
		s.setProperty(PropDisplayTitle, first)
		return "", true
	case "defaultsort", "defaultsortkey":
		s.setProperty(PropDefaultSort, first)
		return "", true
	}
	return "", false
}

func switchCase(value string, cases []string) string {
	var fallback string
	matched := false
	for _, c := range cases {
		key, result, hasEq := strings.Cut(c, "=")
		key = strings.TrimSpace(key)
		if !hasEq {
			if key == value {
				matched = true
			}
			continue
		}
		if matched || key == value {
			return strings.TrimSpace(result)
		}
		if key == "#default" {
			fallback = strings.TrimSpace(result)
		}
	}
	return fallback
}

func changeFirst(text string, fn func(rune) rune) string {
	r, size := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError {
		return text
	}
	return string(fn(r)) + text[size:]
}

func (s *wikiState) transclude(name string, rawArgs []string, depth int) (string, error) {
	target := name
	if strings.HasPrefix(target, ":") {
		target = strings.TrimPrefix(target, ":")
	} else if !strings.Contains(target, ":") {
		target = "Template:" + target
	}
	t, err := s.r.site.Parse(target)
	if err != nil || t.IsExternal() || !t.CanExist() {
		return escapeBraces("{{" + name + "}}"), nil
	}
	key := t.PrefixedText()

	for _, open := range s.stack {
		if open == key {
			s.warn("template loop detected: [[%s]]", key)
			return element("span", "Template loop detected: "+s.hold(html.EscapeString(key)), "class", "error"), nil
		}
	}
	if depth+1 > s.r.maxDepth {
		s.warn("template recursion depth limit of %d exceeded", s.r.maxDepth)
		return `<span class="error">Template recursion depth limit exceeded (` + strconv.Itoa(s.r.maxDepth) + `)</span>`, nil
	}

	if s.once("tpl:" + key) {
		s.out.Templates = append(s.out.Templates, interfaces.LinkTarget{Namespace: t.Namespace, Title: t.Text})
	}

	if s.r.templates == nil {
		return "[[:" + key + "]]", nil
	}
	body, found, err := s.r.templates.Template(s.ctx, key)
	if err != nil {
		return "", err
	}
	if !found {
		return "[[:" + key + "]]", nil
	}

	args := templateArgs(rawArgs)
	for _, v := range args {
		s.argSize += len(v)
	}
	if depth+1 > s.maxDepthSeen {
		s.maxDepthSeen = depth + 1
	}

	s.stack = append(s.stack, key)
	out, err := s.expand(content.ForInclusion(body), args, depth+1)
	s.stack = s.stack[:len(s.stack)-1]
	if err != nil {
		return "", err
	}
	s.includeSize += len(out)
	if s.includeSize > DefaultMaxIncludeLen {
		s.warn("post-expand include size exceeded")
		return "", nil
	}
	return out, nil
}

func templateArgs(raw []string) map[string]string {
	args := make(map[string]string, len(raw))
	position := 0
	for _, part := range raw {
		if key, value, ok := strings.Cut(part, "="); ok && !strings.Contains(key, "[[") {
			args[strings.TrimSpace(key)] = strings.TrimSpace(value)
			continue
		}
		position++
		args[strconv.Itoa(position)] = part
	}
	return args
}
