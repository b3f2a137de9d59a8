package titles

import (
	"errors"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrEmptyTitle   = errors.New("titles: empty title")
	ErrIllegalChars = errors.New("titles: title contains illegal characters")
	ErrTitleTooLong = errors.New("titles: title exceeds maximum length")
)

const maxTitleBytes = 255

const illegalChars = "[]{}|<>"

// Title is a parsed page name. The zero value is not a valid title.
type Title struct {
	Namespace int
	Text      string
	Interwiki string
	Fragment  string
}

// PrefixedText returns the namespace-qualified title with spaces.
func (t Title) PrefixedText() string {
	name := NamespaceName(t.Namespace)
	if name == "" {
		return t.Text
	}
	return name + ":" + t.Text
}

// FullText includes the interwiki prefix and fragment.
func (t Title) FullText() string {
	text := t.PrefixedText()
	if t.Interwiki != "" {
		text = t.Interwiki + ":" + text
	}
	if t.Fragment != "" {
		text += "#" + t.Fragment
	}
	return text
}

// DBKey is the prefixed title with underscores.
func (t Title) DBKey() string {
	return strings.ReplaceAll(t.PrefixedText(), " ", "_")
}

// IsExternal reports whether the title points at another wiki.
func (t Title) IsExternal() bool {
	return t.Interwiki != ""
}

// CanExist reports whether the title can have a page row.
func (t Title) CanExist() bool {
	return !t.IsExternal() && t.Namespace >= NSMain
}

// Equals compares local identity, ignoring fragments.
func (t Title) Equals(other Title) bool {
	return t.Namespace == other.Namespace && t.Text == other.Text && t.Interwiki == other.Interwiki
}

// BaseText returns the parent page text for subpages.
func (t Title) BaseText() (string, bool) {
	if !HasSubpages(t.Namespace) {
		return "", false
	}
	idx := strings.LastIndex(t.Text, "/")
	if idx <= 0 {
		return "", false
	}
	return t.Text[:idx], true
}

// Site knows the interwiki map and URL layout of the local wiki. It is passed
// explicitly wherever titles are parsed or linked.
type Site struct {
	Server      string
	ArticlePath string
	Interwiki   map[string]string
}

// DefaultSite returns a site with language prefixes and a couple of
// well-known interwikis.
func DefaultSite() Site {
	iw := map[string]string{
		"wikipedia": "https://en.wikipedia.org/wiki/$1",
		"commons":   "https://commons.wikimedia.org/wiki/$1",
		"mw":        "https://www.mediawiki.org/wiki/$1",
	}
	for code := range languages {
		iw[code] = "https://" + code + ".wikipedia.org/wiki/$1"
	}
	return Site{
		Server:      "http://localhost",
		ArticlePath: "/wiki/$1",
		Interwiki:   iw,
	}
}

// IsInterwiki reports whether prefix is a known interwiki prefix.
func (s Site) IsInterwiki(prefix string) bool {
	_, ok := s.Interwiki[strings.ToLower(strings.TrimSpace(prefix))]
	return ok
}

// IsLanguagePrefix reports whether prefix produces an interlanguage link.
func (s Site) IsLanguagePrefix(prefix string) bool {
	key := strings.ToLower(strings.TrimSpace(prefix))
	if _, ok := languages[key]; !ok {
		return false
	}
	return s.IsInterwiki(key)
}

// Parse normalises text into a Title.
func (s Site) Parse(text string) (Title, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(text, "_", " "))
	raw = strings.TrimPrefix(raw, ":")
	raw = collapseSpaces(raw)
	if raw == "" {
		return Title{}, ErrEmptyTitle
	}

	var t Title
	if idx := strings.Index(raw, "#"); idx >= 0 {
		t.Fragment = strings.TrimSpace(raw[idx+1:])
		raw = strings.TrimSpace(raw[:idx])
	}

	if idx := strings.Index(raw, ":"); idx > 0 {
		prefix := raw[:idx]
		rest := strings.TrimSpace(raw[idx+1:])
		if ns, ok := lookupNamespace(prefix); ok {
			t.Namespace = ns
			raw = rest
		} else if s.IsInterwiki(prefix) {
			t.Interwiki = strings.ToLower(strings.TrimSpace(prefix))
			raw = rest
			if idx := strings.Index(raw, ":"); idx > 0 {
				if ns, ok := lookupNamespace(raw[:idx]); ok {
					t.Namespace = ns
					raw = strings.TrimSpace(raw[idx+1:])
				}
			}
		}
	}

	if strings.ContainsAny(raw, illegalChars) {
		return Title{}, ErrIllegalChars
	}
	if raw == "" && t.Interwiki == "" {
		if t.Fragment == "" {
			return Title{}, ErrEmptyTitle
		}
	}
	if len(raw) > maxTitleBytes {
		return Title{}, ErrTitleTooLong
	}
	if t.Interwiki == "" {
		raw = ucfirst(raw)
	}
	t.Text = raw
	return t, nil
}

// MustParse parses text and panics on failure. Intended for tests and constants.
func (s Site) MustParse(text string) Title {
	t, err := s.Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

// LocalURL returns the article path for t.
func (s Site) LocalURL(t Title) string {
	path := s.ArticlePath
	if path == "" {
		path = "/wiki/$1"
	}
	out := strings.ReplaceAll(path, "$1", escapeDBKey(t.DBKey()))
	if t.Fragment != "" {
		out += "#" + Anchor(t.Fragment)
	}
	return out
}

// FullURL returns an absolute URL for t, using the interwiki map for external titles.
func (s Site) FullURL(t Title) string {
	if t.IsExternal() {
		pattern := s.Interwiki[t.Interwiki]
		out := strings.ReplaceAll(pattern, "$1", escapeDBKey(t.DBKey()))
		if t.Fragment != "" {
			out += "#" + Anchor(t.Fragment)
		}
		return out
	}
	return strings.TrimRight(s.Server, "/") + s.LocalURL(t)
}

// Anchor converts heading text into an HTML id.
func Anchor(text string) string {
	return strings.ReplaceAll(strings.TrimSpace(text), " ", "_")
}

func escapeDBKey(key string) string {
	escaped := url.PathEscape(key)
	return strings.NewReplacer("%3A", ":", "%2F", "/").Replace(escaped)
}

func ucfirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
