package render

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

var allowedTags = map[string]bool{
	"b": true, "i": true, "u": true, "s": true, "del": true, "ins": true, "strike": true,
	"em": true, "strong": true, "small": true, "big": true, "sub": true, "sup": true,
	"code": true, "kbd": true, "samp": true, "var": true, "tt": true, "abbr": true,
	"cite": true, "q": true, "mark": true, "span": true, "div": true, "p": true,
	"br": true, "hr": true, "blockquote": true, "center": true, "font": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "dl": true, "dt": true, "dd": true,
	"table": true, "caption": true, "thead": true, "tbody": true, "tfoot": true,
	"tr": true, "td": true, "th": true, "ruby": true, "rt": true, "rp": true,
	"indicator": true,
}

// startTag renders an opening tag. attrs are name, value pairs; values are
// escaped.
func startTag(name string, attrs ...string) string {
	return tagToken(html.StartTagToken, name, attrs).String()
}

// voidTag renders a self-closing tag such as img or input.
func voidTag(name string, attrs ...string) string {
	return tagToken(html.SelfClosingTagToken, name, attrs).String()
}

func endTag(name string) string {
	return html.Token{Type: html.EndTagToken, Data: name}.String()
}

// element wraps inner, which must already be HTML, in name.
func element(name, inner string, attrs ...string) string {
	return startTag(name, attrs...) + inner + endTag(name)
}

func tagToken(kind html.TokenType, name string, attrs []string) html.Token {
	tok := html.Token{Type: kind, Data: name}
	for i := 0; i+1 < len(attrs); i += 2 {
		tok.Attr = append(tok.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return tok
}

// sanitizeTags escapes tags outside the allow list and strips event handler
// and javascript: attributes from the rest. Text between tags is kept as is.
func sanitizeTags(text string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if !errors.Is(z.Err(), io.EOF) {
				b.WriteString(html.EscapeString(string(z.Raw())))
			}
			return b.String()
		}
		raw := string(z.Raw())
		switch tt {
		case html.TextToken:
			b.WriteString(raw)
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			if tt == html.StartTagToken {
				z.NextIsNotRawText()
			}
			tok := z.Token()
			if !allowedTags[tok.Data] {
				b.WriteString(html.EscapeString(raw))
				continue
			}
			tok.Attr = safeAttrs(tok.Attr)
			b.WriteString(tok.String())
		default:
			b.WriteString(html.EscapeString(raw))
		}
	}
}

func safeAttrs(attrs []html.Attribute) []html.Attribute {
	kept := attrs[:0]
	for _, a := range attrs {
		if strings.HasPrefix(a.Key, "on") {
			continue
		}
		if (a.Key == "href" || a.Key == "src") &&
			strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}
