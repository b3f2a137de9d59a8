package render

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-wikiparse/internal/titles"
)

var (
	autoComment  = regexp.MustCompile(`/\*\s*(.*?)\s*\*/`)
	commentLink  = regexp.MustCompile(`\[\[:?([^\[\]|]+)(?:\|([^\[\]]*))?\]\]`)
	sectionLink  = regexp.MustCompile(`\[\[:?(?:[^\[\]|]*\|)?([^\[\]|]*)\]\]`)
	sectionExt   = regexp.MustCompile(`\[(?:https?:)?//[^\s\]]+(?:\s+([^\]]*))?\]`)
	sectionQuote = regexp.MustCompile(`'{2,5}`)
)

// FormatComment renders an edit summary: autocomment section markers become
// section links and [[links]] become anchors. The rest is escaped.
func (r *Renderer) FormatComment(comment, title string, local bool) string {
	page, pageErr := r.site.Parse(title)
	escaped := html.EscapeString(comment)

	escaped = autoComment.ReplaceAllStringFunc(escaped, func(m string) string {
		section := autoComment.FindStringSubmatch(m)[1]
		anchor := titles.Anchor(r.StripSectionName(html.UnescapeString(section)))
		href := "#" + anchor
		if !local && pageErr == nil {
			href = r.site.LocalURL(page) + "#" + anchor
		}
		link := element("a", "\u2192\u200e"+section, "href", href)
		return element("span", element("span", link+": ", "class", "autocomment"), "dir", "auto")
	})

	return commentLink.ReplaceAllStringFunc(escaped, func(m string) string {
		sub := commentLink.FindStringSubmatch(m)
		target := html.UnescapeString(sub[1])
		t, err := r.site.Parse(target)
		if err != nil {
			return m
		}
		label := sub[2]
		if label == "" {
			label = sub[1]
		}
		href := r.site.LocalURL(t)
		if t.IsExternal() {
			href = r.site.FullURL(t)
		}
		return element("a", label, "href", href, "title", t.FullText())
	})
}

// StripSectionName reduces heading markup to the plain text used for
// section anchors.
func (r *Renderer) StripSectionName(text string) string {
	text = sectionLink.ReplaceAllString(text, "$1")
	text = sectionExt.ReplaceAllString(text, "$1")
	text = sectionQuote.ReplaceAllString(text, "")
	text = stripTags(text)
	return strings.TrimSpace(html.UnescapeString(text))
}
