package content

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Wikitext is content in the markup model. It supports sections.
type Wikitext struct {
	text string
}

// NewWikitext wraps text in the markup model.
func NewWikitext(text string) Wikitext {
	return Wikitext{text: text}
}

func (w Wikitext) Model() string     { return ModelWikitext }
func (w Wikitext) Format() string    { return FormatWikitext }
func (w Wikitext) Serialize() string { return w.text }
func (w Wikitext) IsEmpty() bool     { return w.text == "" }

func (w Wikitext) AddSectionHeader(header string) Content {
	if strings.TrimSpace(header) == "" {
		return w
	}
	return Wikitext{text: fmt.Sprintf("== %s ==\n\n%s", header, w.text)}
}

func (w Wikitext) Section(id string) (Content, bool) {
	source := w.text
	if strings.HasPrefix(id, "T-") {
		source = ForInclusion(source)
		id = strings.TrimPrefix(id, "T-")
	}
	index, err := strconv.Atoi(id)
	if err != nil || index < 0 {
		return nil, false
	}
	text, ok := sectionText(source, index)
	if !ok {
		return nil, false
	}
	return Wikitext{text: text}, true
}

// Heading is one section heading found in markup.
type Heading struct {
	Level  int
	Title  string
	Offset int
}

var (
	maskedRegions = regexp.MustCompile(`(?s)<!--.*?(?:-->|$)|<nowiki>.*?(?:</nowiki>|$)|<pre>.*?(?:</pre>|$)`)
	headingLine   = regexp.MustCompile(`(?m)^(={1,6})(.+?)(={1,6})[ \t]*$`)
	noinclude     = regexp.MustCompile(`(?s)<noinclude>.*?(?:</noinclude>|$)`)
	includeonly   = regexp.MustCompile(`</?includeonly>`)
	onlyinclude   = regexp.MustCompile(`(?s)<onlyinclude>(.*?)</onlyinclude>`)
	includeBlock  = regexp.MustCompile(`(?s)<includeonly>.*?(?:</includeonly>|$)`)
	viewTags      = regexp.MustCompile(`</?(?:noinclude|onlyinclude)>`)
)

// Headings lists the section headings of text in order, ignoring anything
// inside comments, nowiki or pre blocks.
func Headings(text string) []Heading {
	masked := maskBytes(text)

	matches := headingLine.FindAllStringSubmatchIndex(masked, -1)
	out := make([]Heading, 0, len(matches))
	for _, m := range matches {
		open := m[3] - m[2]
		closing := m[7] - m[6]
		level := open
		if closing < level {
			level = closing
		}
		// Unbalanced "=" become part of the title.
		title := text[m[2]+level : m[7]-level]
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		out = append(out, Heading{Level: level, Title: title, Offset: m[0]})
	}
	return out
}

func maskBytes(text string) string {
	buf := []byte(text)
	for _, loc := range maskedRegions.FindAllStringIndex(text, -1) {
		for i := loc[0]; i < loc[1]; i++ {
			if buf[i] != '\n' {
				buf[i] = 'x'
			}
		}
	}
	return string(buf)
}

func sectionText(text string, index int) (string, bool) {
	headings := Headings(text)
	if index == 0 {
		end := len(text)
		if len(headings) > 0 {
			end = headings[0].Offset
		}
		return strings.TrimRight(text[:end], "\n"), true
	}
	if index > len(headings) {
		return "", false
	}
	start := headings[index-1]
	end := len(text)
	for _, h := range headings[index:] {
		if h.Level <= start.Level {
			end = h.Offset
			break
		}
	}
	return strings.TrimRight(text[start.Offset:end], "\n"), true
}

// ForInclusion returns text as seen when transcluded: noinclude blocks are
// dropped, includeonly tags unwrapped, and onlyinclude honoured when present.
func ForInclusion(text string) string {
	if parts := onlyinclude.FindAllStringSubmatch(text, -1); len(parts) > 0 {
		var b strings.Builder
		for _, p := range parts {
			b.WriteString(p[1])
		}
		text = b.String()
	}
	text = noinclude.ReplaceAllString(text, "")
	return includeonly.ReplaceAllString(text, "")
}

// ForView strips includeonly blocks and unwraps noinclude and onlyinclude tags.
func ForView(text string) string {
	text = includeBlock.ReplaceAllString(text, "")
	return viewTags.ReplaceAllString(text, "")
}
