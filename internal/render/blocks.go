package render

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-wikiparse/internal/content"
	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

var (
	headingPattern = regexp.MustCompile(`^(={1,6})(.+?)(={1,6})[ \t]*$`)
	boldItalic     = regexp.MustCompile(`'''''(.+?)'''''`)
	bold           = regexp.MustCompile(`'''(.+?)'''`)
	italic         = regexp.MustCompile(`''(.+?)''`)
	blockStart     = regexp.MustCompile(`(?i)^\s*</?(div|table|thead|tbody|tfoot|tr|td|th|caption|blockquote|h[1-6]|ul|ol|li|dl|dt|dd|p|center|figure|hr)\b`)
	blockMarker    = regexp.MustCompile("^\x7f'\"`UNIQ-\\d+-QINU`\"'\x7f$")
)

// sourceHeading pairs an expanded heading with the heading in the page source.
type sourceHeading struct {
	offset int
	title  string
	used   bool
}

type blockWriter struct {
	s         *wikiState
	b         strings.Builder
	para      []string
	pre       []string
	list      string
	source    []sourceHeading
	tocLevels []int
	numbers   [7]int
	headings  int
	sawFirst  bool
}

func (s *wikiState) blocks(text string) string {
	w := &blockWriter{s: s}
	for _, h := range content.Headings(s.req.Text) {
		w.source = append(w.source, sourceHeading{offset: h.Offset, title: h.Title})
	}

	for _, line := range strings.Split(text, "\n") {
		w.line(line)
	}
	w.closeAll()
	return w.b.String()
}

func (w *blockWriter) line(line string) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		w.closeAll()
	case headingPattern.MatchString(line):
		w.closeAll()
		w.heading(line)
	case strings.HasPrefix(line, "----"):
		w.closeAll()
		w.b.WriteString("<hr />\n")
		if rest := strings.TrimLeft(line, "-"); strings.TrimSpace(rest) != "" {
			w.paragraphLine(rest)
		}
	case strings.IndexAny(line[:1], "*#:;") == 0:
		w.closePara()
		w.closePre()
		w.listLine(line)
	case line[0] == ' ' && !blockStart.MatchString(line) && !blockMarker.MatchString(trimmed):
		w.closePara()
		w.closeList()
		w.pre = append(w.pre, inline(line[1:]))
	case blockStart.MatchString(line) || blockMarker.MatchString(trimmed) || trimmed == tocExplicit:
		w.closeAll()
		w.b.WriteString(inline(trimmed))
		w.b.WriteString("\n")
	default:
		w.closeList()
		w.closePre()
		w.paragraphLine(line)
	}
}

func (w *blockWriter) paragraphLine(line string) {
	w.para = append(w.para, inline(line))
}

func (w *blockWriter) closePara() {
	if len(w.para) == 0 {
		return
	}
	w.b.WriteString("<p>")
	w.b.WriteString(strings.Join(w.para, "\n"))
	w.b.WriteString("\n</p>\n")
	w.para = nil
}

func (w *blockWriter) closePre() {
	if len(w.pre) == 0 {
		return
	}
	w.b.WriteString("<pre>")
	w.b.WriteString(strings.Join(w.pre, "\n"))
	w.b.WriteString("\n</pre>\n")
	w.pre = nil
}

func (w *blockWriter) closeAll() {
	w.closePara()
	w.closePre()
	w.closeList()
}

func listOpen(c byte) string {
	switch c {
	case '*':
		return "<ul><li>"
	case '#':
		return "<ol><li>"
	case ';':
		return "<dl><dt>"
	default:
		return "<dl><dd>"
	}
}

func listClose(c byte) string {
	switch c {
	case '*':
		return "</li></ul>"
	case '#':
		return "</li></ol>"
	case ';':
		return "</dt></dl>"
	default:
		return "</dd></dl>"
	}
}

func itemTags(c byte) (string, string) {
	switch c {
	case '*', '#':
		return "</li>", "<li>"
	case ';':
		return "</dt>", "<dt>"
	default:
		return "</dd>", "<dd>"
	}
}

func (w *blockWriter) listLine(line string) {
	n := 0
	for n < len(line) && strings.IndexByte("*#:;", line[n]) >= 0 {
		n++
	}
	prefix, body := line[:n], strings.TrimSpace(line[n:])

	common := 0
	for common < len(prefix) && common < len(w.list) && prefix[common] == w.list[common] {
		common++
	}
	for i := len(w.list) - 1; i >= common; i-- {
		w.b.WriteString(listClose(w.list[i]))
	}
	if common == len(prefix) && common > 0 {
		closeItem, openItem := itemTags(prefix[common-1])
		w.b.WriteString(closeItem)
		w.b.WriteString(openItem)
	}
	for i := common; i < len(prefix); i++ {
		w.b.WriteString(listOpen(prefix[i]))
	}
	w.list = prefix
	w.b.WriteString(inline(body))
}

func (w *blockWriter) closeList() {
	if w.list == "" {
		return
	}
	for i := len(w.list) - 1; i >= 0; i-- {
		w.b.WriteString(listClose(w.list[i]))
	}
	w.b.WriteString("\n")
	w.list = ""
}

func (w *blockWriter) heading(line string) {
	m := headingPattern.FindStringSubmatch(line)
	level := len(m[1])
	if len(m[3]) < level {
		level = len(m[3])
	}
	trimmed := strings.TrimRight(line, " \t")
	raw := strings.TrimSpace(trimmed[level : len(trimmed)-level])

	s := w.s
	lineHTML := s.restore(inline(raw))
	plain := html.UnescapeString(stripTags(lineHTML))
	anchor := w.uniqueAnchor(titles.Anchor(plain))

	w.headings++
	info := interfaces.SectionInfo{
		TocLevel:   w.tocLevel(level),
		Level:      strconv.Itoa(level),
		Line:       lineHTML,
		Anchor:     anchor,
		LinkAnchor: anchor,
	}
	info.Number = w.number(info.TocLevel)

	editSection := ""
	if offset, ok := w.matchSource(plain); ok {
		info.Index = strconv.Itoa(w.sourceIndex(offset))
		info.FromTitle = strings.ReplaceAll(s.title.PrefixedText(), " ", "_")
		off := offset
		info.ByteOffset = &off
		if !s.switches["noeditsection"] {
			editSection = w.editLink(info.Index, plain)
		}
	} else {
		info.Index = "T-" + strconv.Itoa(w.headings)
	}
	s.out.Sections = append(s.out.Sections, info)

	if !w.sawFirst {
		w.sawFirst = true
		w.b.WriteString(tocMarker)
	}
	headline := element("span", inline(raw), "class", "mw-headline", "id", anchor)
	w.b.WriteString(element("h"+strconv.Itoa(level), headline+editSection) + "\n")
}

// matchSource finds the next unused source heading with the same plain text.
func (w *blockWriter) matchSource(plain string) (int, bool) {
	for i := range w.source {
		if w.source[i].used {
			continue
		}
		if w.s.r.StripSectionName(w.source[i].title) == strings.TrimSpace(plain) {
			w.source[i].used = true
			return w.source[i].offset, true
		}
	}
	return 0, false
}

func (w *blockWriter) sourceIndex(offset int) int {
	for i, h := range w.source {
		if h.offset == offset {
			return i + 1
		}
	}
	return 0
}

func (w *blockWriter) tocLevel(level int) int {
	for len(w.tocLevels) > 0 && w.tocLevels[len(w.tocLevels)-1] > level {
		w.tocLevels = w.tocLevels[:len(w.tocLevels)-1]
	}
	if len(w.tocLevels) == 0 || w.tocLevels[len(w.tocLevels)-1] < level {
		w.tocLevels = append(w.tocLevels, level)
	}
	if len(w.tocLevels) > len(w.numbers) {
		return len(w.numbers)
	}
	return len(w.tocLevels)
}

func (w *blockWriter) number(tocLevel int) string {
	w.numbers[tocLevel-1]++
	for i := tocLevel; i < len(w.numbers); i++ {
		w.numbers[i] = 0
	}
	parts := make([]string, tocLevel)
	for i := 0; i < tocLevel; i++ {
		n := w.numbers[i]
		if n == 0 {
			n = 1
		}
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

func (w *blockWriter) uniqueAnchor(anchor string) string {
	if anchor == "" {
		anchor = "section"
	}
	n := w.s.anchors[anchor]
	w.s.anchors[anchor] = n + 1
	if n == 0 {
		return anchor
	}
	return anchor + "_" + strconv.Itoa(n+1)
}

func (w *blockWriter) editLink(index, plain string) string {
	href := "/w/index.php?title=" + url.QueryEscape(w.s.title.DBKey()) + "&action=edit&section=" + index
	bracket := func(b string) string { return element("span", b, "class", "mw-editsection-bracket") }
	link := element("a", "edit", "href", href, "title", "Edit section: "+plain)
	return element("span", bracket("[")+link+bracket("]"), "class", "mw-editsection")
}

func inline(text string) string {
	text = boldItalic.ReplaceAllString(text, "<i><b>$1</b></i>")
	text = bold.ReplaceAllString(text, "<b>$1</b>")
	return italic.ReplaceAllString(text, "<i>$1</i>")
}

// tableOfContents places the table of contents at __TOC__, or before the
// first heading when there are enough sections.
func (s *wikiState) tableOfContents(text string) string {
	show := !s.switches["notoc"] && (s.switches["forcetoc"] || s.switches["tocplaced"] || len(s.out.Sections) >= 3)
	if !show || len(s.out.Sections) == 0 {
		text = strings.ReplaceAll(text, tocExplicit, "")
		return strings.ReplaceAll(text, tocMarker, "")
	}
	toc := s.renderTOC()
	s.addModule("mediawiki.toc", "mediawiki.toc.styles")
	if strings.Contains(text, tocExplicit) {
		text = strings.Replace(text, tocExplicit, toc, 1)
		text = strings.ReplaceAll(text, tocExplicit, "")
		return strings.ReplaceAll(text, tocMarker, "")
	}
	return strings.Replace(text, tocMarker, toc, 1)
}

func (s *wikiState) renderTOC() string {
	var b strings.Builder
	b.WriteString(startTag("div", "id", "toc", "class", "toc", "role", "navigation", "aria-labelledby", "mw-toc-heading"))
	b.WriteString(voidTag("input", "type", "checkbox", "role", "button", "id", "toctogglecheckbox", "class", "toctogglecheckbox", "style", "display:none"))
	b.WriteString(element("div", element("h2", "Contents", "id", "mw-toc-heading"), "class", "toctitle", "lang", "en", "dir", "ltr") + "\n<ul>\n")
	depth := 1
	for i, sec := range s.out.Sections {
		if i > 0 {
			switch {
			case sec.TocLevel > depth:
				for ; depth < sec.TocLevel; depth++ {
					b.WriteString("\n<ul>\n")
				}
			default:
				b.WriteString("</li>\n")
				for ; depth > sec.TocLevel; depth-- {
					b.WriteString("</ul>\n</li>\n")
				}
			}
		}
		entry := element("span", sec.Number, "class", "tocnumber") + " " + element("span", stripTags(sec.Line), "class", "toctext")
		b.WriteString(startTag("li", "class", fmt.Sprintf("toclevel-%d tocsection-%s", sec.TocLevel, sec.Index)))
		b.WriteString(element("a", entry, "href", "#"+sec.LinkAnchor))
	}
	b.WriteString("</li>\n")
	for ; depth > 1; depth-- {
		b.WriteString("</ul>\n</li>\n")
	}
	b.WriteString("</ul>\n</div>\n")
	return b.String()
}
