package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-wikiparse/internal/content"
)

// PreprocessToXML returns the preprocessor tree of text: templates, template
// arguments, comments, headings and ignored tags as XML elements.
func (r *Renderer) PreprocessToXML(ctx context.Context, title, text string) (string, error) {
	if _, err := r.site.Parse(title); err != nil {
		return "", fmt.Errorf("preprocess: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := &preprocessor{src: text}
	var b strings.Builder
	b.WriteString("<root>")
	p.nodes(&b, len(text), "")
	b.WriteString("</root>")
	return b.String(), nil
}

type preprocessor struct {
	src      string
	pos      int
	headings int
}

// nodes writes the tree until end or the closing token stop.
func (p *preprocessor) nodes(b *strings.Builder, end int, stop string) {
	start := p.pos
	flush := func() {
		if p.pos > start {
			escapeXML(b, p.src[start:p.pos])
		}
	}
	for p.pos < end {
		rest := p.src[p.pos:end]
		atLineStart := p.pos == 0 || p.src[p.pos-1] == '\n'
		switch {
		case stop != "" && (strings.HasPrefix(rest, stop) || (stop == "}}" && rest[0] == '|')):
			flush()
			return
		case strings.HasPrefix(rest, "<!--"):
			flush()
			closeIdx := strings.Index(rest, "-->")
			length := len(rest)
			if closeIdx >= 0 {
				length = closeIdx + 3
			}
			b.WriteString("<comment>")
			escapeXML(b, rest[:length])
			b.WriteString("</comment>")
			p.pos += length
			start = p.pos
		case hasIgnoredTag(rest):
			flush()
			tagEnd := strings.IndexByte(rest, '>') + 1
			b.WriteString("<ignore>")
			escapeXML(b, rest[:tagEnd])
			b.WriteString("</ignore>")
			p.pos += tagEnd
			start = p.pos
		case strings.HasPrefix(rest, "{{{") && p.closes(rest, 3):
			flush()
			p.pos += 3
			p.call(b, "tplarg", "}}}", end)
			start = p.pos
		case strings.HasPrefix(rest, "{{") && p.closes(rest, 2):
			flush()
			p.pos += 2
			p.call(b, "template", "}}", end)
			start = p.pos
		case atLineStart && stop == "" && strings.HasPrefix(rest, "="):
			if h, ok := headingAt(rest); ok {
				flush()
				p.headings++
				fmt.Fprintf(b, `<h level="%d" i="%d">`, h.Level, p.headings)
				escapeXML(b, rest[:h.Offset])
				b.WriteString("</h>")
				p.pos += h.Offset
				start = p.pos
				continue
			}
			p.pos++
		default:
			p.pos++
		}
	}
	flush()
}

// closes reports whether a matching closing brace run exists later in rest.
func (p *preprocessor) closes(rest string, n int) bool {
	return strings.Contains(rest[n:], strings.Repeat("}", n))
}

func (p *preprocessor) call(b *strings.Builder, element, closing string, end int) {
	fmt.Fprintf(b, "<%s><title>", element)
	p.nodes(b, end, "}}")
	b.WriteString("</title>")
	index := 1
	for p.pos < end && p.src[p.pos] == '|' {
		p.pos++
		b.WriteString("<part>")
		argStart := p.pos
		eq := p.partName(end)
		if eq >= 0 {
			b.WriteString("<name>")
			escapeXML(b, p.src[argStart:eq])
			b.WriteString("</name>=<value>")
			p.pos = eq + 1
			p.nodes(b, end, "}}")
			b.WriteString("</value>")
		} else {
			fmt.Fprintf(b, `<name index="%d"/><value>`, index)
			index++
			p.nodes(b, end, "}}")
			b.WriteString("</value>")
		}
		b.WriteString("</part>")
	}
	if strings.HasPrefix(p.src[p.pos:end], closing) {
		p.pos += len(closing)
	} else if strings.HasPrefix(p.src[p.pos:end], "}}") {
		p.pos += 2
	}
	fmt.Fprintf(b, "</%s>", element)
}

// partName returns the position of a top-level "=" in the current part.
func (p *preprocessor) partName(end int) int {
	for i := p.pos; i < end; i++ {
		switch p.src[i] {
		case '=':
			return i
		case '|', '{', '}', '[', '<', '\n':
			return -1
		}
	}
	return -1
}

func headingAt(rest string) (content.Heading, bool) {
	line := rest
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		line = rest[:idx]
	}
	hs := content.Headings(line)
	if len(hs) == 0 {
		return content.Heading{}, false
	}
	return content.Heading{Level: hs[0].Level, Title: hs[0].Title, Offset: len(line)}, true
}

var ignoredTags = []string{"<noinclude>", "</noinclude>", "<includeonly>", "</includeonly>", "<onlyinclude>", "</onlyinclude>"}

func hasIgnoredTag(rest string) bool {
	for _, tag := range ignoredTags {
		if len(rest) >= len(tag) && strings.EqualFold(rest[:len(tag)], tag) {
			return true
		}
	}
	return false
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeXML(b *strings.Builder, text string) {
	_, _ = xmlEscaper.WriteString(b, text)
}
