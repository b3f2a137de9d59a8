package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"

	"github.com/goliatone/go-wikiparse/internal/content"
	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// newGoldmarkEngine builds the markdown engine. Unknown extension names are
// ignored; an empty list selects GFM, Linkify and TaskList.
func newGoldmarkEngine(names []string) goldmark.Markdown {
	opts := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithXHTML()),
	}
	if exts := collectExtensions(names); len(exts) > 0 {
		opts = append(opts, goldmark.WithExtensions(exts...))
	}
	return goldmark.New(opts...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM, extension.Linkify, extension.TaskList}
	}
	var out []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ext)
	}
	return out
}

func (r *Renderer) renderMarkdown(title titles.Title, req interfaces.RenderRequest) (*interfaces.ParserOutput, error) {
	meta, body, err := content.SplitFrontMatter(req.Text)
	if err != nil {
		meta, body = nil, req.Text
	}
	bodyOffset := 0
	if strings.HasSuffix(req.Text, body) {
		bodyOffset = len(req.Text) - len(body)
	}

	out := &interfaces.ParserOutput{JSConfigVars: map[string]any{}}
	src := []byte(body)
	doc := r.markdown.Parser().Parse(text.NewReader(src))

	seen := map[string]struct{}{}
	once := func(key string) bool {
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		return true
	}

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			out.Sections = append(out.Sections, markdownSection(node, src, bodyOffset, len(out.Sections)+1, title))
		case *ast.Link:
			r.recordMarkdownLink(out, string(node.Destination), once)
		case *ast.AutoLink:
			if dest := string(node.URL(src)); isExternalURL(dest) && once("ext:"+dest) {
				out.ExternalLinks = append(out.ExternalLinks, dest)
			}
		case *ast.Image:
			dest := string(node.Destination)
			if isExternalURL(dest) {
				if once("ext:" + dest) {
					out.ExternalLinks = append(out.ExternalLinks, dest)
				}
				break
			}
			name := dest[strings.LastIndex(dest, "/")+1:]
			if name != "" && once("img:"+name) {
				out.Images = append(out.Images, name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := r.markdown.Renderer().Render(&buf, src, doc); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	out.Text = strings.TrimSpace(buf.String())

	for _, kv := range content.FrontMatterProperties(meta) {
		switch kv[0] {
		case "title":
			out.DisplayTitle = html.EscapeString(kv[1])
			out.Properties = append(out.Properties, interfaces.Property{Name: PropDisplayTitle, Value: kv[1]})
		case "categories":
			for _, cat := range frontMatterList(meta["categories"]) {
				out.Categories = append(out.Categories, interfaces.CategoryLink{Name: strings.ReplaceAll(cat, " ", "_")})
			}
		default:
			out.Properties = append(out.Properties, interfaces.Property{Name: kv[0], Value: kv[1]})
		}
	}
	if req.Options.EnableLimitReport {
		out.LimitReport = []interfaces.LimitReportEntry{
			{Name: "limitreport-markdownbytes", Values: []any{len(src)}},
		}
	}
	return out, nil
}

func markdownSection(node *ast.Heading, src []byte, bodyOffset, index int, page titles.Title) interfaces.SectionInfo {
	line := string(node.Text(src))
	anchor := titles.Anchor(line)
	if id, ok := node.AttributeString("id"); ok {
		if b, ok := id.([]byte); ok {
			anchor = string(b)
		}
	}
	info := interfaces.SectionInfo{
		TocLevel:   node.Level,
		Level:      strconv.Itoa(node.Level),
		Line:       html.EscapeString(line),
		Number:     strconv.Itoa(index),
		Index:      strconv.Itoa(index),
		FromTitle:  strings.ReplaceAll(page.PrefixedText(), " ", "_"),
		Anchor:     anchor,
		LinkAnchor: anchor,
	}
	if lines := node.Lines(); lines.Len() > 0 {
		start := lines.At(0).Start
		offset := bodyOffset + bytes.LastIndexByte(src[:start], '\n') + 1
		info.ByteOffset = &offset
	}
	return info
}

func (r *Renderer) recordMarkdownLink(out *interfaces.ParserOutput, dest string, once func(string) bool) {
	switch {
	case dest == "" || strings.HasPrefix(dest, "#"):
	case isExternalURL(dest):
		if once("ext:" + dest) {
			out.ExternalLinks = append(out.ExternalLinks, dest)
		}
	default:
		target := strings.TrimPrefix(dest, "/wiki/")
		t, err := r.site.Parse(target)
		if err != nil || !t.CanExist() {
			return
		}
		if once(fmt.Sprintf("link:%d:%s", t.Namespace, t.Text)) {
			out.Links = append(out.Links, interfaces.LinkTarget{Namespace: t.Namespace, Title: t.Text})
		}
	}
}

func isExternalURL(dest string) bool {
	lower := strings.ToLower(dest)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "//")
}

func frontMatterList(v any) []string {
	switch list := v.(type) {
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return list
	case string:
		return []string{list}
	}
	return nil
}
