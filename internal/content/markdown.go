package content

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
)

// Markdown is content rendered through the markdown pipeline. Front matter
// keys become page properties.
type Markdown struct {
	text string
	meta map[string]any
	body string
}

func (m Markdown) Model() string     { return ModelMarkdown }
func (m Markdown) Format() string    { return FormatMarkdown }
func (m Markdown) Serialize() string { return m.text }
func (m Markdown) IsEmpty() bool     { return strings.TrimSpace(m.body) == "" }

// Body is the document without its front matter.
func (m Markdown) Body() string { return m.body }

// Meta returns a copy of the front matter.
func (m Markdown) Meta() map[string]any {
	out := make(map[string]any, len(m.meta))
	for k, v := range m.meta {
		out[k] = v
	}
	return out
}

func (m Markdown) PreSaveTransform(PSTContext) Content {
	return newMarkdownUnchecked(strings.TrimRight(m.text, " \t\r\n"))
}

// SplitFrontMatter separates a leading YAML/TOML front matter block from body.
func SplitFrontMatter(text string) (map[string]any, string, error) {
	meta := map[string]any{}
	body, err := frontmatter.Parse(strings.NewReader(text), &meta)
	if err != nil {
		return nil, "", err
	}
	return meta, string(bytes.TrimLeft(body, "\n")), nil
}

// FrontMatterProperties flattens front matter into sorted name/value pairs.
func FrontMatterProperties(meta map[string]any) [][2]string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, fmt.Sprint(meta[k])})
	}
	return out
}

func newMarkdownUnchecked(text string) Markdown {
	meta, body, err := SplitFrontMatter(text)
	if err != nil {
		return Markdown{text: text, body: text, meta: map[string]any{}}
	}
	return Markdown{text: text, meta: meta, body: body}
}

type markdownHandler struct{}

func (markdownHandler) Model() string { return ModelMarkdown }
func (markdownHandler) SupportedFormats() []string {
	return []string{FormatMarkdown, FormatPlain}
}

func (markdownHandler) Unserialize(text, _ string) (Content, error) {
	meta, body, err := SplitFrontMatter(text)
	if err != nil {
		return nil, fmt.Errorf("invalid front matter: %w", err)
	}
	return Markdown{text: text, meta: meta, body: body}, nil
}
