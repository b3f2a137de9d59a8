package assembler

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const projectionRoot = "wikiparse-projection-root"

func computeText(ctx context.Context, s *session) (any, error) {
	text, err := projectText(s.out.Text, s.in.Text)
	if err != nil {
		return nil, err
	}
	tc := &TextContext{Title: s.in.Title, Output: s.out, HTML: text}
	if _, err := s.a.beforeHTML.Run(ctx, tc); err != nil {
		return nil, err
	}
	return tc.HTML, nil
}

// projectText applies the text options to rendered HTML. The document is only
// parsed when an option actually changes something.
func projectText(text string, opts TextOptions) (string, error) {
	dropTOC := opts.DisableTOC && strings.Contains(text, `id="toc"`)
	dropEdit := opts.DisableEditSection && strings.Contains(text, "mw-editsection")
	dedup := !opts.DisableStyleDeduplication && strings.Count(text, "data-mw-deduplicate") > 1
	if !dropTOC && !dropEdit && !dedup {
		return text, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div id="` + projectionRoot + `">` + text + `</div>`))
	if err != nil {
		return "", fmt.Errorf("assembler: parse text: %w", err)
	}
	root := doc.Find("#" + projectionRoot)

	if dropTOC {
		root.Find("#toc").Remove()
	}
	if dropEdit {
		root.Find(".mw-editsection").Remove()
	}
	if dedup {
		seen := map[string]bool{}
		root.Find("style[data-mw-deduplicate]").Each(func(_ int, sel *goquery.Selection) {
			key, _ := sel.Attr("data-mw-deduplicate")
			if !seen[key] {
				seen[key] = true
				return
			}
			sel.ReplaceWithHtml(`<link rel="mw-deduplicated-inline-style" href="mw-data:` + html.EscapeString(key) + `"/>`)
		})
	}
	return root.Html()
}
