package content

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	signatureTildes = regexp.MustCompile(`~{3,5}`)
	substPageName   = regexp.MustCompile(`\{\{\s*subst:\s*(PAGENAME|FULLPAGENAME|NAMESPACE)\s*\}\}`)
	nowikiBlock     = regexp.MustCompile(`(?s)<nowiki>.*?</nowiki>`)
)

const signatureTimeLayout = "15:04, 2 January 2006 (MST)"

// PreSaveTransform expands signatures and substituted page-name magic words
// and trims trailing whitespace. Nothing inside nowiki is touched.
func (w Wikitext) PreSaveTransform(ctx PSTContext) Content {
	text := strings.ReplaceAll(w.text, "\r\n", "\n")

	var preserved []string
	text = nowikiBlock.ReplaceAllStringFunc(text, func(m string) string {
		preserved = append(preserved, m)
		return fmt.Sprintf("\x7fNOWIKI-%d\x7f", len(preserved)-1)
	})

	user := strings.TrimSpace(ctx.UserName)
	signature := fmt.Sprintf("[[User:%s|%s]]", user, user)
	timestamp := ctx.Now.UTC().Format(signatureTimeLayout)

	text = signatureTildes.ReplaceAllStringFunc(text, func(m string) string {
		switch len(m) {
		case 3:
			return signature
		case 4:
			return signature + " " + timestamp
		default:
			return timestamp
		}
	})

	text = substPageName.ReplaceAllStringFunc(text, func(m string) string {
		word := substPageName.FindStringSubmatch(m)[1]
		switch word {
		case "FULLPAGENAME":
			return ctx.Title.PrefixedText()
		case "NAMESPACE":
			return strings.TrimSuffix(strings.TrimSuffix(ctx.Title.PrefixedText(), ctx.Title.Text), ":")
		default:
			return ctx.Title.Text
		}
	})

	for i, block := range preserved {
		text = strings.Replace(text, fmt.Sprintf("\x7fNOWIKI-%d\x7f", i), block, 1)
	}
	return Wikitext{text: strings.TrimRight(text, " \t\n")}
}
