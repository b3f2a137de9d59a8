package sections

import (
	"regexp"

	"github.com/goliatone/go-wikiparse/internal/apierrors"
	"github.com/goliatone/go-wikiparse/internal/content"
)

// New is the section id that addresses a fresh insertion point.
const New = "new"

var idPattern = regexp.MustCompile(`^((T-)?\d+|new)$`)

// ParseID validates a section parameter. An empty id means "no section".
func ParseID(id string) (string, error) {
	if id == "" {
		return "", nil
	}
	if !idPattern.MatchString(id) {
		return "", apierrors.InvalidSection(id)
	}
	return id, nil
}

// IsNew reports whether id addresses a new section.
func IsNew(id string) bool {
	return id == New
}

// Extract returns the part of c addressed by id. For "new" the original body
// is discarded and only the optional header is kept, so downstream steps see
// exactly what the new section will contain. what names the source in error
// messages ("page X", "revision 5", "text").
func Extract(c content.Content, id, sectionTitle, what string) (content.Content, error) {
	sectioned, ok := c.(content.Sectioned)
	if !ok {
		return nil, apierrors.SectionNotSupported(what)
	}
	if IsNew(id) {
		fresh, err := emptyLike(sectioned)
		if err != nil {
			return nil, err
		}
		if sectionTitle != "" {
			return fresh.AddSectionHeader(sectionTitle), nil
		}
		return fresh, nil
	}
	part, found := sectioned.Section(id)
	if !found {
		return nil, apierrors.SectionNotFound(id, what)
	}
	return part, nil
}

// NewSection builds the content of a new section whose body is the caller's
// own text. It is the raw text counterpart of Extract(c, "new", ...), which
// never carries existing content over. Models without sections keep the
// body as is and drop the header.
func NewSection(body content.Content, sectionTitle string) content.Content {
	if sectionTitle == "" {
		return body
	}
	sectioned, ok := body.(content.Sectioned)
	if !ok {
		return body
	}
	return sectioned.AddSectionHeader(sectionTitle)
}

func emptyLike(c content.Sectioned) (content.Sectioned, error) {
	switch c.(type) {
	case content.Wikitext:
		return content.NewWikitext(""), nil
	default:
		return nil, apierrors.SectionNotSupported(c.Model())
	}
}
