package titles

import "strings"

// Namespace ids.
const (
	NSMedia         = -2
	NSSpecial       = -1
	NSMain          = 0
	NSTalk          = 1
	NSUser          = 2
	NSUserTalk      = 3
	NSProject       = 4
	NSProjectTalk   = 5
	NSFile          = 6
	NSFileTalk      = 7
	NSMediaWiki     = 8
	NSMediaWikiTalk = 9
	NSTemplate      = 10
	NSTemplateTalk  = 11
	NSHelp          = 12
	NSHelpTalk      = 13
	NSCategory      = 14
	NSCategoryTalk  = 15
)

var namespaceNames = map[int]string{
	NSMedia:         "Media",
	NSSpecial:       "Special",
	NSMain:          "",
	NSTalk:          "Talk",
	NSUser:          "User",
	NSUserTalk:      "User talk",
	NSProject:       "Project",
	NSProjectTalk:   "Project talk",
	NSFile:          "File",
	NSFileTalk:      "File talk",
	NSMediaWiki:     "MediaWiki",
	NSMediaWikiTalk: "MediaWiki talk",
	NSTemplate:      "Template",
	NSTemplateTalk:  "Template talk",
	NSHelp:          "Help",
	NSHelpTalk:      "Help talk",
	NSCategory:      "Category",
	NSCategoryTalk:  "Category talk",
}

var namespaceAliases = map[string]int{
	"image":      NSFile,
	"image talk": NSFileTalk,
}

// NamespaceName returns the canonical name for ns, empty for the main namespace.
func NamespaceName(ns int) string {
	return namespaceNames[ns]
}

func lookupNamespace(prefix string) (int, bool) {
	key := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(prefix, "_", " ")))
	if key == "" {
		return 0, false
	}
	for id, name := range namespaceNames {
		if name != "" && strings.ToLower(name) == key {
			return id, true
		}
	}
	if id, ok := namespaceAliases[key]; ok {
		return id, true
	}
	return 0, false
}

// HasSubpages reports whether "/" splits titles into subpages in ns.
func HasSubpages(ns int) bool {
	switch ns {
	case NSMain, NSFile, NSMediaWiki, NSCategory, NSSpecial, NSMedia:
		return false
	default:
		return true
	}
}
