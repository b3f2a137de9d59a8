package titles

// Language carries the English name and the autonym of an interlanguage prefix.
type Language struct {
	Name    string
	Autonym string
}

var languages = map[string]Language{
	"ar": {"Arabic", "العربية"},
	"de": {"German", "Deutsch"},
	"en": {"English", "English"},
	"es": {"Spanish", "español"},
	"fr": {"French", "français"},
	"it": {"Italian", "italiano"},
	"ja": {"Japanese", "日本語"},
	"nl": {"Dutch", "Nederlands"},
	"pl": {"Polish", "polski"},
	"pt": {"Portuguese", "português"},
	"ru": {"Russian", "русский"},
	"sv": {"Swedish", "svenska"},
	"zh": {"Chinese", "中文"},
}

// LookupLanguage returns the language registered under code.
func LookupLanguage(code string) (Language, bool) {
	lang, ok := languages[code]
	return lang, ok
}
