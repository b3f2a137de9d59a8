package apierrors

import "fmt"

// Advisory warning codes. Warnings never abort a parse.
const (
	WarnNoContentModel    = "apiwarn-parse-nocontentmodel"
	WarnTitleWithoutText  = "apiwarn-parse-titlewithouttext"
	WarnRevIDWithoutText  = "apiwarn-parse-revidwithouttext"
	WarnRevWrongPage      = "apierror-revwrongpage"
	WarnModulesWithoutVar = "apiwarn-moduleswithoutvars"
	WarnDeprecatedParam   = "apiwarn-deprecation-parameter"
)

// Warning is an advisory message recorded on the result.
type Warning struct {
	Code   string `json:"code"`
	Params []any  `json:"params,omitempty"`
}

func (w Warning) String() string {
	if len(w.Params) == 0 {
		return w.Code
	}
	return fmt.Sprintf("%s %v", w.Code, w.Params)
}

// NewWarning builds a warning with optional parameters.
func NewWarning(code string, params ...any) Warning {
	return Warning{Code: code, Params: params}
}
