package apierrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidParameterCombination = errors.New("wikiparse: invalid parameter combination")
	ErrInvalidSection              = errors.New("wikiparse: invalid section")
	ErrInvalidTitle                = errors.New("wikiparse: invalid title")
	ErrBadValue                    = errors.New("wikiparse: bad parameter value")
	ErrRevisionNotFound            = errors.New("wikiparse: revision not found")
	ErrPageNotFound                = errors.New("wikiparse: page not found")
	ErrMissingContent              = errors.New("wikiparse: content missing")
	ErrPermissionDenied            = errors.New("wikiparse: permission denied")
	ErrContentSerialization        = errors.New("wikiparse: content serialization failed")
	ErrSectionNotFound             = errors.New("wikiparse: section not found")
	ErrSectionNotSupported         = errors.New("wikiparse: sections not supported")
	ErrUnsupportedContentModel     = errors.New("wikiparse: unsupported content model")
	ErrConcurrencyLimitExceeded    = errors.New("wikiparse: concurrency limit exceeded")
	ErrUnknownSkin                 = errors.New("wikiparse: unknown skin")
	ErrParseFailed                 = errors.New("wikiparse: parse failed")
)

// Stable error codes surfaced to API consumers.
const (
	CodeInvalidParamMix      = "invalidparammix"
	CodeInvalidSection       = "invalidsection"
	CodeInvalidTitle         = "invalidtitle"
	CodeBadValue             = "badvalue"
	CodeNoSuchRevID          = "nosuchrevid"
	CodeMissingTitle         = "missingtitle"
	CodeMissingContentRevID  = "missingcontent-revid"
	CodeMissingContentPageID = "missingcontent-pageid"
	CodePermissionDenied     = "permissiondenied"
	CodeParseError           = "parseerror"
	CodeNoSuchSection        = "nosuchsection"
	CodeSectionsNotSupported = "sectionsnotsupported"
	CodeNotWikitext          = "notwikitext"
	CodeConcurrencyLimit     = "concurrency-limit"
	CodeUnknownSkin          = "unknownskin"
	CodeInternal             = "internal"
)

// Permission denial reasons.
const (
	ReasonRead        = "read"
	ReasonDeletedText = "deletedtext"
)

// Error is the single error type produced by the parse core. Kind is one of
// the sentinel errors above so callers can use errors.Is.
type Error struct {
	Kind      error
	Code      string
	Message   string
	Params    []any
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e == nil {
		return ErrParseFailed.Error()
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

func newError(kind error, code, message string, params ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Params: params}
}

// InvalidParameterCombination reports that more than one of params was supplied.
func InvalidParameterCombination(params ...string) *Error {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}
	msg := "the parameters " + strings.Join(params, ", ") + " can not be used together"
	return newError(ErrInvalidParameterCombination, CodeInvalidParamMix, msg, args...)
}

// NewSectionWithPage reports section=new combined with a page selector.
func NewSectionWithPage() *Error {
	return newError(ErrInvalidParameterCombination, CodeInvalidParamMix,
		"section=new cannot be combined with the page, pageid or oldid parameters")
}

func InvalidSection(section string) *Error {
	return newError(ErrInvalidSection, CodeInvalidSection,
		"the section parameter must be a valid section ID or \"new\"", section)
}

func InvalidTitle(title string) *Error {
	return newError(ErrInvalidTitle, CodeInvalidTitle, fmt.Sprintf("bad title %q", title), title)
}

func BadValue(param string, cause error) *Error {
	e := newError(ErrBadValue, CodeBadValue, fmt.Sprintf("unrecognized value for parameter %q", param), param)
	e.Cause = cause
	return e
}

func RevisionNotFound(revID int64) *Error {
	return newError(ErrRevisionNotFound, CodeNoSuchRevID, fmt.Sprintf("there is no revision with ID %d", revID), revID)
}

func PageNotFound(title string) *Error {
	return newError(ErrPageNotFound, CodeMissingTitle, "the page you specified doesn't exist", title)
}

func MissingRevisionContent(revID int64) *Error {
	return newError(ErrMissingContent, CodeMissingContentRevID,
		fmt.Sprintf("the content for revision %d is missing", revID), revID)
}

func MissingPageContent(pageID int64) *Error {
	return newError(ErrMissingContent, CodeMissingContentPageID,
		fmt.Sprintf("the content for page %d is missing", pageID), pageID)
}

// PermissionDenied distinguishes a missing read right from deleted-text visibility.
func PermissionDenied(reason string) *Error {
	var msg string
	switch reason {
	case ReasonDeletedText:
		msg = "you don't have permission to view deleted revision text"
	default:
		msg = "you don't have permission to read this page"
	}
	return newError(ErrPermissionDenied, CodePermissionDenied, msg, reason)
}

func ContentSerialization(cause error) *Error {
	e := newError(ErrContentSerialization, CodeParseError, "content serialization failed")
	e.Cause = cause
	return e
}

func SectionNotFound(section, what string) *Error {
	return newError(ErrSectionNotFound, CodeNoSuchSection,
		fmt.Sprintf("there is no section %s in %s", section, what), section, what)
}

func SectionNotSupported(what string) *Error {
	return newError(ErrSectionNotSupported, CodeSectionsNotSupported,
		fmt.Sprintf("sections are not supported for %s", what), what)
}

func UnsupportedContentModel(model string) *Error {
	return newError(ErrUnsupportedContentModel, CodeNotWikitext,
		fmt.Sprintf("parsetree is only supported for wikitext content, got %q", model), model)
}

// ConcurrencyLimit is the only retryable error kind.
func ConcurrencyLimit(key string, cause error) *Error {
	e := newError(ErrConcurrencyLimitExceeded, CodeConcurrencyLimit,
		"you've exceeded your rate limit, please wait some time and try again", key)
	e.Retryable = true
	e.Cause = cause
	return e
}

func UnknownSkin(name string) *Error {
	return newError(ErrUnknownSkin, CodeUnknownSkin, fmt.Sprintf("unknown skin %q", name), name)
}

// ParseFailed wraps an error raised by the renderer.
func ParseFailed(cause error) *Error {
	e := newError(ErrParseFailed, CodeInternal, "parse failed")
	e.Cause = cause
	return e
}

// IsRetryable reports whether err signals transient overload.
func IsRetryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return false
}

// Code returns the stable code attached to err, "internal" for foreign errors.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Code != "" {
		return apiErr.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return CodeInternal
}
