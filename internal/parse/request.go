package parse

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-wikiparse/internal/apierrors"
	"github.com/goliatone/go-wikiparse/internal/assembler"
	"github.com/goliatone/go-wikiparse/internal/resolver"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// Request is one parse call. Field names follow the wire parameters.
type Request struct {
	Caller interfaces.Caller `json:"-"`

	// Content selection.
	Text      *string `json:"text,omitempty"`
	Title     string  `json:"title,omitempty"`
	RevID     int64   `json:"revid,omitempty"`
	Page      string  `json:"page,omitempty"`
	PageID    int64   `json:"pageid,omitempty"`
	OldID     int64   `json:"oldid,omitempty"`
	Redirects bool    `json:"redirects,omitempty"`

	Section string `json:"section,omitempty"`
	// SectionTitle is nil when the parameter was not sent. An empty title
	// still counts as sent for section=new.
	SectionTitle *string `json:"sectiontitle,omitempty"`

	ContentModel  string `json:"contentmodel,omitempty"`
	ContentFormat string `json:"contentformat,omitempty"`

	Summary *string `json:"summary,omitempty"`

	// Props selects result fields; nil means the default set.
	Props []string `json:"prop,omitempty"`

	PST     bool `json:"pst,omitempty"`
	OnlyPST bool `json:"onlypst,omitempty"`

	Preview        bool `json:"preview,omitempty"`
	SectionPreview bool `json:"sectionpreview,omitempty"`

	DisableLimitReport bool `json:"disablelimitreport,omitempty"`
	DisablePP          bool `json:"disablepp,omitempty"`

	DisableTOC                bool   `json:"disabletoc,omitempty"`
	DisableEditSection        bool   `json:"disableeditsection,omitempty"`
	DisableStyleDeduplication bool   `json:"disablestylededuplication,omitempty"`
	WrapOutputClass           string `json:"wrapoutputclass,omitempty"`

	UseSkin     string `json:"useskin,omitempty"`
	GenerateXML bool   `json:"generatexml,omitempty"`
}

// Validate checks parameter combinations first, then individual values.
func (r Request) Validate() error {
	if err := r.selector().Validate(); err != nil {
		return err
	}
	err := validation.ValidateStruct(&r,
		validation.Field(&r.RevID, validation.Min(int64(0))),
		validation.Field(&r.PageID, validation.Min(int64(0))),
		validation.Field(&r.OldID, validation.Min(int64(0))),
		validation.Field(&r.Props, validation.Each(validation.By(knownProp))),
		validation.Field(&r.SectionTitle, validation.Length(0, 255)),
		validation.Field(&r.WrapOutputClass, validation.Length(0, 255)),
	)
	return badValue(err)
}

func knownProp(value any) error {
	name, _ := value.(string)
	if !assembler.IsKnownProp(name) {
		return validation.NewError("wikiparse.parse.prop_unknown", fmt.Sprintf("unknown prop %q", name))
	}
	return nil
}

// badValue turns the first failing field, in name order, into a badvalue error.
func badValue(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return apierrors.BadValue("request", err)
	}
	names := make([]string, 0, len(fieldErrs))
	for name := range fieldErrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return apierrors.BadValue(names[0], fieldErrs[names[0]])
}

func (r Request) sectionTitle() string {
	if r.SectionTitle == nil {
		return ""
	}
	return *r.SectionTitle
}

func (r Request) props() []string {
	if r.Props == nil {
		return append([]string(nil), assembler.DefaultProps...)
	}
	return r.Props
}

func (r Request) wantsOutput() bool {
	return len(r.props()) > 0 || r.GenerateXML
}

func (r Request) selector() resolver.Selector {
	return resolver.Selector{
		Text:          r.Text,
		Title:         r.Title,
		RevID:         r.RevID,
		Page:          r.Page,
		PageID:        r.PageID,
		OldID:         r.OldID,
		Redirects:     r.Redirects,
		Section:       r.Section,
		ContentModel:  r.ContentModel,
		ContentFormat: r.ContentFormat,
		WantsOutput:   r.wantsOutput(),
	}
}
