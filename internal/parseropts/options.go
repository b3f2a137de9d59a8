package parseropts

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

var ErrFrozen = errors.New("parseropts: options are frozen")

// Options controls one parse. It is mutable until Freeze and never shared
// between requests.
type Options struct {
	frozen         bool
	limitReport    bool
	preview        bool
	sectionPreview bool
	wrapClass      string
	overrides      map[string]any
}

func newOptions(wrapClass string) *Options {
	return &Options{
		limitReport: true,
		wrapClass:   wrapClass,
		overrides:   map[string]any{},
	}
}

func (o *Options) LimitReport() bool      { return o.limitReport }
func (o *Options) IsPreview() bool        { return o.preview }
func (o *Options) IsSectionPreview() bool { return o.sectionPreview }
func (o *Options) WrapOutputClass() string {
	return o.wrapClass
}
func (o *Options) Frozen() bool { return o.frozen }

// Override returns an extension supplied value.
func (o *Options) Override(key string) (any, bool) {
	v, ok := o.overrides[key]
	return v, ok
}

func (o *Options) SetLimitReport(enabled bool) error {
	if o.frozen {
		return ErrFrozen
	}
	o.limitReport = enabled
	return nil
}

func (o *Options) SetPreview(preview, section bool) error {
	if o.frozen {
		return ErrFrozen
	}
	o.preview = preview
	o.sectionPreview = section
	return nil
}

func (o *Options) SetWrapOutputClass(class string) error {
	if o.frozen {
		return ErrFrozen
	}
	o.wrapClass = class
	return nil
}

func (o *Options) SetOverride(key string, value any) error {
	if o.frozen {
		return ErrFrozen
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("parseropts: override key required")
	}
	o.overrides[key] = value
	return nil
}

// Freeze makes the options read-only.
func (o *Options) Freeze() {
	o.frozen = true
}

// ParserOptions converts to the renderer contract.
func (o *Options) ParserOptions() interfaces.ParserOptions {
	overrides := make(map[string]any, len(o.overrides))
	for k, v := range o.overrides {
		overrides[k] = v
	}
	return interfaces.ParserOptions{
		EnableLimitReport: o.limitReport,
		IsPreview:         o.preview,
		IsSectionPreview:  o.sectionPreview,
		WrapOutputClass:   o.wrapClass,
		Overrides:         overrides,
	}
}

// Fingerprint identifies option sets that produce identical output. It is
// part of the parser cache key.
func (o *Options) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "lr=%t;pv=%t;spv=%t;wrap=%s", o.limitReport, o.preview, o.sectionPreview, o.wrapClass)
	keys := make([]string, 0, len(o.overrides))
	for k := range o.overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, ";%s=%v", k, o.overrides[k])
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}
