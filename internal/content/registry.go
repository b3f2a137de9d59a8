package content

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-wikiparse/internal/apierrors"
	"github.com/goliatone/go-wikiparse/internal/titles"
)

var (
	ErrUnknownModel       = errors.New("content: unknown content model")
	ErrUnsupportedFormat  = errors.New("content: format not supported by model")
	ErrHandlerModelNeeded = errors.New("content: handler model required")
)

// Handler creates content of one model from its serialized form.
type Handler interface {
	Model() string
	SupportedFormats() []string
	Unserialize(text, format string) (Content, error)
}

// HandlerOption customises a registry.
type HandlerOption func(*Registry)

// WithHandler registers or replaces the handler for its model.
func WithHandler(h Handler) HandlerOption {
	return func(r *Registry) {
		if h != nil && h.Model() != "" {
			r.handlers[h.Model()] = h
		}
	}
}

// Registry maps content models to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns a registry with every built-in model registered.
func NewRegistry(opts ...HandlerOption) *Registry {
	r := &Registry{handlers: map[string]Handler{
		ModelWikitext:   wikitextHandler{},
		ModelText:       textHandler{model: ModelText, format: FormatPlain},
		ModelCSS:        textHandler{model: ModelCSS, format: FormatCSS},
		ModelJavaScript: textHandler{model: ModelJavaScript, format: FormatJavaScript},
		ModelJSON:       jsonHandler{},
		ModelMarkdown:   markdownHandler{},
	}}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register adds h, replacing any handler of the same model.
func (r *Registry) Register(h Handler) error {
	if h == nil || strings.TrimSpace(h.Model()) == "" {
		return ErrHandlerModelNeeded
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Model()] = h
	return nil
}

// Handler returns the handler registered for model.
func (r *Registry) Handler(model string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	return h, nil
}

// Models lists registered models alphabetically.
func (r *Registry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for model := range r.handlers {
		out = append(out, model)
	}
	sort.Strings(out)
	return out
}

// Formats lists the formats of every registered model.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	for _, h := range r.handlers {
		for _, f := range h.SupportedFormats() {
			seen[f] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// MakeContent wraps text into a content object of model. An empty format
// selects the model default. Decode failures and model/format mismatches
// surface as content serialization errors.
func (r *Registry) MakeContent(text, model, format string) (Content, error) {
	h, err := r.Handler(model)
	if err != nil {
		return nil, apierrors.BadValue("contentmodel", err)
	}
	formats := h.SupportedFormats()
	if format == "" {
		format = formats[0]
	}
	if !slices.Contains(formats, format) {
		return nil, apierrors.ContentSerialization(fmt.Errorf("%w: %s does not support %s", ErrUnsupportedFormat, model, format))
	}
	c, err := h.Unserialize(text, format)
	if err != nil {
		return nil, apierrors.ContentSerialization(err)
	}
	return c, nil
}

// DefaultModelFor picks the model a page would get from its title.
func DefaultModelFor(t titles.Title, siteDefault string) string {
	if siteDefault == "" {
		siteDefault = ModelWikitext
	}
	allowsCode := t.Namespace == titles.NSMediaWiki
	if t.Namespace == titles.NSUser {
		_, allowsCode = t.BaseText()
	}
	if !allowsCode {
		return siteDefault
	}
	switch {
	case strings.HasSuffix(t.Text, ".css"):
		return ModelCSS
	case strings.HasSuffix(t.Text, ".js"):
		return ModelJavaScript
	case strings.HasSuffix(t.Text, ".json"):
		return ModelJSON
	default:
		return siteDefault
	}
}

type wikitextHandler struct{}

func (wikitextHandler) Model() string              { return ModelWikitext }
func (wikitextHandler) SupportedFormats() []string { return []string{FormatWikitext, FormatPlain} }
func (wikitextHandler) Unserialize(text, _ string) (Content, error) {
	return NewWikitext(text), nil
}

type textHandler struct {
	model  string
	format string
}

func (h textHandler) Model() string              { return h.model }
func (h textHandler) SupportedFormats() []string { return []string{h.format, FormatPlain} }
func (h textHandler) Unserialize(text, format string) (Content, error) {
	return NewText(h.model, format, text), nil
}
