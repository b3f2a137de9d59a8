package hooks

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// Extension point names.
const (
	MakeParserOptions = "MakeParserOptions"
	MakeOutputPage    = "MakeOutputPage"
	BeforeHTML        = "BeforeHTML"
	LanguageLinks     = "LanguageLinks"
)

var (
	// ErrAbort stops the remaining handlers of an extension point without
	// failing the operation that ran it.
	ErrAbort = errors.New("hooks: abort")

	ErrInvalidHandler   = errors.New("hooks: handler name and func required")
	ErrDuplicateHandler = errors.New("hooks: handler already registered")
)

// Handler mutates the context of one extension point.
type Handler[C any] func(ctx context.Context, c C) error

type entry[C any] struct {
	name     string
	priority int
	seq      int
	fn       Handler[C]
}

// Registry holds the ordered handlers of one extension point. Lower priority
// values run first; equal priorities run in registration order.
type Registry[C any] struct {
	point string

	mu      sync.RWMutex
	entries []entry[C]
	seq     int
}

func NewRegistry[C any](point string) *Registry[C] {
	return &Registry[C]{point: point}
}

// Point returns the extension point name.
func (r *Registry[C]) Point() string {
	return r.point
}

// Register adds fn under name with default priority.
func (r *Registry[C]) Register(name string, fn Handler[C]) error {
	return r.RegisterWithPriority(name, 0, fn)
}

func (r *Registry[C]) RegisterWithPriority(name string, priority int, fn Handler[C]) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return ErrInvalidHandler
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.name == name {
			return ErrDuplicateHandler
		}
	}
	r.seq++
	r.entries = append(r.entries, entry[C]{name: name, priority: priority, seq: r.seq, fn: fn})
	sort.SliceStable(r.entries, func(i, j int) bool {
		if r.entries[i].priority != r.entries[j].priority {
			return r.entries[i].priority < r.entries[j].priority
		}
		return r.entries[i].seq < r.entries[j].seq
	})
	return nil
}

// Remove drops the handler registered as name.
func (r *Registry[C]) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.name == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Names lists handlers in run order.
func (r *Registry[C]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.name
	}
	return out
}

// Run invokes every handler in order. aborted is true when a handler returned
// ErrAbort; any other error stops the run and is returned as is.
func (r *Registry[C]) Run(ctx context.Context, c C) (aborted bool, err error) {
	if r == nil {
		return false, nil
	}
	r.mu.RLock()
	handlers := make([]entry[C], len(r.entries))
	copy(handlers, r.entries)
	r.mu.RUnlock()

	for _, h := range handlers {
		if err := h.fn(ctx, c); err != nil {
			if errors.Is(err, ErrAbort) {
				return true, nil
			}
			return false, &Error{Point: r.point, Handler: h.name, Err: err}
		}
	}
	return false, nil
}

// Error reports a failing handler.
type Error struct {
	Point   string
	Handler string
	Err     error
}

func (e *Error) Error() string {
	return "hooks: " + e.Point + "/" + e.Handler + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
