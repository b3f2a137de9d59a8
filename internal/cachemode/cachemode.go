package cachemode

import (
	"fmt"
	"sync"
)

// Mode classifies how a response may be cached by shared caches.
type Mode string

const (
	Public                Mode = "public"
	AnonPublicUserPrivate Mode = "anon-public-user-private"
	Private               Mode = "private"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case Public, AnonPublicUserPrivate, Private:
		return true
	}
	return false
}

// Merge combines current with incoming. Private is sticky, public never
// loosens current, and anything unknown forces private.
func Merge(current, incoming Mode) Mode {
	if current == Private {
		return Private
	}
	switch incoming {
	case Public:
		return current
	case AnonPublicUserPrivate:
		return AnonPublicUserPrivate
	default:
		return Private
	}
}

// Fold merges modes left to right starting from public.
func Fold(modes ...Mode) Mode {
	result := Public
	for _, m := range modes {
		result = Merge(result, m)
	}
	return result
}

// Tracker accumulates the modes reported by the operations of one request.
// Each operation may report once.
type Tracker struct {
	mu       sync.Mutex
	mode     Mode
	reported map[string]Mode
	order    []string
}

// NewTracker returns a tracker starting at public.
func NewTracker() *Tracker {
	return &Tracker{mode: Public, reported: map[string]Mode{}}
}

// Report merges the mode of the named operation. A second report for the
// same operation is rejected.
func (t *Tracker) Report(operation string, mode Mode) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.reported[operation]; ok {
		return fmt.Errorf("cachemode: operation %q already reported", operation)
	}
	t.reported[operation] = mode
	t.order = append(t.order, operation)
	t.mode = Merge(t.mode, mode)
	return nil
}

// Mode returns the merged mode so far.
func (t *Tracker) Mode() Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// Operations lists the reporting operations in order.
func (t *Tracker) Operations() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.order...)
}
