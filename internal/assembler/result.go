package assembler

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/goliatone/go-wikiparse/internal/apierrors"
	"github.com/goliatone/go-wikiparse/internal/cachemode"
)

// Result is the ordered field map returned by a parse. Besides values it
// records the per-entry element tag of list fields and which string fields
// are carried as sub-elements by XML-style formats.
type Result struct {
	order       []string
	values      map[string]any
	tags        map[string]string
	subElements map[string]bool

	Warnings  []apierrors.Warning
	CacheMode cachemode.Mode
}

// NewResult returns an empty result.
func NewResult() *Result {
	return &Result{
		values:      map[string]any{},
		tags:        map[string]string{},
		subElements: map[string]bool{},
	}
}

// Set stores value under key, keeping the position of an existing key.
func (r *Result) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.order = append(r.order, key)
	}
	r.values[key] = value
}

// SetIndexedTagName records the element name of each entry of a list field.
func (r *Result) SetIndexedTagName(key, tag string) {
	r.tags[key] = tag
}

// SetSubElement marks a string field as a sub-element.
func (r *Result) SetSubElement(key string) {
	r.subElements[key] = true
}

func (r *Result) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key was set.
func (r *Result) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Keys lists fields in insertion order.
func (r *Result) Keys() []string {
	return append([]string(nil), r.order...)
}

func (r *Result) IndexedTagName(key string) string {
	return r.tags[key]
}

func (r *Result) IsSubElement(key string) bool {
	return r.subElements[key]
}

// AddWarning records an advisory warning.
func (r *Result) AddWarning(w apierrors.Warning) {
	r.Warnings = append(r.Warnings, w)
}

// MarshalJSON writes the fields in order, followed by warnings when present.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, key, r.values[key]); err != nil {
			return nil, err
		}
	}
	if len(r.Warnings) > 0 {
		if len(r.order) > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, "warnings", r.Warnings); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// KeyValue is one entry of a key-value shaped field.
type KeyValue struct {
	Key   string
	Value any
}

// KeyValues is a list whose entries are keyed by KeyName ("name" for
// indicators and properties). It marshals to an ordered object.
type KeyValues struct {
	KeyName string
	Pairs   []KeyValue
}

// Lookup returns the value stored under key.
func (kv KeyValues) Lookup(key string) (any, bool) {
	for _, p := range kv.Pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

func (kv KeyValues) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range kv.Pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, p.Key, p.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// LimitReportItem is one limit report entry: a name plus positional values.
type LimitReportItem struct {
	Name   string
	Values []any
}

func (l LimitReportItem) MarshalJSON() ([]byte, error) {
	pairs := KeyValues{Pairs: []KeyValue{{Key: "name", Value: l.Name}}}
	for i, v := range l.Values {
		pairs.Pairs = append(pairs.Pairs, KeyValue{Key: strconv.Itoa(i), Value: v})
	}
	return pairs.MarshalJSON()
}
