package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JSON holds structured data. It is validated on construction.
type JSON struct {
	text string
}

func (j JSON) Model() string     { return ModelJSON }
func (j JSON) Format() string    { return FormatJSON }
func (j JSON) Serialize() string { return j.text }
func (j JSON) IsEmpty() bool     { return strings.TrimSpace(j.text) == "" }

// PreSaveTransform pretty prints the document with four space indentation.
func (j JSON) PreSaveTransform(PSTContext) Content {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(j.text)), "", "    "); err != nil {
		return j
	}
	return JSON{text: buf.String()}
}

// Decode returns the document as generic values, numbers as json.Number.
func (j JSON) Decode() (any, error) {
	dec := json.NewDecoder(strings.NewReader(j.text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

type jsonHandler struct {
	schema *jsonschema.Schema
}

// WithJSONSchema compiles schema and checks every JSON document against it.
func WithJSONSchema(schema string) (HandlerOption, error) {
	compiled, err := jsonschema.CompileString("content.schema.json", schema)
	if err != nil {
		return nil, fmt.Errorf("content: compile json schema: %w", err)
	}
	return func(r *Registry) {
		r.handlers[ModelJSON] = jsonHandler{schema: compiled}
	}, nil
}

func (h jsonHandler) Model() string              { return ModelJSON }
func (h jsonHandler) SupportedFormats() []string { return []string{FormatJSON, FormatPlain} }

func (h jsonHandler) Unserialize(text, _ string) (Content, error) {
	doc := JSON{text: text}
	if strings.TrimSpace(text) == "" {
		return doc, nil
	}
	value, err := doc.Decode()
	if err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if h.schema != nil {
		if err := h.schema.Validate(value); err != nil {
			return nil, fmt.Errorf("json does not match schema: %w", err)
		}
	}
	return doc, nil
}
