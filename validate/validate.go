// Package validate defines the validator used by the dereference pipeline
// and provides an implementation backed by a JSON Schema.
package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/erraggy/oasref/document"
	"github.com/erraggy/oasref/internal/pathutil"
	"github.com/erraggy/oasref/oaserrors"
)

// Validator checks a decoded document.
type Validator interface {
	Validate(ctx context.Context, doc any) (*Result, error)
}

// Error is a single validation failure.
type Error struct {
	// Message is the human-readable description
	Message string
	// Code identifies the failed rule, e.g. "required" or "properties/info/type"
	Code string
	// Path is the JSON pointer of the offending value
	Path string
}

// Result is the outcome of a validation.
type Result struct {
	// Valid is true when Errors is empty
	Valid bool
	// Errors lists the failures
	Errors []Error
	// Version is the detected document version, if any
	Version string
}

// Err returns the failures as one error, or nil for a valid result.
func (r *Result) Err() error {
	if r == nil || r.Valid {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, &oaserrors.ValidationError{Path: e.Path, Keyword: e.Code, Message: e.Message})
	}
	return errors.Join(errs...)
}

// DetectVersion returns the "openapi" or "swagger" field of doc.
func DetectVersion(doc any) string {
	m, ok := doc.(map[string]any)
	if !ok {
		return ""
	}
	for _, field := range []string{"openapi", "swagger"} {
		switch v := m[field].(type) {
		case string:
			return v
		case float64:
			return fmt.Sprint(v)
		}
	}
	return ""
}

// JSONSchema validates documents against a compiled JSON Schema.
type JSONSchema struct {
	schema  *jsonschema.Schema
	printer *message.Printer
}

// Option configures a JSONSchema validator
type Option func(*schemaConfig) error

type schemaConfig struct {
	lang language.Tag
	url  string
}

// WithLanguage sets the language of error messages. Defaults to English.
func WithLanguage(tag language.Tag) Option {
	return func(cfg *schemaConfig) error {
		cfg.lang = tag
		return nil
	}
}

// WithSchemaURL sets the identifier the schema is registered under, which
// relative "$ref"s inside the schema resolve against.
func WithSchemaURL(url string) Option {
	return func(cfg *schemaConfig) error {
		if url == "" {
			return &oaserrors.ConfigError{Option: "schema url", Message: "must not be empty"}
		}
		cfg.url = url
		return nil
	}
}

// NewJSONSchema compiles schema, given as a decoded value or as JSON or
// YAML text.
func NewJSONSchema(schema any, opts ...Option) (*JSONSchema, error) {
	cfg := &schemaConfig{lang: language.English, url: "schema.json"}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("validate: invalid options: %w", err)
		}
	}

	if b, ok := schema.([]byte); ok {
		schema = string(b)
	}
	value, err := document.Normalize(schema)
	if err != nil {
		return nil, fmt.Errorf("validate: failed to read schema: %w", err)
	}
	doc, err := toInstance(value)
	if err != nil {
		return nil, fmt.Errorf("validate: failed to read schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(cfg.url, doc); err != nil {
		return nil, fmt.Errorf("validate: failed to add schema: %w", err)
	}
	compiled, err := c.Compile(cfg.url)
	if err != nil {
		return nil, fmt.Errorf("validate: failed to compile schema: %w", err)
	}
	return &JSONSchema{schema: compiled, printer: message.NewPrinter(cfg.lang)}, nil
}

// Validate implements Validator. Documents containing cycles are rejected
// with an error; validate before dereferencing.
func (v *JSONSchema) Validate(ctx context.Context, doc any) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inst, err := toInstance(doc)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	result := &Result{Valid: true, Version: DetectVersion(doc)}
	err = v.schema.Validate(inst)
	if err == nil {
		return result, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validate: %w", err)
	}
	result.Valid = false
	v.collect(ve, &result.Errors)
	return result, nil
}

// collect appends the leaf causes of ve, which carry the specific failures.
func (v *JSONSchema) collect(ve *jsonschema.ValidationError, out *[]Error) {
	if len(ve.Causes) == 0 {
		*out = append(*out, Error{
			Message: ve.ErrorKind.LocalizedString(v.printer),
			Code:    strings.Join(ve.ErrorKind.KeywordPath(), "/"),
			Path:    pathutil.Join(ve.InstanceLocation...),
		})
		return
	}
	for _, cause := range ve.Causes {
		v.collect(cause, out)
	}
}

// toInstance converts a decoded document into the value representation the
// schema library expects.
func toInstance(doc any) (any, error) {
	if document.HasCycle(doc) {
		return nil, &oaserrors.ConfigError{Option: "document", Message: "document contains cycles"}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, &oaserrors.ParseError{Message: "document is not JSON compatible", Cause: err}
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}
