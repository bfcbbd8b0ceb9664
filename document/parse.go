package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasref/oaserrors"
)

// Format identifies the encoding a document was decoded from.
type Format string

const (
	// FormatUnknown is used for values that were never encoded.
	FormatUnknown Format = "unknown"
	// FormatJSON indicates JSON input.
	FormatJSON Format = "json"
	// FormatYAML indicates YAML input.
	FormatYAML Format = "yaml"
)

// Parse decodes data as JSON, or as YAML when it is not valid JSON.
// Empty input and input decoding to null return a NO_CONTENT ReferenceError.
func Parse(data []byte) (any, Format, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, FormatUnknown, noContent()
	}

	if (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid(trimmed) {
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, FormatJSON, &oaserrors.ParseError{Message: "invalid JSON", Cause: err}
		}
		if v == nil {
			return nil, FormatJSON, noContent()
		}
		return v, FormatJSON, nil
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, FormatYAML, &oaserrors.ParseError{Message: "invalid YAML", Cause: err}
	}
	if v == nil {
		return nil, FormatYAML, noContent()
	}
	return normalizeKeys(v), FormatYAML, nil
}

// Normalize converts an input into a document value.
//
// Strings and byte slices are parsed with [Parse]. Maps and slices are
// returned as-is after converting any map[any]any produced by YAML decoding.
func Normalize(input any) (any, error) {
	switch v := input.(type) {
	case nil:
		return nil, noContent()
	case []byte:
		out, _, err := Parse(v)
		return out, err
	case string:
		out, _, err := Parse([]byte(v))
		return out, err
	case map[string]any, map[any]any, []any:
		return normalizeKeys(v), nil
	default:
		return nil, &oaserrors.ConfigError{
			Option:  "input",
			Message: fmt.Sprintf("unsupported document type %T", input),
		}
	}
}

// LooksLikeDocument reports whether s is JSON or YAML text describing an
// object or array, as opposed to an identifier such as a path or URL.
func LooksLikeDocument(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return json.Valid([]byte(trimmed))
	}
	if !strings.Contains(trimmed, "\n") && !strings.Contains(trimmed, ": ") {
		return false
	}
	var v any
	if err := yaml.Unmarshal([]byte(trimmed), &v); err != nil {
		return false
	}
	switch v.(type) {
	case map[string]any, map[any]any, []any:
		return true
	}
	return false
}

func noContent() error {
	return &oaserrors.ReferenceError{
		Code:    oaserrors.CodeNoContent,
		Message: "Cannot find JSON, YAML or filename in data",
	}
}

// normalizeKeys rewrites YAML map[any]any values into map[string]any.
// map[string]any and []any values are updated in place; already visited
// maps are skipped so cyclic inputs terminate.
func normalizeKeys(v any) any {
	return normalizeValue(v, make(map[uintptr]bool))
}

func normalizeValue(v any, seen map[uintptr]bool) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return t
		}
		id := Identity(t)
		if seen[id] {
			return t
		}
		seen[id] = true
		for k, child := range t {
			t[k] = normalizeValue(child, seen)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = normalizeValue(child, seen)
		}
		return out
	case []any:
		for i, child := range t {
			t[i] = normalizeValue(child, seen)
		}
		return t
	default:
		return v
	}
}
