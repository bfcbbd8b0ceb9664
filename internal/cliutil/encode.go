package cliutil

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasref/document"
	"github.com/erraggy/oasref/oaserrors"
)

// Output formats accepted by Encode.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ErrCyclic is returned by Encode for documents that reference themselves
// after dereferencing.
var ErrCyclic = fmt.Errorf("cliutil: document contains circular references and cannot be serialized: %w", oaserrors.ErrConfig)

// Encode serializes doc as YAML or JSON. An empty format selects YAML.
// JSON output is indented and ends with a newline.
func Encode(doc any, format string) ([]byte, error) {
	if document.HasCycle(doc) {
		return nil, ErrCyclic
	}
	switch strings.ToLower(format) {
	case "", FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("cliutil: encoding yaml: %w", err)
		}
		return data, nil
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("cliutil: encoding json: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, &oaserrors.ConfigError{
			Option:  "format",
			Value:   format,
			Message: "must be yaml or json",
		}
	}
}
