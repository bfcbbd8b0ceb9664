// Package document holds the value model shared by the loader, resolver and
// bundler: decoded JSON/YAML values, JSON pointer access, $ref helpers and
// identity-based node bookkeeping.
//
// Documents are plain Go values: map[string]any, []any, string, float64 or
// int, bool and nil. Because maps are reference types a resolved document can
// contain live cycles; node identity is the map itself, tracked with
// [NodeSet]. [Clone] copies a document while preserving shared sub-objects
// and cycles.
//
// # Parsing
//
// [Parse] tries JSON first and falls back to YAML. YAML mappings with
// non-string keys (such as unquoted response codes) are normalised to
// map[string]any.
//
//	v, format, err := document.Parse([]byte("openapi: 3.1.0"))
//
// # References
//
//	prefix, pointer := document.SplitRef("common.yaml#/components/schemas/Pet")
//	// prefix = "common.yaml", pointer = "/components/schemas/Pet"
//	target, ok := document.Get(doc, "#/components/schemas/Pet")
package document
