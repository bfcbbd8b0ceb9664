// Package oasref resolves and bundles references in API description
// documents such as OpenAPI and Swagger specifications.
//
// Documents are decoded JSON or YAML values. References use the $ref
// convention: "#/components/schemas/Pet" points inside the current document
// while "common.yaml#/Pet" or "https://example.com/pet.json" point at other
// documents.
//
// # Packages
//
//   - [github.com/erraggy/oasref/loader]: fetch a document and, transitively,
//     every external document it references into a [filesystem.Filesystem]
//   - [github.com/erraggy/oasref/resolver]: dereference every $ref in a
//     loaded filesystem, producing a single document that may contain cycles
//   - [github.com/erraggy/oasref/bundler]: embed external documents under an
//     "x-ext" section and rewrite their references to local ones
//   - [github.com/erraggy/oasref/dereference]: load, upgrade, validate and
//     resolve in one call
//   - [github.com/erraggy/oasref/source]: file, URL and inline source plugins
//   - [github.com/erraggy/oasref/validate]: validator interface and a JSON
//     Schema adapter
//   - [github.com/erraggy/oasref/oaserrors]: structured error types
//   - [github.com/erraggy/oasref/oaslog]: logging interface
//
// # Quick Start
//
// Dereference a document from disk:
//
//	result, err := dereference.Dereference(ctx, "openapi.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, e := range result.Errors {
//		fmt.Println(e)
//	}
//
// Bundle a document that references remote schemas:
//
//	out, err := bundler.Bundle(ctx, "https://example.com/openapi.yaml",
//		bundler.WithTreeShake(true),
//		bundler.WithURLMap(true),
//	)
//
// # Cycles
//
// Resolution replaces each $ref node with the content it points at, merging
// keys. Recursive schemas therefore become recursive Go maps; use
// [github.com/erraggy/oasref/document.HasCycle] before encoding a resolved
// document, or bundle instead.
package oasref
