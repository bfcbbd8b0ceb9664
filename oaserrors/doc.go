// Package oaserrors provides structured error types for the oasref library.
//
// Import path: github.com/erraggy/oasref/oaserrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to distinguish between the ways reference resolution, loading
// and bundling can fail.
//
// # Error Types
//
//   - [ParseError]: YAML/JSON decoding failures
//   - [ReferenceError]: $ref resolution failures, classified by [Code]
//   - [ValidationError]: schema violations reported by a validator
//   - [ResourceLimitError]: fetch count and file size limits
//   - [ConfigError]: invalid configuration or input options
//
// # Reference Error Codes
//
//   - [CodeNoContent]: the input normalised to nothing
//   - [CodeInvalidReference]: a JSON pointer could not be traversed
//   - [CodeExternalReferenceNotFound]: the referenced source is not loaded
//   - [CodeSelfReference]: a $ref chain came back to a reference it already followed
//   - [CodeFetchFailed]: a source plugin failed
//
// # Sentinel Errors
//
//   - [ErrReference]: matches any [ReferenceError]
//   - [ErrNoContent], [ErrReferenceNotFound], [ErrSelfReference], [ErrFetch]:
//     match a [ReferenceError] by code
//   - [ErrParse], [ErrValidation], [ErrResourceLimit], [ErrConfig]: match their types
//
// # Usage Examples
//
//	result, err := resolver.Resolve(doc, resolver.WithThrowOnError(true))
//	if errors.Is(err, oaserrors.ErrSelfReference) {
//	    // a schema points at itself
//	}
//
//	var refErr *oaserrors.ReferenceError
//	if errors.As(err, &refErr) {
//	    fmt.Printf("%s: %s\n", refErr.Code, refErr.Message)
//	}
package oaserrors
