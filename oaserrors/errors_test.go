package oaserrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := &ParseError{
			Path:    "/path/to/file.yaml",
			Line:    42,
			Column:  10,
			Message: "invalid syntax",
			Cause:   cause,
		}

		msg := err.Error()
		if msg != "parse error in /path/to/file.yaml at line 42, column 10: invalid syntax: underlying error" {
			t.Errorf("unexpected error message: %s", msg)
		}
	})

	t.Run("Error message with minimal fields", func(t *testing.T) {
		err := &ParseError{}
		if err.Error() != "parse error" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is matches ErrParse only", func(t *testing.T) {
		err := &ParseError{Message: "test"}
		if !errors.Is(err, ErrParse) {
			t.Error("ParseError should match ErrParse")
		}
		if errors.Is(err, ErrReference) {
			t.Error("ParseError should not match ErrReference")
		}
	})
}

func TestReferenceError(t *testing.T) {
	t.Run("Error message uses Message verbatim", func(t *testing.T) {
		err := &ReferenceError{
			Code:    CodeInvalidReference,
			Ref:     "#/components/WrongReference",
			Message: "Can't resolve reference: #/components/WrongReference",
		}
		if err.Error() != "Can't resolve reference: #/components/WrongReference" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Error message falls back to ref", func(t *testing.T) {
		err := &ReferenceError{Ref: "other.yaml#/a"}
		if err.Error() != "reference error: other.yaml#/a" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Error message with cause", func(t *testing.T) {
		err := &ReferenceError{Message: "fetch failed", Cause: errors.New("timeout")}
		if err.Error() != "fetch failed: timeout" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is matches code sentinels", func(t *testing.T) {
		tests := []struct {
			code Code
			want error
		}{
			{CodeNoContent, ErrNoContent},
			{CodeInvalidReference, ErrReferenceNotFound},
			{CodeExternalReferenceNotFound, ErrReferenceNotFound},
			{CodeSelfReference, ErrSelfReference},
			{CodeFetchFailed, ErrFetch},
		}
		for _, tt := range tests {
			err := &ReferenceError{Code: tt.code}
			if !errors.Is(err, ErrReference) {
				t.Errorf("%s should match ErrReference", tt.code)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("%s should match %v", tt.code, tt.want)
			}
		}
	})

	t.Run("Is does not match unrelated code sentinels", func(t *testing.T) {
		err := &ReferenceError{Code: CodeInvalidReference}
		if errors.Is(err, ErrSelfReference) {
			t.Error("INVALID_REFERENCE should not match ErrSelfReference")
		}
		if errors.Is(err, ErrNoContent) {
			t.Error("INVALID_REFERENCE should not match ErrNoContent")
		}
	})

	t.Run("Key combines code and message", func(t *testing.T) {
		a := &ReferenceError{Code: CodeSelfReference, Message: "x", Source: "a.yaml"}
		b := &ReferenceError{Code: CodeSelfReference, Message: "x", Source: "b.yaml"}
		c := &ReferenceError{Code: CodeInvalidReference, Message: "x"}
		if a.Key() != b.Key() {
			t.Error("errors with equal code and message should share a key")
		}
		if a.Key() == c.Key() {
			t.Error("errors with different codes should not share a key")
		}
	})

	t.Run("As extracts ReferenceError", func(t *testing.T) {
		original := &ReferenceError{Code: CodeExternalReferenceNotFound, Ref: "INVALID"}
		wrapped := fmt.Errorf("load: %w", original)

		var extracted *ReferenceError
		if !errors.As(wrapped, &extracted) {
			t.Fatal("errors.As should extract ReferenceError")
		}
		if extracted.Code != CodeExternalReferenceNotFound {
			t.Errorf("unexpected code: %s", extracted.Code)
		}
	})
}

func TestValidationError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &ValidationError{
			Path:    "/info",
			Keyword: "required",
			Message: "missing property 'title'",
		}
		if err.Error() != "validation error at /info (required): missing property 'title'" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is matches ErrValidation", func(t *testing.T) {
		if !errors.Is(&ValidationError{}, ErrValidation) {
			t.Error("ValidationError should match ErrValidation")
		}
	})
}

func TestResourceLimitError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &ResourceLimitError{
			ResourceType: "fetch_count",
			Limit:        20,
			Actual:       21,
			Message:      "too many remote documents",
		}
		if err.Error() != "resource limit exceeded: fetch_count (limit: 20, actual: 21): too many remote documents" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Error message minimal", func(t *testing.T) {
		err := &ResourceLimitError{}
		if err.Error() != "resource limit exceeded" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is matches ErrResourceLimit", func(t *testing.T) {
		if !errors.Is(&ResourceLimitError{}, ErrResourceLimit) {
			t.Error("ResourceLimitError should match ErrResourceLimit")
		}
	})
}

func TestConfigError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &ConfigError{
			Option:  "limit",
			Value:   -1,
			Message: "must not be negative",
		}
		if err.Error() != "configuration error for limit (value: -1): must not be negative" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is matches ErrConfig", func(t *testing.T) {
		if !errors.Is(&ConfigError{}, ErrConfig) {
			t.Error("ConfigError should match ErrConfig")
		}
	})
}

func TestSentinelErrors(t *testing.T) {
	// Verify all sentinel errors are distinct
	sentinels := []error{
		ErrParse,
		ErrReference,
		ErrNoContent,
		ErrReferenceNotFound,
		ErrSelfReference,
		ErrFetch,
		ErrValidation,
		ErrResourceLimit,
		ErrConfig,
	}

	for i, s1 := range sentinels {
		for j, s2 := range sentinels {
			if i != j && errors.Is(s1, s2) {
				t.Errorf("sentinel errors should be distinct: %v should not match %v", s1, s2)
			}
		}
	}
}

func TestErrorChaining(t *testing.T) {
	rootCause := errors.New("network timeout")
	refErr := &ReferenceError{
		Code:  CodeFetchFailed,
		Ref:   "http://example.com/schema.json",
		Cause: rootCause,
	}
	wrapped := fmt.Errorf("failed to load: %w", refErr)

	if !errors.Is(wrapped, rootCause) {
		t.Error("should be able to find root cause through Unwrap chain")
	}
	if !errors.Is(wrapped, ErrFetch) {
		t.Error("wrapped FETCH_FAILED error should match ErrFetch")
	}
}
