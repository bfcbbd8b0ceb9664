// Package resolver dereferences $ref pointers across a set of loaded
// documents.
//
// Every map holding a "$ref" has the reference removed and the keys of the
// referenced map merged in; keys already present on the node win. Because
// targets are shared rather than copied, recursive schemas become recursive
// Go maps:
//
//	result, err := resolver.Resolve(doc)
//	pet := result.Schema.(map[string]any)["components"].(map[string]any)["schemas"].(map[string]any)["Pet"]
//	// pet's "parent" property is pet itself
//
// The input is cloned first and never modified. Problems are collected in
// Result.Errors, de-duplicated by code and message, unless WithThrowOnError
// is set.
package resolver

import (
	"errors"
	"fmt"

	"github.com/erraggy/oasref/document"
	"github.com/erraggy/oasref/filesystem"
	"github.com/erraggy/oasref/oaserrors"
)

// Result is the outcome of Resolve.
type Result struct {
	// Valid is true when no errors were recorded.
	Valid bool
	// Errors lists the recorded *oaserrors.ReferenceError values.
	Errors []error
	// Schema is the dereferenced entrypoint document.
	Schema any
	// Filesystem holds the dereferenced copies of every entry.
	Filesystem filesystem.Filesystem
}

// Resolve dereferences input, which may be a Filesystem, a document value,
// or JSON or YAML text.
func Resolve(input any, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("resolver: invalid options: %w", err)
	}

	fs, err := filesystem.Make(input)
	if err != nil {
		var refErr *oaserrors.ReferenceError
		if cfg.throwOnError || !errors.As(err, &refErr) {
			return nil, err
		}
		return &Result{Errors: []error{refErr}}, nil
	}

	r := &resolver{
		resolveConfig: cfg,
		fs:            cloneFilesystem(fs),
		visited:       make(map[uintptr]bool),
		reported:      make(map[string]bool),
	}

	entry := r.fs.Entrypoint()
	if entry == nil {
		return nil, &oaserrors.ConfigError{Option: "input", Message: "filesystem has no entrypoint"}
	}
	if err := r.dereference(entry.Value, entry); err != nil {
		return nil, err
	}

	return &Result{
		Valid:      len(r.errors) == 0,
		Errors:     r.errors,
		Schema:     entry.Value,
		Filesystem: r.fs,
	}, nil
}

type resolver struct {
	*resolveConfig
	fs       filesystem.Filesystem
	visited  map[uintptr]bool
	errors   []error
	reported map[string]bool
}

// dereference resolves every $ref reachable from v. entry is the document
// v belongs to. The only error returned is one raised by WithThrowOnError.
func (r *resolver) dereference(v any, entry *filesystem.Entry) error {
	switch node := v.(type) {
	case []any:
		for _, child := range node {
			if err := r.dereference(child, entry); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		if node == nil {
			return nil
		}
		id := document.Identity(node)
		if r.visited[id] {
			return nil
		}
		r.visited[id] = true

		if err := r.replaceRefs(node, entry); err != nil {
			return err
		}
		for _, child := range node {
			if err := r.dereference(child, entry); err != nil {
				return err
			}
		}
	}
	return nil
}

// replaceRefs follows the $ref chain of node until it ends, fails, or
// repeats.
func (r *resolver) replaceRefs(node map[string]any, entry *filesystem.Entry) error {
	followed := make(map[string]bool)
	for {
		ref, ok := document.Ref(node)
		if !ok {
			return nil
		}
		if followed[ref] {
			delete(node, document.RefKey)
			return r.report(&oaserrors.ReferenceError{
				Code:    oaserrors.CodeSelfReference,
				Ref:     ref,
				Source:  entry.URI,
				Message: "Can't resolve reference, it points to itself: " + ref,
			})
		}
		followed[ref] = true

		target, err := r.lookup(ref, entry)
		if err != nil || target == nil {
			return err
		}
		targetMap, ok := target.(map[string]any)
		if !ok {
			r.logger.Debug("reference target is not an object, leaving $ref in place", "ref", ref)
			return nil
		}

		merged := make(map[string]any, len(targetMap))
		for k, val := range targetMap {
			merged[k] = val
		}
		delete(node, document.RefKey)
		for k, val := range merged {
			if _, exists := node[k]; !exists {
				node[k] = val
			}
		}
		if r.onDereference != nil {
			r.onDereference(node, ref)
		}
	}
}

// lookup returns the value ref points at, or nil after recording an error.
func (r *resolver) lookup(ref string, entry *filesystem.Entry) (any, error) {
	prefix, pointer := document.SplitRef(ref)

	doc := entry.Value
	source := entry.URI
	if prefix != "" && !entry.Matches(prefix) {
		ext := r.fs.Lookup(entry, prefix)
		if ext == nil {
			return nil, r.report(&oaserrors.ReferenceError{
				Code:    oaserrors.CodeExternalReferenceNotFound,
				Ref:     ref,
				Source:  entry.URI,
				Message: "Can't resolve external reference: " + prefix,
			})
		}
		if err := r.dereference(ext.Value, ext); err != nil {
			return nil, err
		}
		doc = ext.Value
		source = ext.URI
	}

	target, ok := document.Get(doc, "#"+pointer)
	if !ok {
		return nil, r.report(&oaserrors.ReferenceError{
			Code:    oaserrors.CodeInvalidReference,
			Ref:     ref,
			Source:  source,
			Message: "Can't resolve reference: " + ref,
		})
	}
	return target, nil
}

// report records err once per code and message. With WithThrowOnError it
// returns err instead.
func (r *resolver) report(err *oaserrors.ReferenceError) error {
	if r.throwOnError {
		return err
	}
	key := err.Key()
	if r.reported[key] {
		return nil
	}
	r.reported[key] = true
	r.errors = append(r.errors, err)
	r.logger.Debug("reference error", "code", string(err.Code), "ref", err.Ref, "source", err.Source)
	return nil
}

func cloneFilesystem(fs filesystem.Filesystem) filesystem.Filesystem {
	out := make(filesystem.Filesystem, len(fs))
	for i, e := range fs {
		resolved := make(map[string]string, len(e.Resolved))
		for k, v := range e.Resolved {
			resolved[k] = v
		}
		out[i] = &filesystem.Entry{
			IsEntrypoint: e.IsEntrypoint,
			Value:        document.Clone(e.Value),
			URI:          e.URI,
			References:   append([]string(nil), e.References...),
			Resolved:     resolved,
		}
	}
	return out
}
