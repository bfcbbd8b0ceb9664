// Package filesystem models a set of loaded documents: one entrypoint and
// the external documents it references, directly or transitively.
package filesystem

import (
	"github.com/erraggy/oasref/document"
	"github.com/erraggy/oasref/oaserrors"
)

// Entry is one loaded document.
type Entry struct {
	// IsEntrypoint marks the document resolution starts from.
	IsEntrypoint bool
	// Value is the decoded document. The resolver mutates it in place.
	Value any
	// URI is the absolute identifier the document was loaded from, or empty
	// for an in-memory document.
	URI string
	// References lists the external source prefixes found in Value.
	References []string
	// Resolved maps a raw prefix from References to the absolute identifier
	// it was loaded from.
	Resolved map[string]string
}

// NewEntry creates an entry and computes its references.
func NewEntry(value any, uri string, entrypoint bool) *Entry {
	return &Entry{
		IsEntrypoint: entrypoint,
		Value:        value,
		URI:          uri,
		References:   document.ExternalRefs(value),
		Resolved:     make(map[string]string),
	}
}

// Matches reports whether prefix refers to this entry's own document, either
// verbatim or relative to its URI.
func (e *Entry) Matches(prefix string) bool {
	if e.URI == "" || prefix == "" {
		return false
	}
	return prefix == e.URI || document.ResolveIdentifier(e.URI, prefix) == e.URI
}

// Filesystem is the ordered list of loaded entries. Exactly one entry is the
// entrypoint and no two entries share a URI.
type Filesystem []*Entry

// Make builds a Filesystem from a value. A Filesystem is returned unchanged,
// an *Entry becomes the sole entrypoint, and anything else is normalised
// (JSON or YAML text is parsed) and wrapped as an in-memory entrypoint.
func Make(value any) (Filesystem, error) {
	switch v := value.(type) {
	case Filesystem:
		return v, nil
	case *Entry:
		v.IsEntrypoint = true
		return Filesystem{v}, nil
	}

	doc, err := document.Normalize(value)
	if err != nil {
		return nil, err
	}
	switch doc.(type) {
	case map[string]any, []any:
	default:
		return nil, &oaserrors.ReferenceError{
			Code:    oaserrors.CodeNoContent,
			Message: "Cannot find JSON, YAML or filename in data",
		}
	}
	return Filesystem{NewEntry(doc, "", true)}, nil
}

// Entrypoint returns the entrypoint entry, or nil for an empty Filesystem.
func (fs Filesystem) Entrypoint() *Entry {
	for _, e := range fs {
		if e.IsEntrypoint {
			return e
		}
	}
	return nil
}

// Find returns the entry loaded from uri.
func (fs Filesystem) Find(uri string) *Entry {
	if uri == "" {
		return nil
	}
	for _, e := range fs {
		if e.URI == uri {
			return e
		}
	}
	return nil
}

// Add appends e unless an entry with the same URI exists. In-memory entries
// (empty URI) are only accepted as the first entry.
func (fs *Filesystem) Add(e *Entry) bool {
	if e.URI == "" {
		if len(*fs) > 0 {
			return false
		}
	} else if fs.Find(e.URI) != nil {
		return false
	}
	*fs = append(*fs, e)
	return true
}

// Lookup finds the entry that prefix, written inside from, refers to.
func (fs Filesystem) Lookup(from *Entry, prefix string) *Entry {
	if from != nil {
		if id, ok := from.Resolved[prefix]; ok {
			if e := fs.Find(id); e != nil {
				return e
			}
		}
		if e := fs.Find(document.ResolveIdentifier(from.URI, prefix)); e != nil {
			return e
		}
	}
	return fs.Find(prefix)
}
