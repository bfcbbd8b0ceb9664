// Package source provides the plugins that turn a reference identifier (a
// file path, a URL or inline JSON/YAML text) into a decoded document.
//
// A [Plugins] list is ordered by descending priority; the first plugin whose
// CanHandle accepts an identifier fetches it.
//
//	plugins := source.NewPlugins(
//	    source.NewURL(source.WithFetchLimit(50)),
//	    source.NewFile(),
//	)
//	content, err := plugins.Find("https://example.com/pet.yaml").Fetch(ctx, "https://example.com/pet.yaml")
package source

import (
	"context"
	"sort"

	"github.com/erraggy/oasref/document"
)

// MaxFileSize is the largest document a plugin will read (10MB).
const MaxFileSize = 10 * 1024 * 1024

// Content is a fetched, decoded document.
type Content struct {
	// Identifier is the canonical identifier of the document; empty for
	// inline text.
	Identifier string
	// Raw is the undecoded input.
	Raw []byte
	// Value is the decoded document.
	Value any
	// Format is the encoding Raw was decoded from.
	Format document.Format
}

// Plugin fetches documents for the identifiers it accepts.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string
	// Priority orders plugins; higher runs first.
	Priority() int
	// CanHandle reports whether the plugin accepts identifier.
	CanHandle(identifier string) bool
	// Fetch retrieves and decodes identifier.
	Fetch(ctx context.Context, identifier string) (*Content, error)
}

// IdentifierResolver is implemented by plugins that resolve relative
// identifiers in their own way.
type IdentifierResolver interface {
	ResolveIdentifier(base, relative string) string
}

// Plugins is a priority-ordered plugin list.
type Plugins []Plugin

// NewPlugins returns plugins sorted by descending priority. Plugins with
// equal priority keep their relative order.
func NewPlugins(plugins ...Plugin) Plugins {
	out := make(Plugins, 0, len(plugins))
	for _, p := range plugins {
		if p != nil {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() > out[j].Priority()
	})
	return out
}

// Default returns the inline, URL and file plugins with default settings.
func Default() Plugins {
	return NewPlugins(NewInline(), NewURL(), NewFile())
}

// Find returns the first plugin that accepts identifier, or nil.
func (ps Plugins) Find(identifier string) Plugin {
	for _, p := range ps {
		if p.CanHandle(identifier) {
			return p
		}
	}
	return nil
}

// ResolveIdentifier resolves relative against base, deferring to the first
// plugin that accepts the base (or, without a base, the relative
// identifier) and implements IdentifierResolver.
func (ps Plugins) ResolveIdentifier(base, relative string) string {
	owner := base
	if owner == "" || document.IsRemoteURL(relative) {
		owner = relative
	}
	for _, p := range ps {
		r, ok := p.(IdentifierResolver)
		if ok && p.CanHandle(owner) {
			return r.ResolveIdentifier(base, relative)
		}
	}
	return document.ResolveIdentifier(base, relative)
}
