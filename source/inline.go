package source

import (
	"context"

	"github.com/erraggy/oasref/document"
)

// InlinePriority is the default priority of the inline plugin.
const InlinePriority = 300

// Inline treats an identifier that is itself JSON or YAML text as the
// document.
type Inline struct{}

// NewInline creates an inline plugin.
func NewInline() *Inline { return &Inline{} }

// Name implements Plugin.
func (*Inline) Name() string { return "inline" }

// Priority implements Plugin.
func (*Inline) Priority() int { return InlinePriority }

// CanHandle accepts JSON or YAML text describing an object or array.
func (*Inline) CanHandle(identifier string) bool {
	return document.LooksLikeDocument(identifier)
}

// Fetch implements Plugin by decoding the identifier.
func (*Inline) Fetch(ctx context.Context, identifier string) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, format, err := document.Parse([]byte(identifier))
	if err != nil {
		return nil, err
	}
	return &Content{Raw: []byte(identifier), Value: value, Format: format}, nil
}

var _ Plugin = (*Inline)(nil)
