package pathutil

import (
	"strconv"
	"strings"
)

// PathBuilder provides incremental JSON pointer construction.
// Uses push/pop semantics to avoid allocations during traversal.
// Segments are stored unescaped; the pointer string is only materialized
// when String() is called.
type PathBuilder struct {
	segments []string
}

// Push adds a segment to the path.
func (p *PathBuilder) Push(segment string) {
	p.segments = append(p.segments, segment)
}

// PushIndex adds an array index segment.
func (p *PathBuilder) PushIndex(i int) {
	p.segments = append(p.segments, strconv.Itoa(i))
}

// Pop removes the last segment.
func (p *PathBuilder) Pop() {
	if len(p.segments) == 0 {
		return
	}
	p.segments = p.segments[:len(p.segments)-1]
}

// Reset clears the builder for reuse.
func (p *PathBuilder) Reset() {
	p.segments = p.segments[:0]
}

// Len returns the number of segments.
func (p *PathBuilder) Len() int {
	return len(p.segments)
}

// Segments returns a copy of the unescaped segments.
func (p *PathBuilder) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// String materializes the escaped JSON pointer, e.g. "/paths/~1pets/get".
// The empty path is the empty string (the whole document).
func (p *PathBuilder) String() string {
	if len(p.segments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteByte('/')
		b.WriteString(Escape(seg))
	}
	return b.String()
}
