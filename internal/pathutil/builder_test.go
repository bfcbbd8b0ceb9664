package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathBuilder_Basic(t *testing.T) {
	p := &PathBuilder{}
	p.Push("properties")
	p.Push("name")

	assert.Equal(t, "/properties/name", p.String())
	assert.Equal(t, 2, p.Len())
}

func TestPathBuilder_EscapesSegments(t *testing.T) {
	p := &PathBuilder{}
	p.Push("paths")
	p.Push("/pets/{id}")
	p.Push("a~b")

	assert.Equal(t, "/paths/~1pets~1{id}/a~0b", p.String())
	assert.Equal(t, []string{"paths", "/pets/{id}", "a~b"}, p.Segments())
}

func TestPathBuilder_WithIndex(t *testing.T) {
	p := &PathBuilder{}
	p.Push("allOf")
	p.PushIndex(0)
	p.Push("properties")

	assert.Equal(t, "/allOf/0/properties", p.String())
}

func TestPathBuilder_PushPop(t *testing.T) {
	p := &PathBuilder{}
	p.Push("a")
	p.Push("b")
	p.Pop()
	p.Push("c")

	assert.Equal(t, "/a/c", p.String())
}

func TestPathBuilder_Empty(t *testing.T) {
	p := &PathBuilder{}
	p.Pop() // Should not panic
	assert.Equal(t, "", p.String())
}

func TestPathBuilder_Reset(t *testing.T) {
	p := &PathBuilder{}
	p.Push("a")
	p.Push("b")
	p.Reset()
	assert.Equal(t, "", p.String())

	p.Push("c")
	assert.Equal(t, "/c", p.String())
}

func TestPathBuilder_SegmentsIsCopy(t *testing.T) {
	p := &PathBuilder{}
	p.Push("a")
	segs := p.Segments()
	segs[0] = "z"
	assert.Equal(t, "/a", p.String())
}

func TestPool_GetPut(t *testing.T) {
	p := Get()
	if p == nil {
		t.Fatal("Get() returned nil")
	}

	p.Push("test")
	Put(p)

	p2 := Get()
	if p2 == nil {
		t.Fatal("Get() returned nil after Put")
	}
	assert.Equal(t, "", p2.String(), "Get() should return a reset builder")
	Put(p2)
}
