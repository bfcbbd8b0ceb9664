package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeSet(t *testing.T) {
	a := map[string]any{"x": "1"}
	b := map[string]any{"x": "1"}

	set := NewNodeSet()
	assert.True(t, set.Add(a))
	assert.False(t, set.Add(a), "second Add of the same map should report false")
	assert.True(t, set.Add(b), "equal contents but distinct identity")
	assert.True(t, set.Has(a))
	assert.Equal(t, 2, set.Len())

	var zero NodeSet
	assert.True(t, zero.Add(a), "zero value should be usable")
}

func TestWalkVisitsSharedNodesOnce(t *testing.T) {
	shared := map[string]any{"type": "string"}
	root := map[string]any{
		"a":    shared,
		"b":    []any{shared, map[string]any{"c": shared}},
		"loop": nil,
	}
	root["loop"] = root

	counts := map[uintptr]int{}
	Walk(root, func(node map[string]any) bool {
		counts[Identity(node)]++
		return true
	})
	assert.Equal(t, 1, counts[Identity(shared)])
	assert.Equal(t, 1, counts[Identity(root)])
	assert.Len(t, counts, 3)
}

func TestWalkSkipChildren(t *testing.T) {
	skip := map[string]any{"inner": map[string]any{}}
	root := map[string]any{"skip": skip}

	var visited int
	Walk(root, func(node map[string]any) bool {
		visited++
		return Identity(node) != Identity(skip)
	})
	assert.Equal(t, 2, visited)
}

func TestClonePreservesSharingAndCycles(t *testing.T) {
	shared := map[string]any{"type": "string"}
	root := map[string]any{
		"a":    shared,
		"b":    shared,
		"list": []any{"x", shared},
	}
	root["self"] = root

	c := Clone(root).(map[string]any)

	require.NotEqual(t, Identity(root), Identity(c))
	ca := c["a"].(map[string]any)
	cb := c["b"].(map[string]any)
	assert.Equal(t, Identity(ca), Identity(cb), "shared node should stay shared")
	assert.NotEqual(t, Identity(shared), Identity(ca), "clone should not alias the input")
	assert.Equal(t, Identity(c), Identity(c["self"].(map[string]any)), "cycle should point at the clone")
	assert.Equal(t, Identity(ca), Identity(c["list"].([]any)[1].(map[string]any)))

	ca["type"] = "integer"
	assert.Equal(t, "string", shared["type"])
}

func TestHasCycle(t *testing.T) {
	shared := map[string]any{}
	dag := map[string]any{"a": shared, "b": shared}
	assert.False(t, HasCycle(dag), "shared nodes are not cycles")

	loop := map[string]any{}
	loop["items"] = []any{map[string]any{"back": loop}}
	assert.True(t, HasCycle(loop))

	assert.False(t, HasCycle("scalar"))
}
