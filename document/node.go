package document

import (
	"reflect"
	"sync"
)

// Identity returns the identity of a map node.
func Identity(m map[string]any) uintptr {
	return reflect.ValueOf(m).Pointer()
}

// SameNode reports whether a and b are the same map or array, not merely
// equal ones.
func SameNode(a, b any) bool {
	switch x := a.(type) {
	case map[string]any:
		y, ok := b.(map[string]any)
		return ok && x != nil && y != nil && Identity(x) == Identity(y)
	case []any:
		y, ok := b.([]any)
		return ok && len(x) > 0 && len(x) == len(y) && &x[0] == &y[0]
	}
	return false
}

// NodeSet is a set of map nodes keyed by identity. It is safe for concurrent
// use and may be shared across several bundle calls. The set holds a
// reference to every member so identities are never reused while it lives.
type NodeSet struct {
	mu    sync.Mutex
	nodes map[uintptr]map[string]any
}

// NewNodeSet returns an empty set.
func NewNodeSet() *NodeSet {
	return &NodeSet{nodes: make(map[uintptr]map[string]any)}
}

// Add inserts m and reports whether it was not already present.
func (s *NodeSet) Add(m map[string]any) bool {
	id := Identity(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nodes == nil {
		s.nodes = make(map[uintptr]map[string]any)
	}
	if _, ok := s.nodes[id]; ok {
		return false
	}
	s.nodes[id] = m
	return true
}

// Has reports whether m is in the set.
func (s *NodeSet) Has(m map[string]any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nodes[Identity(m)]
	return ok
}

// Len returns the number of nodes in the set.
func (s *NodeSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// Walk calls fn once for every map reachable from v, parents before
// children. Maps reached through several paths, including cycles, are
// visited once. Returning false from fn skips that node's children.
func Walk(v any, fn func(node map[string]any) bool) {
	walk(v, make(map[uintptr]bool), fn)
}

func walk(v any, seen map[uintptr]bool, fn func(map[string]any) bool) {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return
		}
		id := Identity(t)
		if seen[id] {
			return
		}
		seen[id] = true
		if !fn(t) {
			return
		}
		for _, child := range t {
			walk(child, seen, fn)
		}
	case []any:
		for _, child := range t {
			walk(child, seen, fn)
		}
	}
}

// Clone deep-copies v. Maps reachable through several paths are copied once,
// so shared sub-objects stay shared and cycles are reproduced.
func Clone(v any) any {
	return cloneValue(v, make(map[uintptr]map[string]any))
}

func cloneValue(v any, seen map[uintptr]map[string]any) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return t
		}
		id := Identity(t)
		if c, ok := seen[id]; ok {
			return c
		}
		out := make(map[string]any, len(t))
		seen[id] = out
		for k, child := range t {
			out[k] = cloneValue(child, seen)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = cloneValue(child, seen)
		}
		return out
	default:
		return v
	}
}

// HasCycle reports whether v contains a map that is its own descendant.
// Shared sub-objects that do not loop are not cycles.
func HasCycle(v any) bool {
	return hasCycle(v, make(map[uintptr]bool), make(map[uintptr]bool))
}

func hasCycle(v any, onStack, done map[uintptr]bool) bool {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return false
		}
		id := Identity(t)
		if onStack[id] {
			return true
		}
		if done[id] {
			return false
		}
		onStack[id] = true
		for _, child := range t {
			if hasCycle(child, onStack, done) {
				return true
			}
		}
		delete(onStack, id)
		done[id] = true
	case []any:
		for _, child := range t {
			if hasCycle(child, onStack, done) {
				return true
			}
		}
	}
	return false
}
