package document

import (
	"strconv"

	"github.com/erraggy/oasref/internal/pathutil"
)

// Get returns the value at pointer inside root. The pointer may be in
// fragment form ("#/a/b") or plain form ("/a/b"); "", "#" and "#/" address
// root itself. Array elements are addressed by decimal index.
func Get(root any, pointer string) (any, bool) {
	return GetTokens(root, pathutil.Split(pointer))
}

// GetTokens is Get for an already split pointer.
func GetTokens(root any, tokens []string) (any, bool) {
	current := root
	for _, tok := range tokens {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[tok]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Set stores value at tokens inside root. Existing maps and arrays on the
// path are stepped into; a missing token or a scalar is replaced with a new
// map. An array index that is not a valid position makes Set a no-op. It is
// also a no-op for an empty token list.
func Set(root map[string]any, tokens []string, value any) {
	if len(tokens) == 0 || root == nil {
		return
	}
	var current any = root
	for i, tok := range tokens {
		last := i == len(tokens)-1
		switch node := current.(type) {
		case map[string]any:
			if last {
				node[tok] = value
				return
			}
			next := node[tok]
			if !isContainer(next) {
				next = make(map[string]any)
				node[tok] = next
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(node) {
				return
			}
			if last {
				node[idx] = value
				return
			}
			next := node[idx]
			if !isContainer(next) {
				next = make(map[string]any)
				node[idx] = next
			}
			current = next
		}
	}
}

func isContainer(v any) bool {
	switch c := v.(type) {
	case map[string]any:
		return c != nil
	case []any:
		return true
	}
	return false
}
