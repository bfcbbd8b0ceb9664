package document

import (
	"sort"
	"strings"

	"github.com/erraggy/oasref/internal/pathutil"
)

// RefKey is the property holding a reference.
const RefKey = "$ref"

// Ref returns the $ref string of node, if it has one.
func Ref(node map[string]any) (string, bool) {
	ref, ok := node[RefKey].(string)
	return ref, ok
}

// IsLocalRef reports whether ref points into the current document.
func IsLocalRef(ref string) bool {
	return strings.HasPrefix(ref, "#")
}

// IsRemoteURL reports whether s is an http(s) URL.
func IsRemoteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// SplitRef splits ref into its source prefix and pointer (without "#").
//
//	SplitRef("a.yaml#/b") // "a.yaml", "/b"
//	SplitRef("#/b")       // "", "/b"
//	SplitRef("a.yaml")    // "a.yaml", ""
func SplitRef(ref string) (prefix, pointer string) {
	prefix, pointer, _ = strings.Cut(ref, "#")
	return prefix, pointer
}

// ExternalRefs returns the sorted, de-duplicated source prefixes of every
// non-local $ref reachable from v.
func ExternalRefs(v any) []string {
	set := make(map[string]struct{})
	Walk(v, func(node map[string]any) bool {
		ref, ok := Ref(node)
		if !ok || IsLocalRef(ref) {
			return true
		}
		if prefix, _ := SplitRef(ref); prefix != "" {
			set[prefix] = struct{}{}
		}
		return true
	})
	out := make([]string, 0, len(set))
	for prefix := range set {
		out = append(out, prefix)
	}
	sort.Strings(out)
	return out
}

// PrefixLocalRef moves a local ref under tokens:
//
//	PrefixLocalRef("#/a/b", "x-ext", "k") // "#/x-ext/k/a/b"
//	PrefixLocalRef("#", "x-ext", "k")     // "#/x-ext/k"
func PrefixLocalRef(ref string, tokens ...string) string {
	pointer := strings.TrimPrefix(ref, "#")
	if pointer == "/" {
		pointer = ""
	}
	return pathutil.Fragment(tokens...) + pointer
}

// PrefixLocalRefs rewrites every local $ref reachable from v with
// PrefixLocalRef, in place. Each node is rewritten at most once.
func PrefixLocalRefs(v any, tokens ...string) {
	Walk(v, func(node map[string]any) bool {
		if ref, ok := Ref(node); ok && IsLocalRef(ref) {
			node[RefKey] = PrefixLocalRef(ref, tokens...)
		}
		return true
	})
}
