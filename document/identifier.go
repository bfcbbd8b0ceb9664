package document

import (
	"net/url"
	"path/filepath"
	"strings"
)

// ResolveIdentifier resolves relative against base.
//
// Absolute URLs are returned unchanged. Against a URL base, relative is
// resolved by URL rules, so "/x.yaml" replaces the whole path and "x.yaml"
// replaces the last segment. Against a local path, relative is joined to
// the directory of base.
func ResolveIdentifier(base, relative string) string {
	if relative == "" {
		return base
	}
	if IsRemoteURL(relative) {
		return relative
	}
	if IsRemoteURL(base) {
		b, err := url.Parse(base)
		if err != nil {
			return relative
		}
		r, err := url.Parse(relative)
		if err != nil {
			return relative
		}
		return b.ResolveReference(r).String()
	}
	if filepath.IsAbs(relative) || base == "" {
		return filepath.Clean(relative)
	}
	return filepath.Join(filepath.Dir(base), relative)
}

// HasScheme reports whether s starts with a URI scheme such as "file:".
// Single-letter schemes are treated as Windows drive letters.
func HasScheme(s string) bool {
	i := strings.Index(s, ":")
	if i <= 1 {
		return false
	}
	for _, c := range s[:i] {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			return false
		}
	}
	return true
}
