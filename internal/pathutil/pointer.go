// Copyright 2024 Erraggy
// SPDX-License-Identifier: MIT

package pathutil

import (
	"net/url"
	"strings"
)

var (
	escaper   = strings.NewReplacer("~", "~0", "/", "~1")
	unescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

// Escape encodes a single reference token ("~" → "~0", "/" → "~1").
func Escape(token string) string {
	if !strings.ContainsAny(token, "~/") {
		return token
	}
	return escaper.Replace(token)
}

// Unescape decodes a single reference token. "~01" decodes to "~1".
func Unescape(token string) string {
	if !strings.Contains(token, "~") {
		return token
	}
	return unescaper.Replace(token)
}

// Split parses a JSON pointer into unescaped tokens.
//
// A leading "#" (URI fragment form) is accepted, in which case tokens are
// also percent-decoded. "", "#" and "#/" all denote the whole document and
// return no tokens.
func Split(pointer string) []string {
	fragment := strings.HasPrefix(pointer, "#")
	pointer = strings.TrimPrefix(pointer, "#")
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return nil
	}
	parts := strings.Split(pointer, "/")
	for i, part := range parts {
		if fragment && strings.Contains(part, "%") {
			if decoded, err := url.PathUnescape(part); err == nil {
				part = decoded
			}
		}
		parts[i] = Unescape(part)
	}
	return parts
}

// Join builds an escaped JSON pointer from unescaped tokens.
func Join(tokens ...string) string {
	if len(tokens) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(Escape(t))
	}
	return b.String()
}

// Fragment returns the pointer in URI fragment form: "#" + Join(tokens...).
func Fragment(tokens ...string) string {
	return "#" + Join(tokens...)
}
