// Copyright 2024 Erraggy
// SPDX-License-Identifier: MIT

// Package pathutil provides JSON pointer (RFC 6901) utilities used while
// walking and rewriting documents.
//
// The primary type is [PathBuilder], which uses push/pop semantics to build
// pointers incrementally without allocating intermediate strings. This is
// useful in recursive traversal where the pointer is only needed when a hook
// fires or an error is reported.
//
// # PathBuilder Usage
//
// Use [Get] to obtain a pooled PathBuilder, and [Put] to return it:
//
//	path := pathutil.Get()
//	defer pathutil.Put(path)
//
//	path.Push("paths")
//	path.Push("/pets")
//	// ... recurse ...
//	path.Pop()
//
//	path.String() // "/paths/~1pets"
//
// # Pointer Helpers
//
// [Escape] and [Unescape] convert single tokens, [Split] parses a pointer (or a
// "#/..." fragment) into tokens, and [Join] and [Fragment] go the other way:
//
//	pathutil.Split("#/definitions/a~1b") // ["definitions", "a/b"]
//	pathutil.Fragment("x-ext", "aaf4c61") // "#/x-ext/aaf4c61"
package pathutil
