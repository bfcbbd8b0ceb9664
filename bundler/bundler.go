// Package bundler embeds the external documents referenced by a document
// into the document itself, so that the result only contains local
// references.
//
// Every external $ref such as "https://example.com/pet.yaml#/Pet" is
// fetched through the source plugins, stored under the root property
// "x-ext" with a short content key, and rewritten to "#/x-ext/<key>/Pet".
// Local references inside the fetched document are moved under the same
// key. Fetched documents are bundled in turn, relative to their own
// identifier.
//
//	doc := map[string]any{"pet": map[string]any{"$ref": "https://example.com/pet.yaml"}}
//	_, err := bundler.Bundle(ctx, doc, bundler.WithTreeShake(true))
//
// Bundle mutates its input. Fetches run concurrently; the document itself is
// only modified by the calling goroutine. A fetch failure is not an error:
// the $ref is left as it was and a warning is logged.
package bundler

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/erraggy/oasref/document"
	"github.com/erraggy/oasref/internal/pathutil"
	"github.com/erraggy/oasref/oaserrors"
)

// globalKey marks a $ref whose target is a chunk of the root document:
// local references inside it keep pointing at the root.
const globalKey = "$global"

const failedToResolve = `Failed to resolve external reference "%s". ` +
	`The reference may be invalid, inaccessible, or missing a loader for this type of reference.`

// Bundle bundles input and returns the bundled document.
//
// input is a map (bundled in place), an identifier or JSON/YAML text
// (fetched through the plugins first), or, together with WithRoot, any
// part of the root document.
func Bundle(ctx context.Context, input any, opts ...Option) (any, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("bundler: invalid options: %w", err)
	}

	b := &bundler{
		bundleConfig: cfg,
		sem:          semaphore.NewWeighted(int64(cfg.concurrency)),
		urls:         make(map[string]string),
		copied:       document.NewNodeSet(),
		urlsKey:      cfg.externalsKey + "-urls",
	}

	origin := cfg.origin
	node := input
	if s, ok := input.(string); ok {
		if cfg.plugins.Find(s) == nil {
			return nil, fmt.Errorf("bundler: no plugin can load the input: %w",
				&oaserrors.ConfigError{Option: "input", Message: "no plugin accepts the input"})
		}
		id := s
		if !document.LooksLikeDocument(s) {
			id = cfg.plugins.ResolveIdentifier("", s)
		}
		value, err := cfg.cache.load(ctx, id, cfg.plugins, b.sem).wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("bundler: failed to load input: %w", err)
		}
		if !cfg.hasOrigin && !document.LooksLikeDocument(s) {
			origin = id
		}
		node = value
	}

	b.root = cfg.partialRoot
	if b.root == nil {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, &oaserrors.ConfigError{
				Option:  "input",
				Value:   fmt.Sprintf("%T", node),
				Message: "document root must be an object; use WithRoot to bundle part of a document",
			}
		}
		b.root = m
	}

	path := pathutil.Get()
	defer pathutil.Put(path)

	st := state{origin: origin, path: path}
	if err := b.bundleTree(ctx, node, st); err != nil {
		return nil, err
	}

	if cfg.urlMap || cfg.partialRoot != nil || cfg.maxDepth >= 0 {
		b.writeURLMap()
	}
	return node, nil
}

type bundler struct {
	*bundleConfig
	root    map[string]any
	sem     *semaphore.Weighted
	urls    map[string]string
	copied  *document.NodeSet
	urlsKey string
}

// state is the traversal position of a node.
type state struct {
	origin string
	chunk  bool
	depth  int
	parent map[string]any
	path   *pathutil.PathBuilder
}

func (b *bundler) tooDeep(depth int) bool {
	return b.maxDepth >= 0 && depth > b.maxDepth
}

// bundleTree starts the fetches v needs, then bundles it.
func (b *bundler) bundleTree(ctx context.Context, v any, st state) error {
	b.prefetch(ctx, v, st.origin, st.depth, make(map[uintptr]bool))
	return b.bundleNode(ctx, v, st)
}

// prefetch dispatches the fetch of every external reference bundleNode will
// reach from v.
func (b *bundler) prefetch(ctx context.Context, v any, origin string, depth int, seen map[uintptr]bool) {
	if b.tooDeep(depth) {
		return
	}
	switch node := v.(type) {
	case []any:
		for _, child := range node {
			b.prefetch(ctx, child, origin, depth+1, seen)
		}
	case map[string]any:
		if node == nil || b.visited.Has(node) {
			return
		}
		id := document.Identity(node)
		if seen[id] {
			return
		}
		seen[id] = true

		if ref, ok := document.Ref(node); ok && !document.IsLocalRef(ref) {
			prefix, _ := document.SplitRef(ref)
			b.cache.load(ctx, b.plugins.ResolveIdentifier(origin, prefix), b.plugins, b.sem)
		}
		for k, child := range node {
			if b.skipKey(k) {
				continue
			}
			b.prefetch(ctx, child, origin, depth+1, seen)
		}
	}
}

func (b *bundler) skipKey(k string) bool {
	return k == b.externalsKey || k == b.urlsKey
}

func (b *bundler) bundleNode(ctx context.Context, v any, st state) error {
	if b.tooDeep(st.depth) {
		return nil
	}
	switch node := v.(type) {
	case []any:
		for i, child := range node {
			st.path.PushIndex(i)
			err := b.bundleNode(ctx, child, state{
				origin: st.origin,
				chunk:  st.chunk,
				depth:  st.depth + 1,
				parent: st.parent,
				path:   st.path,
			})
			st.path.Pop()
			if err != nil {
				return err
			}
		}
	case map[string]any:
		if node == nil || !b.visited.Add(node) {
			return nil
		}
		nc := NodeContext{Path: st.path.String(), Parent: st.parent, Root: b.root}
		b.hooks.beforeNode(node, nc)

		if ref, ok := document.Ref(node); ok {
			var err error
			if document.IsLocalRef(ref) {
				err = b.bundleLocal(ctx, ref, st)
			} else {
				err = b.bundleExternal(ctx, node, ref, st)
			}
			if err != nil {
				return err
			}
		}

		for k, child := range node {
			if b.skipKey(k) {
				continue
			}
			st.path.Push(k)
			err := b.bundleNode(ctx, child, state{
				origin: st.origin,
				chunk:  st.chunk,
				depth:  st.depth + 1,
				parent: node,
				path:   st.path,
			})
			st.path.Pop()
			if err != nil {
				return err
			}
		}

		b.hooks.afterNode(node, nc)
	}
	return nil
}

// bundleLocal follows a local reference into the root document when only a
// part of it is being bundled.
func (b *bundler) bundleLocal(ctx context.Context, ref string, st state) error {
	if b.partialRoot == nil {
		return nil
	}
	tokens := pathutil.Split(ref)
	target, ok := document.GetTokens(b.root, tokens)
	if !ok {
		return nil
	}
	var parent map[string]any
	if len(tokens) > 0 {
		p, _ := document.GetTokens(b.root, tokens[:len(tokens)-1])
		parent, _ = p.(map[string]any)
	}

	path := pathutil.Get()
	defer pathutil.Put(path)
	for _, tok := range tokens {
		path.Push(tok)
	}
	return b.bundleTree(ctx, target, state{
		origin: st.origin,
		chunk:  st.chunk,
		depth:  st.depth + 1,
		parent: parent,
		path:   path,
	})
}

// bundleExternal fetches the document behind ref, stores it in the root
// and rewrites the $ref of node to point at the stored copy.
func (b *bundler) bundleExternal(ctx context.Context, node map[string]any, ref string, st state) error {
	b.hooks.resolveStart(node)

	prefix, pointer := document.SplitRef(ref)
	id := b.plugins.ResolveIdentifier(st.origin, prefix)

	f := b.cache.load(ctx, id, b.plugins, b.sem)
	content, err := f.wait(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		b.hooks.resolveError(node)
		b.logger.Warn(fmt.Sprintf(failedToResolve, prefix), "identifier", id, "error", err)
		return nil
	}

	key := b.cache.key(id, b.compress)
	global, _ := node[globalKey].(bool)

	origin := id
	if global {
		origin = st.origin
	}
	if b.cache.claim(f) && !global {
		document.PrefixLocalRefs(content, b.externalsKey, key)
	}

	node[document.RefKey] = document.PrefixLocalRef("#"+pointer, b.externalsKey, key)
	b.urls[key] = id

	ext := b.externals()
	var stored []any
	if b.treeShake {
		stored = b.shake(ext, key, content, pathutil.Split("#"+pointer))
	} else {
		if _, ok := ext[key]; !ok {
			ext[key] = content
		}
		stored = []any{content}
	}

	for _, v := range stored {
		path := pathutil.Get()
		err := b.bundleTree(ctx, v, state{
			origin: origin,
			chunk:  global,
			depth:  st.depth,
			parent: nil,
			path:   path,
		})
		pathutil.Put(path)
		if err != nil {
			return err
		}
	}

	b.hooks.resolveSuccess(node)
	return nil
}

// externals returns the root's externals container, creating it on first
// use.
func (b *bundler) externals() map[string]any {
	ext, ok := b.root[b.externalsKey].(map[string]any)
	if !ok {
		ext = make(map[string]any)
		b.root[b.externalsKey] = ext
	}
	return ext
}

func (b *bundler) writeURLMap() {
	if len(b.urls) == 0 {
		return
	}
	m, ok := b.root[b.urlsKey].(map[string]any)
	if !ok {
		m = make(map[string]any, len(b.urls))
		b.root[b.urlsKey] = m
	}
	for k, id := range b.urls {
		m[k] = id
	}
}

// shake copies the value at tokens of doc into ext[key], together with
// everything it references locally, and returns the copied values.
func (b *bundler) shake(ext map[string]any, key string, doc any, tokens []string) []any {
	if len(tokens) == 0 {
		ext[key] = doc
		return []any{doc}
	}
	bucket, ok := ext[key].(map[string]any)
	if !ok {
		bucket = make(map[string]any)
		ext[key] = bucket
	}

	prefix := pathutil.Fragment(b.externalsKey, key)
	var copied []any
	pending := [][]string{tokens}
	for len(pending) > 0 {
		toks := pending[0]
		pending = pending[1:]

		v, ok := document.GetTokens(doc, toks)
		if !ok || copiedWhole(bucket, doc, toks) {
			continue
		}
		if m, isMap := v.(map[string]any); isMap && !b.copied.Add(m) {
			continue
		}
		document.Set(bucket, toks, v)
		copied = append(copied, v)

		document.Walk(v, func(n map[string]any) bool {
			ref, ok := document.Ref(n)
			if !ok {
				return true
			}
			if rest, found := strings.CutPrefix(ref, prefix); found && (rest == "" || rest[0] == '/') {
				pending = append(pending, pathutil.Split("#"+rest))
			}
			return true
		})
	}
	return copied
}

// copiedWhole reports whether an ancestor of toks already sits in bucket as
// the source node itself, so the value at toks is embedded with it.
func copiedWhole(bucket map[string]any, doc any, toks []string) bool {
	for i := 0; i < len(toks); i++ {
		dst, ok := document.GetTokens(bucket, toks[:i])
		if !ok {
			return false
		}
		src, _ := document.GetTokens(doc, toks[:i])
		if document.SameNode(src, dst) {
			return true
		}
	}
	return false
}
