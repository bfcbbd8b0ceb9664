package bundler

// NodeContext describes where a node sits in the document being bundled.
type NodeContext struct {
	// Path is the JSON pointer of the node, relative to the document it
	// was reached in ("" for that document's root).
	Path string
	// Parent is the closest enclosing object, or nil for the root.
	Parent map[string]any
	// Root is the document externals are stored in.
	Root map[string]any
}

// Hooks observe bundling. Any field may be nil.
type Hooks struct {
	// OnResolveStart is called before an external $ref is resolved.
	OnResolveStart func(node map[string]any)
	// OnResolveError is called when an external $ref cannot be fetched. The
	// $ref is left unchanged.
	OnResolveError func(node map[string]any)
	// OnResolveSuccess is called after the $ref of node has been rewritten
	// to its local form.
	OnResolveSuccess func(node map[string]any)
	// OnBeforeNodeProcess is called when a node is first visited, before its
	// $ref and children are processed. Changes it makes to node are seen by
	// the rest of the traversal.
	OnBeforeNodeProcess func(node map[string]any, nc NodeContext)
	// OnAfterNodeProcess is called once node and all of its children have
	// been processed.
	OnAfterNodeProcess func(node map[string]any, nc NodeContext)
}

type hookList []Hooks

func (hl hookList) resolveStart(node map[string]any) {
	for _, h := range hl {
		if h.OnResolveStart != nil {
			h.OnResolveStart(node)
		}
	}
}

func (hl hookList) resolveError(node map[string]any) {
	for _, h := range hl {
		if h.OnResolveError != nil {
			h.OnResolveError(node)
		}
	}
}

func (hl hookList) resolveSuccess(node map[string]any) {
	for _, h := range hl {
		if h.OnResolveSuccess != nil {
			h.OnResolveSuccess(node)
		}
	}
}

func (hl hookList) beforeNode(node map[string]any, nc NodeContext) {
	for _, h := range hl {
		if h.OnBeforeNodeProcess != nil {
			h.OnBeforeNodeProcess(node, nc)
		}
	}
}

func (hl hookList) afterNode(node map[string]any, nc NodeContext) {
	for _, h := range hl {
		if h.OnAfterNodeProcess != nil {
			h.OnAfterNodeProcess(node, nc)
		}
	}
}
