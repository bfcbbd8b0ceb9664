// Package loader reads a document and every external document it references,
// directly or transitively, into a [filesystem.Filesystem].
//
//	result, err := loader.Load(ctx, "openapi.yaml")
//	if err != nil {
//	    return err
//	}
//	for _, entry := range result.Filesystem {
//	    fmt.Println(entry.URI, entry.References)
//	}
//
// Documents referenced by the same parent are fetched concurrently. A
// reference that cannot be fetched (no plugin accepts it, the fetch fails,
// or the URL plugin's fetch limit is reached) is logged and left out of the
// filesystem; the resolver reports it when it is dereferenced.
package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/erraggy/oasref/document"
	"github.com/erraggy/oasref/filesystem"
	"github.com/erraggy/oasref/oaserrors"
	"github.com/erraggy/oasref/source"
)

// Result is the outcome of Load.
type Result struct {
	// Filesystem holds the entrypoint followed by every loaded dependency.
	Filesystem filesystem.Filesystem
	// Errors lists problems with the input itself.
	Errors []error
}

// Load builds a Filesystem from input: a map or slice, JSON or YAML text,
// an identifier (path or URL) a plugin accepts, or an existing Filesystem
// whose missing references should be loaded.
func Load(ctx context.Context, input any, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("loader: invalid options: %w", err)
	}
	l := &loader{loadConfig: cfg}

	result := &Result{}
	fs, err := l.entrypoint(ctx, input)
	if err != nil {
		if cfg.throwOnError || !errors.Is(err, oaserrors.ErrReference) {
			return nil, err
		}
		result.Errors = append(result.Errors, err)
		return result, nil
	}

	if err := l.loadReferences(ctx, &fs); err != nil {
		return nil, err
	}
	result.Filesystem = fs
	return result, nil
}

type loader struct {
	*loadConfig
}

func (l *loader) entrypoint(ctx context.Context, input any) (filesystem.Filesystem, error) {
	switch v := input.(type) {
	case filesystem.Filesystem:
		return v, nil
	case string:
		if strings.TrimSpace(v) != "" && !document.LooksLikeDocument(v) {
			return l.fetchEntrypoint(ctx, v)
		}
	}

	value, err := document.Normalize(input)
	if err != nil {
		return nil, err
	}
	return filesystem.Filesystem{filesystem.NewEntry(value, l.source, true)}, nil
}

func (l *loader) fetchEntrypoint(ctx context.Context, identifier string) (filesystem.Filesystem, error) {
	notFound := func(cause error) error {
		return &oaserrors.ReferenceError{
			Code:    oaserrors.CodeExternalReferenceNotFound,
			Ref:     identifier,
			Message: "Can’t resolve external reference: " + identifier,
			Cause:   cause,
		}
	}

	id := l.plugins.ResolveIdentifier(l.source, identifier)
	plugin := l.plugins.Find(id)
	if plugin == nil {
		return nil, notFound(nil)
	}
	content, err := plugin.Fetch(ctx, id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, notFound(err)
	}
	if content.Identifier != "" {
		id = content.Identifier
	}
	l.logger.Debug("loaded entrypoint", "id", id, "plugin", plugin.Name())
	return filesystem.Filesystem{filesystem.NewEntry(content.Value, id, true)}, nil
}

// loadReferences fetches missing references breadth first. Each level is
// fetched concurrently and appended in reference order.
func (l *loader) loadReferences(ctx context.Context, fs *filesystem.Filesystem) error {
	queue := append([]*filesystem.Entry(nil), (*fs)...)
	for len(queue) > 0 {
		var pending []string
		seen := make(map[string]bool)
		for _, entry := range queue {
			if entry.Resolved == nil {
				entry.Resolved = make(map[string]string)
			}
			for _, prefix := range entry.References {
				id := l.plugins.ResolveIdentifier(entry.URI, prefix)
				entry.Resolved[prefix] = id
				if seen[id] || fs.Find(id) != nil {
					continue
				}
				seen[id] = true
				pending = append(pending, id)
			}
		}

		contents, err := l.fetchAll(ctx, pending)
		if err != nil {
			return err
		}

		queue = queue[:0]
		for i, c := range contents {
			if c == nil {
				continue
			}
			entry := filesystem.NewEntry(c.Value, pending[i], false)
			if fs.Add(entry) {
				queue = append(queue, entry)
			}
		}
	}
	return nil
}

func (l *loader) fetchAll(ctx context.Context, ids []string) ([]*source.Content, error) {
	contents := make([]*source.Content, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			plugin := l.plugins.Find(id)
			if plugin == nil {
				l.logger.Warn("no source plugin accepts reference", "id", id)
				return nil
			}
			content, err := plugin.Fetch(gctx, id)
			switch {
			case err == nil:
				contents[i] = content
				l.logger.Debug("loaded reference", "id", id, "plugin", plugin.Name())
			case errors.Is(err, oaserrors.ErrResourceLimit):
				l.logger.Debug("skipped reference", "id", id, "reason", err.Error())
			default:
				l.logger.Warn("failed to load reference", "id", id, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return contents, nil
}
