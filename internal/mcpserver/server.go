// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes oasref loading, resolution and bundling as MCP tools over stdio.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasref"
	"github.com/erraggy/oasref/internal/cliutil"
	"github.com/erraggy/oasref/internal/fileutil"
	"github.com/erraggy/oasref/oaserrors"
)

const serverInstructions = `oasref MCP server: loads, dereferences and bundles JSON/YAML API description documents that use $ref.

Configuration: All defaults are configurable via OASREF_* environment variables set in your MCP client config.

Key settings:
- OASREF_CACHE_FILE_TTL (default: 15m): cache TTL for local file documents
- OASREF_CACHE_URL_TTL (default: 5m): cache TTL for URL-fetched documents
- OASREF_CACHE_ENABLED (default: true): disable document caching entirely
- OASREF_FETCH_LIMIT (default: 20): maximum remote documents fetched per call
- OASREF_CONCURRENCY (default: 8): maximum concurrent fetches
- OASREF_ALLOW_PRIVATE_IPS (default: false): allow fetching from private/loopback addresses

Caching: Loaded documents are cached per session. File entries use path+mtime as key (auto-invalidated on change). URL entries are cached with a shorter TTL. A background sweeper removes expired entries every 60s.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		specCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "oasref", Version: oasref.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "load",
		Description: "Load a document and every external document it references through $ref, directly or transitively. Returns each loaded document's identifier and the external references it contains. Use this first to see which files or URLs a document depends on.",
	}, handleLoad)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve",
		Description: "Dereference every $ref in a document, inlining the referenced content. Returns the dereferenced document and any reference errors (INVALID_REFERENCE, EXTERNAL_REFERENCE_NOT_FOUND, SELF_REFERENCE). Recursive schemas cannot be serialized; when the result is circular only the errors are returned. Use output to write the document to a file instead of returning it inline.",
	}, handleResolve)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bundle",
		Description: "Bundle a document and its external references into a single document. External content is moved under x-ext and references are rewritten to local ones. Use tree_shake to copy only the referenced parts of external documents, url_map to record which source each x-ext key came from, and max_depth to stop following references past a nesting depth.",
	}, handleBundle)
}

// refError is the JSON shape of a reference error in tool output.
type refError struct {
	Code    string `json:"code,omitempty"`
	Ref     string `json:"ref,omitempty"`
	Message string `json:"message"`
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

func toRefErrors(errs []error) []refError {
	out := makeSlice[refError](len(errs))
	for _, err := range errs {
		var refErr *oaserrors.ReferenceError
		if errors.As(err, &refErr) {
			out = append(out, refError{Code: string(refErr.Code), Ref: refErr.Ref, Message: sanitizeError(err)})
			continue
		}
		out = append(out, refError{Message: sanitizeError(err)})
	}
	return out
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// renderDocument encodes doc and either writes it to output or returns it
// inline.
func renderDocument(doc any, format, output string) (inline, writtenTo string, err error) {
	data, err := cliutil.Encode(doc, format)
	if err != nil {
		return "", "", err
	}
	if output != "" {
		safe, err := fileutil.SanitizeOutputPath(output)
		if err != nil {
			return "", "", err
		}
		if err := fileutil.WriteOutput(safe, data); err != nil {
			return "", "", fmt.Errorf("failed to write output file: %w", err)
		}
		return "", safe, nil
	}
	return string(data), "", nil
}
