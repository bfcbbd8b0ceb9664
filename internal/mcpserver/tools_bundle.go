package mcpserver

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasref/bundler"
	"github.com/erraggy/oasref/document"
	"github.com/erraggy/oasref/oaslog"
)

type bundleInput struct {
	Spec      specInput `json:"spec"                 jsonschema:"The document to bundle"`
	TreeShake bool      `json:"tree_shake,omitempty" jsonschema:"Copy only the referenced parts of external documents"`
	URLMap    bool      `json:"url_map,omitempty"    jsonschema:"Record the source identifier of every x-ext key under x-ext-urls"`
	MaxDepth  int       `json:"max_depth,omitempty"  jsonschema:"Stop following references nested deeper than this (0 means unlimited)"`
	Format    string    `json:"format,omitempty"     jsonschema:"Output format: yaml (default) or json"`
	Output    string    `json:"output,omitempty"     jsonschema:"File path to write the bundled document. If omitted the document is returned inline."`
}

type bundleOutput struct {
	ExternalCount int      `json:"external_count"`
	Warnings      []string `json:"warnings,omitempty"`
	WrittenTo     string   `json:"written_to,omitempty"`
	Document      string   `json:"document,omitempty"`
}

// warningLog collects Warn messages so unresolved references can be
// reported to the client. Other levels are discarded.
type warningLog struct {
	oaslog.NopLogger
	mu       *sync.Mutex
	messages *[]string
}

func newWarningLog() warningLog {
	return warningLog{mu: &sync.Mutex{}, messages: new([]string)}
}

// Warn records msg followed by the identifier and error attributes, when
// present.
func (w warningLog) Warn(msg string, args ...any) {
	if id, ok := attrValue(args, "identifier"); ok {
		msg = fmt.Sprintf("%s (identifier: %v)", msg, id)
	}
	if err, ok := attrValue(args, "error"); ok && err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	*w.messages = append(*w.messages, msg)
}

// attrValue finds key in slog-style alternating key/value args.
func attrValue(args []any, key string) (any, bool) {
	for i := 0; i+1 < len(args); i += 2 {
		if k, ok := args[i].(string); ok && k == key {
			return args[i+1], true
		}
	}
	return nil, false
}

func (w warningLog) With(_ ...any) oaslog.Logger { return w }

func (w warningLog) collected() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), *w.messages...)
}

func handleBundle(ctx context.Context, _ *mcp.CallToolRequest, input bundleInput) (*mcp.CallToolResult, bundleOutput, error) {
	if input.MaxDepth < 0 {
		return errResult(fmt.Errorf("max_depth must not be negative")), bundleOutput{}, nil
	}

	loaded, err := input.Spec.load(ctx)
	if err != nil {
		return errResult(err), bundleOutput{}, nil
	}
	entry := loaded.Filesystem.Entrypoint()
	if entry == nil {
		return errResult(fmt.Errorf("no document loaded")), bundleOutput{}, nil
	}

	warnings := newWarningLog()
	opts := []bundler.Option{
		bundler.WithPlugins(plugins()...),
		bundler.WithOrigin(entry.URI),
		bundler.WithTreeShake(input.TreeShake),
		bundler.WithURLMap(input.URLMap),
		bundler.WithConcurrency(cfg.Concurrency),
		bundler.WithLogger(warnings),
	}
	if input.MaxDepth > 0 {
		opts = append(opts, bundler.WithDepth(input.MaxDepth))
	}

	// The bundler rewrites its input, and the loaded entry may be cached.
	bundled, err := bundler.Bundle(ctx, document.Clone(entry.Value), opts...)
	if err != nil {
		return errResult(err), bundleOutput{}, nil
	}

	output := bundleOutput{Warnings: makeSlice[string](len(warnings.collected()))}
	for _, msg := range warnings.collected() {
		output.Warnings = append(output.Warnings, pathPattern.ReplaceAllString(msg, "<path>"))
	}
	if root, ok := bundled.(map[string]any); ok {
		if ext, ok := root[bundler.DefaultExternalsKey].(map[string]any); ok {
			output.ExternalCount = len(ext)
		}
	}
	output.Document, output.WrittenTo, err = renderDocument(bundled, input.Format, input.Output)
	if err != nil {
		return errResult(err), bundleOutput{}, nil
	}
	return nil, output, nil
}
