package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasref/document"
	"github.com/erraggy/oasref/resolver"
)

type resolveInput struct {
	Spec   specInput `json:"spec"             jsonschema:"The document to dereference"`
	Format string    `json:"format,omitempty" jsonschema:"Output format: yaml (default) or json"`
	Output string    `json:"output,omitempty" jsonschema:"File path to write the dereferenced document. If omitted the document is returned inline."`
}

type resolveOutput struct {
	Valid      bool       `json:"valid"`
	ErrorCount int        `json:"error_count"`
	Errors     []refError `json:"errors,omitempty"`
	Circular   bool       `json:"circular,omitempty"`
	WrittenTo  string     `json:"written_to,omitempty"`
	Document   string     `json:"document,omitempty"`
}

func handleResolve(ctx context.Context, _ *mcp.CallToolRequest, input resolveInput) (*mcp.CallToolResult, resolveOutput, error) {
	loaded, err := input.Spec.load(ctx)
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}

	// Resolve clones the filesystem, so the cached load result stays intact.
	result, err := resolver.Resolve(loaded.Filesystem)
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}

	output := resolveOutput{
		Valid:      result.Valid,
		ErrorCount: len(result.Errors),
		Errors:     toRefErrors(result.Errors),
	}
	if document.HasCycle(result.Schema) {
		output.Circular = true
		return nil, output, nil
	}

	output.Document, output.WrittenTo, err = renderDocument(result.Schema, input.Format, input.Output)
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}
	return nil, output, nil
}
