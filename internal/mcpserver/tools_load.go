package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type loadInput struct {
	Spec specInput `json:"spec" jsonschema:"The document to load"`
}

type loadedDocument struct {
	URI        string   `json:"uri,omitempty"`
	Entrypoint bool     `json:"entrypoint,omitempty"`
	References []string `json:"references,omitempty"`
}

type loadOutput struct {
	DocumentCount int              `json:"document_count"`
	Documents     []loadedDocument `json:"documents"`
	Errors        []refError       `json:"errors,omitempty"`
}

func handleLoad(ctx context.Context, _ *mcp.CallToolRequest, input loadInput) (*mcp.CallToolResult, loadOutput, error) {
	result, err := input.Spec.load(ctx)
	if err != nil {
		return errResult(err), loadOutput{}, nil
	}

	output := loadOutput{
		DocumentCount: len(result.Filesystem),
		Documents:     makeSlice[loadedDocument](len(result.Filesystem)),
		Errors:        toRefErrors(result.Errors),
	}
	for _, entry := range result.Filesystem {
		output.Documents = append(output.Documents, loadedDocument{
			URI:        entry.URI,
			Entrypoint: entry.IsEntrypoint,
			References: entry.References,
		})
	}
	return nil, output, nil
}
