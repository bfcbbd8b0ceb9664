package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/oasref/internal/mcpserver"
)

// NewMCPCmd returns the mcp command.
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the load, resolve and bundle tools over MCP on stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout. Defaults are read
from OASREF_* environment variables; see the server instructions for the
full list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mcpserver.Run(cmd.Context())
		},
	}
}
