package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/oasref"
	"github.com/erraggy/oasref/internal/cliutil"
)

// NewVersionCmd returns the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cliutil.Writef(cmd.OutOrStdout(), "oasref %s\n%s\n", oasref.Version(), oasref.BuildInfo())
		},
	}
}
