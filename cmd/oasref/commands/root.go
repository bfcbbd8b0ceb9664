package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/oasref"
)

// NewRootCmd returns the oasref command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "oasref",
		Short: "Load, dereference and bundle JSON/YAML documents that use $ref",
		Long: `oasref follows $ref references in JSON and YAML documents such as OpenAPI
descriptions. It can list the documents a file depends on, inline every
reference, or bundle external documents into a single file.`,
		Version:       oasref.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		NewLoadCmd(),
		NewResolveCmd(),
		NewBundleCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)
	return root
}
