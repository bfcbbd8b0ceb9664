package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erraggy/oasref/bundler"
	"github.com/erraggy/oasref/document"
)

// BundleFlags contains flags for the bundle command
type BundleFlags struct {
	FetchFlags
	OutputFlags
	TreeShake    bool
	URLMap       bool
	Depth        int
	ExternalsKey string
}

// NewBundleCmd returns the bundle command.
func NewBundleCmd() *cobra.Command {
	flags := &BundleFlags{}
	cmd := &cobra.Command{
		Use:   "bundle [flags] <file|url|->",
		Short: "Combine a document and its external references into one document",
		Long: `Bundle copies every externally referenced document into the x-ext section of
the entrypoint and rewrites each external $ref to point at the copy. Local
references keep working because they are re-rooted under the copy's key.

References that cannot be fetched are reported as warnings and left as they
are.`,
		Example: `  oasref bundle openapi.yaml
  oasref bundle --tree-shake -o bundled.yaml openapi.yaml
  oasref bundle --url-map --depth 3 https://example.com/api/openapi.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundle(cmd, args[0], flags)
		},
	}
	flags.FetchFlags.register(cmd)
	flags.OutputFlags.register(cmd)
	cmd.Flags().BoolVar(&flags.TreeShake, "tree-shake", false, "copy only the referenced parts of external documents")
	cmd.Flags().BoolVar(&flags.URLMap, "url-map", false, "record the source of every externals key under <externals-key>-urls")
	cmd.Flags().IntVar(&flags.Depth, "depth", -1, "stop following references nested deeper than this (-1 means unlimited)")
	cmd.Flags().StringVar(&flags.ExternalsKey, "externals-key", bundler.DefaultExternalsKey, "root property external documents are stored under")
	return cmd
}

func runBundle(cmd *cobra.Command, arg string, flags *BundleFlags) error {
	input, err := readInput(cmd, arg)
	if err != nil {
		return err
	}

	opts := []bundler.Option{
		bundler.WithPlugins(flags.plugins()...),
		bundler.WithConcurrency(flags.Concurrency),
		bundler.WithTreeShake(flags.TreeShake),
		bundler.WithURLMap(flags.URLMap),
		bundler.WithExternalsKey(flags.ExternalsKey),
		bundler.WithLogger(flags.logger(cmd.ErrOrStderr())),
	}
	if flags.Depth >= 0 {
		opts = append(opts, bundler.WithDepth(flags.Depth))
	}

	bundled, err := bundler.Bundle(cmd.Context(), input, opts...)
	if err != nil {
		return err
	}
	if document.HasCycle(bundled) {
		return fmt.Errorf("bundled document is circular")
	}
	return flags.write(cmd, bundled)
}
