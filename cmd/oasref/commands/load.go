package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/oasref/internal/cliutil"
	"github.com/erraggy/oasref/loader"
)

// LoadFlags contains flags for the load command
type LoadFlags struct {
	FetchFlags
	Format string
}

// loadedDocument is the structured form of one filesystem entry.
type loadedDocument struct {
	URI        string   `json:"uri,omitempty"        yaml:"uri,omitempty"`
	Entrypoint bool     `json:"entrypoint,omitempty" yaml:"entrypoint,omitempty"`
	References []string `json:"references,omitempty" yaml:"references,omitempty"`
}

// NewLoadCmd returns the load command.
func NewLoadCmd() *cobra.Command {
	flags := &LoadFlags{}
	cmd := &cobra.Command{
		Use:   "load [flags] <file|url|->",
		Short: "List a document and every external document it references",
		Example: `  oasref load openapi.yaml
  oasref load --format json https://example.com/api/openapi.yaml
  cat openapi.yaml | oasref load -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, args[0], flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.Format, "format", "f", "text", "output format: text, yaml or json")
	return cmd
}

func runLoad(cmd *cobra.Command, arg string, flags *LoadFlags) error {
	input, err := readInput(cmd, arg)
	if err != nil {
		return err
	}
	result, err := loader.Load(cmd.Context(), input,
		loader.WithPlugins(flags.plugins()...),
		loader.WithConcurrency(flags.Concurrency),
		loader.WithThrowOnError(true),
		loader.WithLogger(flags.logger(cmd.ErrOrStderr())),
	)
	if err != nil {
		return err
	}

	docs := make([]loadedDocument, 0, len(result.Filesystem))
	for _, entry := range result.Filesystem {
		docs = append(docs, loadedDocument{
			URI:        entry.URI,
			Entrypoint: entry.IsEntrypoint,
			References: entry.References,
		})
	}

	if flags.Format != "text" {
		out := OutputFlags{Format: flags.Format}
		return out.write(cmd, docs)
	}

	w := cmd.OutOrStdout()
	for _, doc := range docs {
		name := doc.URI
		if name == "" {
			name = "<stdin>"
		}
		if doc.Entrypoint {
			cliutil.Writef(w, "%s (entrypoint)\n", name)
		} else {
			cliutil.Writef(w, "%s\n", name)
		}
		for _, ref := range doc.References {
			cliutil.Writef(w, "  -> %s\n", ref)
		}
	}
	cliutil.Writef(cmd.ErrOrStderr(), "Loaded %d document(s)\n", len(docs))
	return nil
}
