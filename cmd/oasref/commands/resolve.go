package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erraggy/oasref/dereference"
	"github.com/erraggy/oasref/internal/cliutil"
	"github.com/erraggy/oasref/validate"
)

// ResolveFlags contains flags for the resolve command
type ResolveFlags struct {
	FetchFlags
	OutputFlags
	Schema string
	Strict bool
}

// NewResolveCmd returns the resolve command.
func NewResolveCmd() *cobra.Command {
	flags := &ResolveFlags{}
	cmd := &cobra.Command{
		Use:   "resolve [flags] <file|url|->",
		Short: "Replace every $ref with the content it points to",
		Long: `Resolve loads a document and every document it references, then replaces
each $ref with a copy of its target. Keys written next to a $ref take
precedence over the target's keys.

Recursive documents cannot be written as JSON or YAML; resolve fails for
them after listing any reference errors.`,
		Example: `  oasref resolve openapi.yaml
  oasref resolve -f json -o resolved.json openapi.yaml
  oasref resolve --schema openapi-3.1.schema.json openapi.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args[0], flags)
		},
	}
	flags.FetchFlags.register(cmd)
	flags.OutputFlags.register(cmd)
	cmd.Flags().StringVar(&flags.Schema, "schema", "", "validate the document against this JSON Schema before resolving")
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "stop at the first reference or validation error")
	return cmd
}

func runResolve(cmd *cobra.Command, arg string, flags *ResolveFlags) error {
	input, err := readInput(cmd, arg)
	if err != nil {
		return err
	}

	opts := []dereference.Option{
		dereference.WithPlugins(flags.plugins()...),
		dereference.WithConcurrency(flags.Concurrency),
		dereference.WithThrowOnError(flags.Strict),
		dereference.WithLogger(flags.logger(cmd.ErrOrStderr())),
	}
	if flags.Schema != "" {
		data, err := os.ReadFile(flags.Schema)
		if err != nil {
			return fmt.Errorf("reading schema: %w", err)
		}
		v, err := validate.NewJSONSchema(data)
		if err != nil {
			return err
		}
		opts = append(opts, dereference.WithValidator(v))
	}

	result, err := dereference.Dereference(cmd.Context(), input, opts...)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if report := result.Validation; report != nil && !report.Valid {
		cliutil.Writef(stderr, "Validation Errors:\n")
		for _, e := range report.Errors {
			cliutil.Writef(stderr, "  - %s: %s\n", e.Path, e.Message)
		}
	}
	printErrors(stderr, "Reference Errors", result.Errors)

	if result.Schema != nil {
		if err := flags.write(cmd, result.Schema); err != nil {
			return err
		}
	}
	switch {
	case len(result.Errors) > 0:
		return fmt.Errorf("document has %d reference error(s)", len(result.Errors))
	case !result.Valid:
		return fmt.Errorf("document failed validation")
	}
	return nil
}
