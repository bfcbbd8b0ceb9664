// Package commands provides CLI command handlers for oasref.
package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/erraggy/oasref/document"
	"github.com/erraggy/oasref/internal/cliutil"
	"github.com/erraggy/oasref/internal/fileutil"
	"github.com/erraggy/oasref/oaslog"
	"github.com/erraggy/oasref/source"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// FetchFlags holds the flags shared by every command that reads documents.
type FetchFlags struct {
	FetchLimit  int
	Concurrency int
	Verbose     bool
}

func (f *FetchFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.FetchLimit, "fetch-limit", source.DefaultFetchLimit, "maximum number of remote documents to fetch")
	cmd.Flags().IntVar(&f.Concurrency, "concurrency", 8, "maximum number of concurrent fetches")
	cmd.Flags().BoolVarP(&f.Verbose, "verbose", "v", false, "log fetches and reference errors to stderr at debug level")
}

func (f *FetchFlags) plugins() []source.Plugin {
	return []source.Plugin{
		source.NewInline(),
		source.NewURL(source.WithFetchLimit(f.FetchLimit), source.WithConcurrency(f.Concurrency)),
		source.NewFile(),
	}
}

// logger writes warnings, such as references the bundler could not fetch,
// to w. Verbose mode adds debug output.
func (f *FetchFlags) logger(w io.Writer) oaslog.Logger {
	level := slog.LevelWarn
	if f.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return oaslog.NewSlogAdapter(slog.New(handler))
}

// OutputFlags holds the flags of commands that emit a document.
type OutputFlags struct {
	Format string
	Output string
}

func (f *OutputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Format, "format", "f", cliutil.FormatYAML, "output format: yaml or json")
	cmd.Flags().StringVarP(&f.Output, "output", "o", "", "write the document to this file instead of stdout")
}

// write encodes doc and sends it to the output file or stdout.
func (f *OutputFlags) write(cmd *cobra.Command, doc any) error {
	data, err := cliutil.Encode(doc, f.Format)
	if err != nil {
		return err
	}
	if f.Output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := fileutil.WriteOutput(f.Output, data); err != nil {
		return err
	}
	cliutil.Writef(cmd.ErrOrStderr(), "Wrote %s\n", f.Output)
	return nil
}

// readInput returns what the library packages accept for arg: the decoded
// document when arg is "-", otherwise the path or URL itself.
func readInput(cmd *cobra.Command, arg string) (any, error) {
	if arg != StdinFilePath {
		return arg, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	value, _, err := document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing stdin: %w", err)
	}
	return value, nil
}

// printErrors lists errs on w under a heading.
func printErrors(w io.Writer, heading string, errs []error) {
	if len(errs) == 0 {
		return
	}
	cliutil.Writef(w, "%s:\n", heading)
	for _, err := range errs {
		cliutil.Writef(w, "  - %s\n", err)
	}
}
