package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string

	Config      string
	Seed        uint64
	MetricsFile string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the destroy command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "destroy <pattern file> <objects> <max pool size> <max objects>",
		Short: "Search for still lifes that make a Life pattern die out",
		Long: `Search for a set of still lifes which, placed around a pattern, make the
whole configuration evolve into nothing.

The pattern file is a LifeHistory RLE. On cells are the pattern to destroy,
state 4 cells mark where objects may be placed and state 2 cells widen the
area the reaction may use. <pattern file>.rle is tried before <pattern file>.

<objects> is a digit for each type of object to be used:
1 = block, 2 = hive, 3 = blinker, 4 = loaf, 5 = boat`,
		Example:       "  destroy demonoid.rle 124 5000 32\n  destroy --db runs.db --seed 7 --format json demonoid 1 1000 8",
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, args, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite run journal")

	cmd.Flags().StringVar(&opts.Config, "config", "", "YAML file with search tuning")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed for pool selection (default: time based)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file at exit")

	cmd.AddCommand(NewShowCommand(opts))

	return cmd
}

// Execute runs the command line in args and returns the process exit code.
// Errors already reported by a command are not printed again.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", cmd.Name())
	return ExitCommandError
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
