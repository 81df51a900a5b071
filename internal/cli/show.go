package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/simeksgol/GoL-destroy/internal/journal"
)

// showReport is the JSON payload of the show command.
type showReport struct {
	*journal.Run

	// SameSolution lists other runs that found the same placements.
	SameSolution []string `json:"same_solution,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a journaled run",
		Long: `Show a run recorded with --db: how it was invoked, the statistics of every
round and the solution if one was found.`,
		Example: "  destroy show --db runs.db 01928f3e-7c1a-7b3e-9a43-2f1c5d6e7a8b",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], cmd)
		},
	}
}

func runShow(opts *RootOptions, runID string, cmd *cobra.Command) error {
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Database == "" {
		return fail(f, ExitCommandError, ErrCodeUsage, "--db is required", nil)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	jr, err := journal.Open(opts.Database)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeJournal, "failed to open journal", err)
	}
	defer jr.Close()

	run, err := jr.ReadRun(ctx, runID)
	if err != nil {
		if errors.Is(err, journal.ErrRunNotFound) {
			return fail(f, ExitFailure, ErrCodeJournal, "run not found: "+runID, nil)
		}
		return fail(f, ExitCommandError, ErrCodeJournal, "failed to read run", err)
	}

	report := &showReport{Run: run}
	if run.Solution != nil {
		ids, err := jr.FindSolutions(ctx, run.Solution.Digest)
		if err != nil {
			return fail(f, ExitCommandError, ErrCodeJournal, "failed to look up solution", err)
		}
		for _, id := range ids {
			if id != run.ID {
				report.SameSolution = append(report.SameSolution, id)
			}
		}
	}

	if f.IsJSON() {
		return f.Success(report)
	}
	printRun(f, report)
	return nil
}

func printRun(f *OutputFormatter, r *showReport) {
	info := r.Info
	f.Printf("Run %s\n", r.ID)
	f.Printf("  Pattern:     %s\n", info.Pattern)
	f.Printf("  Objects:     %s\n", info.Objects)
	f.Printf("  Pool size:   %d\n", info.MaxPoolSize)
	f.Printf("  Max objects: %d\n", info.MaxObjects)
	f.Printf("  Seed:        %d\n", info.Seed)
	f.Printf("  Placements:  %d\n", info.Placements)
	f.Printf("  Started:     %s\n", r.StartedAt.Format(time.RFC3339))
	if r.FinishedAt.IsZero() {
		f.Printf("  Outcome:     (unfinished)\n")
	} else {
		f.Printf("  Finished:    %s\n", r.FinishedAt.Format(time.RFC3339))
		f.Printf("  Outcome:     %s after %d rounds\n", r.Outcome, r.Rounds)
	}

	if len(r.Trace) > 0 {
		f.Printf("\nRounds:\n")
	}
	for _, s := range r.Trace {
		f.Printf("  %3d objects: %d filtered, %d unfiltered, %d kept", s.Objects, s.Filtered, s.Unfiltered, s.Kept)
		if s.Cutoff > 0 {
			f.Printf(", cost range %d - %d", s.LowestCost, s.Cutoff)
		}
		f.Printf("\n")
	}

	sol := r.Solution
	if sol == nil {
		return
	}
	f.Printf("\nSolution %s:\n", sol.Digest)
	for i, p := range sol.Placements {
		f.Printf("  Object %2d: type %d at (%d, %d)\n", i+1, p.Type, p.X, p.Y)
	}
	for k, c := range sol.PrefixCosts {
		f.Printf("  Cost with first %2d objects: %4d\n", k+1, c)
	}
	if sol.Pattern != "" {
		f.Printf("\n%s", sol.Pattern)
	}
	for _, id := range r.SameSolution {
		f.Printf("Also found by run %s\n", id)
	}
}
