package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/simeksgol/GoL-destroy/internal/catalog"
	"github.com/simeksgol/GoL-destroy/internal/config"
	"github.com/simeksgol/GoL-destroy/internal/grid"
	"github.com/simeksgol/GoL-destroy/internal/journal"
	"github.com/simeksgol/GoL-destroy/internal/problem"
	"github.com/simeksgol/GoL-destroy/internal/search"
)

// Error codes for failures outside pattern file input, which use the
// problem package codes.
const (
	ErrCodeUsage       = "E001" // Malformed numeric argument or limit exceeded
	ErrCodeConfig      = "E002" // Config file unreadable or invalid
	ErrCodeCapacity    = "E003" // A fixed capacity was exceeded
	ErrCodeJournal     = "E004" // Run journal could not be written
	ErrCodeInterrupted = "E005" // Search cancelled by a signal
	ErrCodeNoSolution  = "E006" // Search ended without a solution
	ErrCodeSearch      = "E007" // Any other search failure
)

// searchReport is the JSON payload of a finished search.
type searchReport struct {
	RunID           string `json:"run_id,omitempty"`
	Source          string `json:"source"`
	Objects         string `json:"objects"`
	Seed            uint64 `json:"seed"`
	Placements      int    `json:"placements"`
	RemovedCatalyst int    `json:"removed_catalyst"`

	*search.Result

	// SolutionPattern is the solved pattern as LifeHistory, objects marked.
	SolutionPattern string `json:"solution_pattern,omitempty"`
}

func newLogger(opts *RootOptions, cmd *cobra.Command) *slog.Logger {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler)
}

// fail reports an error through the formatter and returns it with its exit
// code attached.
func fail(f *OutputFormatter, exitCode int, code, message string, err error) error {
	text := message
	if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(code, text, nil)
	return WrapExitError(exitCode, message, err)
}

func inputFailure(f *OutputFormatter, err error) error {
	var ie *problem.InputError
	if errors.As(err, &ie) {
		_ = f.Error(ie.Code, ie.Error(), nil)
		return WrapExitError(ExitCommandError, ie.Message, err)
	}
	return fail(f, ExitCommandError, ErrCodeUsage, "invalid input", err)
}

func parseCount(s, name string) (int, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("illegal <%s> parameter %q", name, s)
	}
	return int(n), nil
}

func runSearch(opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts, cmd)
	slog.SetDefault(logger)

	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return fail(f, ExitCommandError, ErrCodeConfig, "failed to load config", err)
		}
	}

	p, err := problem.Load(args[0])
	if err != nil {
		return inputFailure(f, err)
	}
	sel, err := problem.ParseObjects(args[1])
	if err != nil {
		return inputFailure(f, err)
	}
	maxPool, err := parseCount(args[2], "max pool size")
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeUsage, err.Error(), nil)
	}
	maxObjects, err := parseCount(args[3], "max objects")
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeUsage, err.Error(), nil)
	}
	if maxObjects > cfg.MaxObjectsLimit {
		return fail(f, ExitCommandError, ErrCodeUsage,
			fmt.Sprintf("max value for <max objects> is %d", cfg.MaxObjectsLimit), nil)
	}
	if err := p.CheckActive(); err != nil {
		return inputFailure(f, err)
	}

	removed := p.Preprocess()
	f.Diagf("Parsed pattern file:\n")
	if err := p.WriteLifeHistory(f.GetErrWriter()); err != nil {
		return fail(f, ExitFailure, ErrCodeSearch, "failed to print pattern", err)
	}
	if removed > 0 {
		f.Diagf("\nNote: %d cells with state 4 were too close to an on-cell and were changed\nto state 2\n", removed)
	}

	seed := opts.Seed
	if !cmd.Flags().Changed("seed") {
		seed = uint64(time.Now().UnixNano())
	}

	reg := prometheus.NewRegistry()
	rep := &reporter{f: f, logger: logger}
	cat := catalog.New(sel)
	d, err := search.New(p.Task(), cat,
		search.WithParams(cfg.SearchParams(maxPool, maxObjects)),
		search.WithRand(rand.New(rand.NewPCG(seed, seed))),
		search.WithLogger(logger),
		search.WithMetrics(search.NewMetrics(reg)),
		search.WithReporter(rep),
	)
	if err != nil {
		if search.IsCapacityError(err) {
			return fail(f, ExitCommandError, ErrCodeCapacity, "capacity exceeded", err)
		}
		return fail(f, ExitCommandError, ErrCodeConfig, "invalid search parameters", err)
	}
	f.Diagf("\nPossible objects in allowed area: %d\n\n", d.Placements())

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping after this round", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	report := &searchReport{
		Source:          p.Source,
		Objects:         args[1],
		Seed:            seed,
		Placements:      d.Placements(),
		RemovedCatalyst: removed,
	}

	if opts.Database != "" {
		jr, err := journal.Open(opts.Database)
		if err != nil {
			return fail(f, ExitCommandError, ErrCodeJournal, "failed to open journal", err)
		}
		defer func() {
			if closeErr := jr.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()
		report.RunID, err = jr.StartRun(ctx, journal.RunInfo{
			Pattern:         p.Source,
			Objects:         args[1],
			MaxPoolSize:     maxPool,
			MaxObjects:      maxObjects,
			Seed:            seed,
			Placements:      d.Placements(),
			RemovedCatalyst: removed,
		})
		if err != nil {
			return fail(f, ExitCommandError, ErrCodeJournal, "failed to start run", err)
		}
		rep.journal, rep.runID, rep.ctx = jr, report.RunID, ctx
		logger.Info("journaling run", "db", opts.Database, "run_id", report.RunID)
	}

	res, runErr := d.Run(ctx)
	if res != nil {
		report.Result = res
	}
	if rep.journal != nil && res != nil {
		// The run context may be cancelled; the outcome is still recorded.
		if err := rep.journal.FinishRun(context.Background(), rep.runID, res.Outcome, res.Rounds); err != nil {
			logger.Warn("failed to finish journal run", "error", err)
		}
	}
	writeMetrics(opts.MetricsFile, reg, logger)

	if runErr != nil {
		switch {
		case errors.Is(runErr, context.Canceled):
			return fail(f, ExitFailure, ErrCodeInterrupted, "search interrupted", nil)
		case search.IsCapacityError(runErr):
			return fail(f, ExitCommandError, ErrCodeCapacity, "capacity exceeded", runErr)
		default:
			return fail(f, ExitFailure, ErrCodeSearch, "search failed", runErr)
		}
	}

	if sol := res.Solution; sol != nil {
		var sb strings.Builder
		if err := writeMarked(&sb, sol.Pattern, sol.Objects); err != nil {
			return fail(f, ExitFailure, ErrCodeSearch, "failed to print solution", err)
		}
		report.SolutionPattern = sb.String()
		if rep.journal != nil {
			if err := rep.journal.RecordSolution(context.Background(), rep.runID, sol, report.SolutionPattern); err != nil {
				logger.Warn("failed to journal solution", "error", err)
			}
		}
	}

	if f.IsJSON() {
		if err := f.Success(report); err != nil {
			return err
		}
	} else {
		printResult(f, cat, res, report.SolutionPattern)
	}

	if res.Outcome != search.OutcomeSuccess {
		if f.IsJSON() {
			return NewExitError(ExitFailure, "no solution found")
		}
		return fail(f, ExitFailure, ErrCodeNoSolution, fmt.Sprintf("no solution found (%s)", res.Outcome), nil)
	}
	return nil
}

func printResult(f *OutputFormatter, cat *catalog.Catalog, res *search.Result, solutionPattern string) {
	sol := res.Solution
	if sol == nil {
		return
	}
	f.Printf("Found a solution:\n\n")
	f.Printf("%s\n", solutionPattern)
	for i, p := range sol.Placements {
		shape := cat.Shape(p.Type)
		f.Printf("Object %2d: %-10s at (%d, %d)\n", i+1, shape.Name, p.X, p.Y)
	}
	for k, c := range sol.PrefixCosts {
		f.Printf("Cost with first %2d objects: %4d\n", k+1, c)
	}
}

// writeMarked prints pattern as LifeHistory with the cells of objects
// marked.
func writeMarked(w io.Writer, pattern, objects *grid.Grid) error {
	l := grid.Layers{On: pattern, Marked: objects}
	return grid.FormatLifeHistory(w, l.Bounds(), l)
}

func writeMetrics(path string, reg *prometheus.Registry, logger *slog.Logger) {
	if path == "" {
		return
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		logger.Warn("failed to write metrics file", "path", path, "error", err)
	}
}
