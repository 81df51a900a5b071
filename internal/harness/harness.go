package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/simeksgol/GoL-destroy/internal/catalog"
	"github.com/simeksgol/GoL-destroy/internal/grid"
	"github.com/simeksgol/GoL-destroy/internal/ir"
	"github.com/simeksgol/GoL-destroy/internal/journal"
	"github.com/simeksgol/GoL-destroy/internal/problem"
	"github.com/simeksgol/GoL-destroy/internal/search"
	"github.com/simeksgol/GoL-destroy/internal/testutil"
)

// Harness is the test execution engine.
// It runs one scenario against a fresh in-memory journal.
type Harness struct {
	journal *journal.Journal
	clock   *testutil.DeterministicClock
	runID   string
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Parse the pattern the way the destroy command does
// 2. Create a fresh in-memory journal with deterministic clock and run ID
// 3. Run the search, journaling every round
// 4. Read the run back and evaluate the assertions
//
// An error is returned only when the scenario cannot run at all; failed
// assertions are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	p, err := problem.Parse([]byte(scenario.Pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pattern: %w", err)
	}
	if err := p.CheckActive(); err != nil {
		return nil, err
	}
	sel, err := problem.ParseObjects(scenario.Objects)
	if err != nil {
		return nil, err
	}

	clock := testutil.NewDeterministicClock()
	ids := testutil.NewFixedIDGenerator(scenario.RunID)
	jr, err := journal.Open(":memory:", journal.WithClock(clock), journal.WithIDGenerator(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer jr.Close()

	h := &Harness{
		journal: jr,
		clock:   clock,
		runID:   ids.NewID(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	result, err := h.execute(context.Background(), scenario, p, catalog.New(sel))
	if err != nil {
		return nil, err
	}

	for i, a := range scenario.Assertions {
		if err := checkAssertion(result, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return result, nil
}

func (h *Harness) execute(ctx context.Context, s *Scenario, p *problem.Problem, cat *catalog.Catalog) (*Result, error) {
	removed := p.Preprocess()

	d, err := search.New(p.Task(), cat,
		search.WithParams(search.DefaultParams(s.MaxPoolSize, s.MaxObjects)),
		search.WithRand(rand.New(rand.NewPCG(s.Seed, s.Seed))),
		search.WithLogger(h.logger),
		search.WithReporter(&journalReporter{h: h, ctx: ctx}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	if _, err := h.journal.StartRun(ctx, journal.RunInfo{
		Pattern:         s.Name,
		Objects:         s.Objects,
		MaxPoolSize:     s.MaxPoolSize,
		MaxObjects:      s.MaxObjects,
		Seed:            s.Seed,
		Placements:      d.Placements(),
		RemovedCatalyst: removed,
	}); err != nil {
		return nil, err
	}

	res, err := d.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if err := h.journal.FinishRun(ctx, h.runID, res.Outcome, res.Rounds); err != nil {
		return nil, err
	}
	if sol := res.Solution; sol != nil {
		var sb strings.Builder
		l := grid.Layers{On: sol.Pattern, Marked: sol.Objects}
		if err := grid.FormatLifeHistory(&sb, l.Bounds(), l); err != nil {
			return nil, err
		}
		if err := h.journal.RecordSolution(ctx, h.runID, sol, sb.String()); err != nil {
			return nil, err
		}
	}

	stored, err := h.journal.ReadRun(ctx, h.runID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back run: %w", err)
	}

	result := NewResult()
	result.Outcome = res.Outcome
	result.Rounds = res.Rounds
	result.Trace = res.Trace
	result.Solution = res.Solution
	result.Placements = d.Placements()
	result.RemovedCatalyst = removed
	result.Stored = stored
	return result, nil
}

// journalReporter records every finished round in the harness journal.
type journalReporter struct {
	h   *Harness
	ctx context.Context
}

func (r *journalReporter) Intermediate(int, ir.Candidate, *grid.Grid, *grid.Grid) {}

func (r *journalReporter) RoundFinished(stats search.RoundStats) {
	if err := r.h.journal.RecordRound(r.ctx, r.h.runID, stats); err != nil {
		r.h.logger.Error("failed to journal round", "objects", stats.Objects, "error", err)
	}
}
