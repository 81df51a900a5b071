package cli

import (
	"context"
	"log/slog"

	"github.com/simeksgol/GoL-destroy/internal/grid"
	"github.com/simeksgol/GoL-destroy/internal/ir"
	"github.com/simeksgol/GoL-destroy/internal/journal"
	"github.com/simeksgol/GoL-destroy/internal/search"
)

// reporter prints search progress and, when a journal is open, records
// every finished round.
type reporter struct {
	f      *OutputFormatter
	logger *slog.Logger

	journal *journal.Journal
	runID   string
	ctx     context.Context
}

func (r *reporter) Intermediate(objects int, c ir.Candidate, pattern, objectGrid *grid.Grid) {
	r.f.Diagf("Lowest cost (%d) intermediate:\n", c.Cost)
	if err := writeMarked(r.f.GetErrWriter(), pattern, objectGrid); err != nil {
		r.logger.Warn("failed to print intermediate", "objects", objects, "error", err)
	}
	r.f.Diagf("\n")
}

func (r *reporter) RoundFinished(stats search.RoundStats) {
	if stats.Cutoff > 0 {
		r.f.Printf("%d objects, cost range: %d - %d\n", stats.Objects, stats.LowestCost, stats.Cutoff)
	}
	r.logger.Debug("round finished",
		"objects", stats.Objects,
		"filtered", stats.Filtered,
		"unfiltered", stats.Unfiltered,
		"kept", stats.Kept)

	if r.journal == nil {
		return
	}
	if err := r.journal.RecordRound(r.ctx, r.runID, stats); err != nil {
		r.logger.Warn("failed to journal round", "run_id", r.runID, "objects", stats.Objects, "error", err)
	}
}
