package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/simeksgol/GoL-destroy/internal/ir"
	"github.com/simeksgol/GoL-destroy/internal/search"
)

// RunInfo describes a run as it was invoked.
type RunInfo struct {
	Pattern     string `json:"pattern"`
	Objects     string `json:"objects"`
	MaxPoolSize int    `json:"max_pool_size"`
	MaxObjects  int    `json:"max_objects"`
	Seed        uint64 `json:"seed"`

	// Placements is the number of possible object placements.
	Placements int `json:"placements"`

	// RemovedCatalyst counts catalyst cells dropped for being too close to
	// the pattern.
	RemovedCatalyst int `json:"removed_catalyst"`
}

// StartRun inserts a run and returns its ID.
func (j *Journal) StartRun(ctx context.Context, info RunInfo) (string, error) {
	id := j.ids.NewID()
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, pattern, objects, max_pool_size, max_objects, seed, placements, removed_catalyst,
		 search_version, record_version, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		info.Pattern,
		info.Objects,
		info.MaxPoolSize,
		info.MaxObjects,
		int64(info.Seed), // SQLite integers are signed
		info.Placements,
		info.RemovedCatalyst,
		ir.SearchVersion,
		ir.RecordVersion,
		j.now(),
	)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// RecordRound stores the statistics of one finished round. Recording the
// same round twice keeps the first.
func (j *Journal) RecordRound(ctx context.Context, runID string, stats search.RoundStats) error {
	buckets := stats.Buckets
	if buckets == nil {
		buckets = []search.Bucket{}
	}
	bucketsJSON, err := json.Marshal(buckets)
	if err != nil {
		return fmt.Errorf("record round: %w", err)
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO rounds
		(run_id, objects, filtered, unfiltered, lowest_cost, cutoff, kept, buckets, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		runID,
		stats.Objects,
		stats.Filtered,
		stats.Unfiltered,
		stats.LowestCost,
		stats.Cutoff,
		stats.Kept,
		string(bucketsJSON),
		j.now(),
	)
	if err != nil {
		return fmt.Errorf("record round: %w", err)
	}
	return nil
}

// RecordSolution stores a found solution. pattern is its LifeHistory text.
func (j *Journal) RecordSolution(ctx context.Context, runID string, sol *search.Solution, pattern string) error {
	placementsJSON, err := json.Marshal(sol.Placements)
	if err != nil {
		return fmt.Errorf("record solution: %w", err)
	}
	prefix := sol.PrefixCosts
	if prefix == nil {
		prefix = []int{}
	}
	prefixJSON, err := json.Marshal(prefix)
	if err != nil {
		return fmt.Errorf("record solution: %w", err)
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO solutions
		(run_id, digest, placements, prefix_costs, pattern, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		runID,
		ir.SolutionDigest(sol.Placements),
		string(placementsJSON),
		string(prefixJSON),
		pattern,
		j.now(),
	)
	if err != nil {
		return fmt.Errorf("record solution: %w", err)
	}
	return nil
}

// FinishRun stores how a run ended.
func (j *Journal) FinishRun(ctx context.Context, runID string, outcome search.Outcome, rounds int) error {
	res, err := j.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, outcome = ?, rounds = ? WHERE id = ?
	`, j.now(), outcome.String(), rounds, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: %w: %s", ErrRunNotFound, runID)
	}
	return nil
}
