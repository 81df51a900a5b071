package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/simeksgol/GoL-destroy/internal/ir"
	"github.com/simeksgol/GoL-destroy/internal/search"
)

// ErrRunNotFound is returned for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is a journaled run with everything recorded for it.
type Run struct {
	ID            string    `json:"id"`
	Info          RunInfo   `json:"info"`
	SearchVersion string    `json:"search_version"`
	StartedAt     time.Time `json:"started_at"`

	// FinishedAt is zero and Outcome is OutcomeContinue while the run has
	// not finished.
	FinishedAt time.Time      `json:"finished_at"`
	Outcome    search.Outcome `json:"outcome"`
	Rounds     int            `json:"rounds"`

	Trace    []search.RoundStats `json:"trace"`
	Solution *StoredSolution     `json:"solution,omitempty"`
}

// StoredSolution is a journaled solution.
type StoredSolution struct {
	Digest      string         `json:"digest"`
	Placements  []ir.Placement `json:"placements"`
	PrefixCosts []int          `json:"prefix_costs"`
	Pattern     string         `json:"pattern"`
}

// ReadRun returns the run with the given ID. Rounds are ordered by object
// count.
func (j *Journal) ReadRun(ctx context.Context, runID string) (*Run, error) {
	run := &Run{ID: runID}
	var (
		seed       int64
		startedAt  string
		finishedAt sql.NullString
		outcome    sql.NullString
		rounds     sql.NullInt64
	)
	err := j.db.QueryRowContext(ctx, `
		SELECT pattern, objects, max_pool_size, max_objects, seed, placements, removed_catalyst,
		       search_version, started_at, finished_at, outcome, rounds
		FROM runs WHERE id = ?
	`, runID).Scan(
		&run.Info.Pattern,
		&run.Info.Objects,
		&run.Info.MaxPoolSize,
		&run.Info.MaxObjects,
		&seed,
		&run.Info.Placements,
		&run.Info.RemovedCatalyst,
		&run.SearchVersion,
		&startedAt,
		&finishedAt,
		&outcome,
		&rounds,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read run: %w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	run.Info.Seed = uint64(seed)

	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, fmt.Errorf("read run: started_at: %w", err)
	}
	if finishedAt.Valid {
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt.String); err != nil {
			return nil, fmt.Errorf("read run: finished_at: %w", err)
		}
	}
	if outcome.Valid {
		if err := run.Outcome.UnmarshalText([]byte(outcome.String)); err != nil {
			return nil, fmt.Errorf("read run: %w", err)
		}
	}
	run.Rounds = int(rounds.Int64)

	if run.Trace, err = j.readRounds(ctx, runID); err != nil {
		return nil, err
	}
	if run.Solution, err = j.readSolution(ctx, runID); err != nil {
		return nil, err
	}
	return run, nil
}

func (j *Journal) readRounds(ctx context.Context, runID string) ([]search.RoundStats, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT objects, filtered, unfiltered, lowest_cost, cutoff, kept, buckets
		FROM rounds WHERE run_id = ?
		ORDER BY objects ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	trace := []search.RoundStats{}
	for rows.Next() {
		var (
			s       search.RoundStats
			buckets string
		)
		if err := rows.Scan(&s.Objects, &s.Filtered, &s.Unfiltered, &s.LowestCost, &s.Cutoff, &s.Kept, &buckets); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		if err := json.Unmarshal([]byte(buckets), &s.Buckets); err != nil {
			return nil, fmt.Errorf("decode buckets: %w", err)
		}
		if len(s.Buckets) == 0 {
			s.Buckets = nil
		}
		trace = append(trace, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}
	return trace, nil
}

func (j *Journal) readSolution(ctx context.Context, runID string) (*StoredSolution, error) {
	var (
		sol        StoredSolution
		placements string
		prefix     string
	)
	err := j.db.QueryRowContext(ctx, `
		SELECT digest, placements, prefix_costs, pattern FROM solutions WHERE run_id = ?
	`, runID).Scan(&sol.Digest, &placements, &prefix, &sol.Pattern)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read solution: %w", err)
	}
	if err := json.Unmarshal([]byte(placements), &sol.Placements); err != nil {
		return nil, fmt.Errorf("decode placements: %w", err)
	}
	if err := json.Unmarshal([]byte(prefix), &sol.PrefixCosts); err != nil {
		return nil, fmt.Errorf("decode prefix costs: %w", err)
	}
	return &sol, nil
}

// FindSolutions returns the IDs of runs whose solution has the given digest,
// oldest first.
func (j *Journal) FindSolutions(ctx context.Context, digest string) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id FROM solutions WHERE digest = ? ORDER BY run_id COLLATE BINARY ASC
	`, digest)
	if err != nil {
		return nil, fmt.Errorf("query solutions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan solution: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate solutions: %w", err)
	}
	return ids, nil
}
