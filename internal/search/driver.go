package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/simeksgol/GoL-destroy/internal/catalog"
	"github.com/simeksgol/GoL-destroy/internal/cost"
	"github.com/simeksgol/GoL-destroy/internal/dedup"
	"github.com/simeksgol/GoL-destroy/internal/grid"
	"github.com/simeksgol/GoL-destroy/internal/ir"
	"github.com/simeksgol/GoL-destroy/internal/placement"
	"github.com/simeksgol/GoL-destroy/internal/pool"
)

// Task is the problem a Driver solves.
type Task struct {
	// Problem is the pattern to clean up.
	Problem *grid.Grid

	// CatalystArea holds every cell an object's footprint may cover.
	CatalystArea *grid.Grid

	// AllowedArea holds every cell the evolving pattern may reach.
	AllowedArea *grid.Grid
}

// Rand is the random source used to break ties at the cost cutoff.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

// hashSeed fixes the fingerprint salt so runs are reproducible regardless of
// the tie-breaking seed.
const hashSeed = 0x5DEECE66D

// Option configures a Driver.
type Option func(*Driver)

// WithParams replaces the default tuning. MaxPoolSize and MaxObjects are
// taken from p as well.
func WithParams(p Params) Option {
	return func(d *Driver) {
		d.params = p
	}
}

// WithRand sets the tie-breaking random source.
func WithRand(r Rand) Option {
	return func(d *Driver) {
		d.rng = r
	}
}

// WithLogger sets the progress logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(d *Driver) {
		d.metrics = m
	}
}

// WithReporter sets the receiver of per-round reports.
func WithReporter(r Reporter) Option {
	return func(d *Driver) {
		d.reporter = r
	}
}

// Driver runs one search. Build it with New and call Run once.
type Driver struct {
	params   Params
	task     Task
	cat      *catalog.Catalog
	enum     *placement.Enumerator
	est      *cost.Estimator
	hasher   *grid.Hasher
	rng      Rand
	logger   *slog.Logger
	metrics  *Metrics
	reporter Reporter

	seen       *dedup.Index // round-scoped
	tested     *dedup.Index // run-scoped
	filtered   *pool.Pool
	unfiltered *pool.Pool
	histogram  []int64

	g scratch

	cand     ir.Candidate
	extended []ir.Placement
	record   []byte
	warned   map[string]bool
}

// scratch holds every grid the driver reuses between calls.
type scratch struct {
	ringA        *grid.Grid
	ringB        *grid.Grid
	ringC        *grid.Grid
	inSetup      *grid.Grid
	objects      *grid.Grid
	start        *grid.Grid
	earlyEnv     *grid.Grid
	lateEnv      *grid.Grid
	forbidden    *grid.Grid
	mustTouch    *grid.Grid
	useable      *grid.Grid
	lockedOut    *grid.Grid
	temp         *grid.Grid
	temp2        *grid.Grid
	newObject    *grid.Grid
	setup        *grid.Grid
	allObjects   *grid.Grid
	scratchSetup *grid.Grid
	showPattern  *grid.Grid
	showObjects  *grid.Grid
}

func newScratch() scratch {
	return scratch{
		ringA:        grid.New(),
		ringB:        grid.New(),
		ringC:        grid.New(),
		inSetup:      grid.New(),
		objects:      grid.New(),
		start:        grid.New(),
		earlyEnv:     grid.New(),
		lateEnv:      grid.New(),
		forbidden:    grid.New(),
		mustTouch:    grid.New(),
		useable:      grid.New(),
		lockedOut:    grid.New(),
		temp:         grid.New(),
		temp2:        grid.New(),
		newObject:    grid.New(),
		setup:        grid.New(),
		allObjects:   grid.New(),
		scratchSetup: grid.New(),
		showPattern:  grid.New(),
		showObjects:  grid.New(),
	}
}

// New prepares a search for task using the enabled types of cat. The
// placement list is computed here, so an oversized catalyst area is reported
// before any round runs.
func New(task Task, cat *catalog.Catalog, opts ...Option) (*Driver, error) {
	d := &Driver{
		params:   DefaultParams(0, 0),
		task:     task,
		cat:      cat,
		rng:      rand.New(rand.NewPCG(1, 2)),
		logger:   slog.Default(),
		reporter: nopReporter{},
		warned:   make(map[string]bool),
		g:        newScratch(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.params.Validate(); err != nil {
		return nil, fmt.Errorf("search.New: %w", err)
	}

	enum, err := placement.NewEnumerator(cat, task.CatalystArea, d.params.MaxPlacements)
	if err != nil {
		var ce *placement.CapacityError
		if errors.As(err, &ce) {
			return nil, &CapacityError{What: "possible object placements", Limit: ce.Limit}
		}
		return nil, fmt.Errorf("search.New: %w", err)
	}
	d.enum = enum
	d.est = cost.NewEstimator(d.params.Cost)
	d.hasher = grid.NewHasher(rand.New(rand.NewPCG(hashSeed, hashSeed)))
	d.histogram = make([]int64, d.params.Cost.Ceiling)

	dp := d.params.Dedup
	if d.seen, err = dedup.New(dp.InitialCapacity, dp.GrowFraction, dp.FailFraction); err != nil {
		return nil, fmt.Errorf("search.New: %w", err)
	}
	if d.tested, err = dedup.New(dp.InitialCapacity, dp.GrowFraction, dp.FailFraction); err != nil {
		return nil, fmt.Errorf("search.New: %w", err)
	}
	if d.filtered, err = pool.New(d.params.PoolBufferSize); err != nil {
		return nil, fmt.Errorf("search.New: %w", err)
	}
	if d.unfiltered, err = pool.New(d.params.PoolBufferSize); err != nil {
		return nil, fmt.Errorf("search.New: %w", err)
	}
	return d, nil
}

// Placements returns the number of possible object placements.
func (d *Driver) Placements() int {
	return d.enum.Len()
}

// Run executes the search. The context is checked between rounds only.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	d.tested.Clear()
	d.filtered.Clear()
	if err := d.storeCandidate(d.filtered, nil, 0); err != nil {
		return nil, err
	}

	for objects := 1; objects <= d.params.MaxObjects; objects++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		started := time.Now()
		res.Rounds = objects
		d.metrics.roundStarted()

		if objects > 1 {
			if err := d.reportLowest(objects); err != nil {
				return res, err
			}
		}

		d.unfiltered.Clear()
		d.seen.Clear()
		clear(d.warned)

		stats := RoundStats{Objects: objects, Filtered: d.filtered.Len()}
		d.logger.Info("starting round", "objects", objects, "filtered", stats.Filtered)

		sol, err := d.expandAll()
		if err != nil {
			return res, err
		}
		stats.Unfiltered = d.unfiltered.Len()

		if sol != nil {
			res.Outcome = OutcomeSuccess
			res.Solution = sol
			d.finishRound(res, stats, started)
			return res, nil
		}
		if stats.Unfiltered == 0 {
			d.logger.Info("no continuation found, ending search", "objects", objects)
			res.Outcome = OutcomeNoContinuation
			d.finishRound(res, stats, started)
			return res, nil
		}

		d.logger.Info("round expanded", "objects", objects, "unfiltered", stats.Unfiltered)
		if err := d.selectPool(&stats); err != nil {
			return res, err
		}
		d.finishRound(res, stats, started)
	}

	res.Outcome = OutcomeMaxObjectsReached
	return res, nil
}

func (d *Driver) finishRound(res *Result, stats RoundStats, started time.Time) {
	res.Trace = append(res.Trace, stats)
	d.metrics.roundFinished(stats, time.Since(started).Seconds())
	d.reporter.RoundFinished(stats)
}

// expandAll extends every filtered candidate by one object.
func (d *Driver) expandAll() (*Solution, error) {
	it := d.filtered.Iter()
	for i := int64(0); ; i++ {
		rec, ok := it.Next()
		if !ok {
			return nil, nil
		}
		if i%int64(d.params.ProgressEvery) == 0 {
			d.logger.Info("testing candidate", "index", i)
		}
		if err := ir.DecodeRecord(rec, &d.cand); err != nil {
			return nil, fmt.Errorf("expandAll: candidate %d: %w", i, err)
		}
		sol, err := d.expand(d.cand.Placements)
		if err != nil || sol != nil {
			return sol, err
		}
	}
}

func (d *Driver) storeCandidate(p *pool.Pool, placements []ir.Placement, c int) error {
	var err error
	d.record, err = ir.AppendRecord(d.record[:0], ir.Candidate{Placements: placements, Cost: c})
	if err != nil {
		return fmt.Errorf("storeCandidate: %w", err)
	}
	if err := p.Store(d.record); err != nil {
		return fmt.Errorf("storeCandidate: %w", err)
	}
	return nil
}
