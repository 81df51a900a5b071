package search

import (
	"fmt"

	"github.com/simeksgol/GoL-destroy/internal/cost"
	"github.com/simeksgol/GoL-destroy/internal/ir"
	"github.com/simeksgol/GoL-destroy/internal/placement"
)

// Defaults for Params.
const (
	DefaultLatePhaseGens    = 256
	DefaultMaxNewGens       = 1024
	DefaultMaxStabilizeGens = 32768
	DefaultPoolBufferSize   = 16384
	DefaultProgressEvery    = 1000
	DefaultHistogramBuckets = 16
)

// DedupParams configures both fingerprint indexes.
type DedupParams struct {
	InitialCapacity uint64
	GrowFraction    float64
	FailFraction    float64
}

// Params holds the search limits and tuning. MaxPoolSize and MaxObjects come
// from the command line; everything else has a default.
type Params struct {
	// MaxPoolSize caps the candidates carried into the next round.
	MaxPoolSize int

	// MaxObjects caps the number of rounds, one object per round.
	MaxObjects int

	// LatePhaseGens is how many generations before a candidate settles a new
	// object may start to interact with it.
	LatePhaseGens int

	// MaxNewGens bounds the simulation of a freshly extended candidate.
	MaxNewGens int

	// MaxStabilizeGens bounds the re-simulation of a stored candidate.
	MaxStabilizeGens int

	MaxPlacements    int
	PoolBufferSize   int
	ProgressEvery    int
	HistogramBuckets int

	Dedup DedupParams
	Cost  cost.Params
}

// DefaultParams returns the standard tuning with the given limits.
func DefaultParams(maxPoolSize, maxObjects int) Params {
	return Params{
		MaxPoolSize:      maxPoolSize,
		MaxObjects:       maxObjects,
		LatePhaseGens:    DefaultLatePhaseGens,
		MaxNewGens:       DefaultMaxNewGens,
		MaxStabilizeGens: DefaultMaxStabilizeGens,
		MaxPlacements:    placement.DefaultMaxPlacements,
		PoolBufferSize:   DefaultPoolBufferSize,
		ProgressEvery:    DefaultProgressEvery,
		HistogramBuckets: DefaultHistogramBuckets,
		Dedup: DedupParams{
			InitialCapacity: 64,
			GrowFraction:    0.7,
			FailFraction:    0.9,
		},
		Cost: cost.DefaultParams(),
	}
}

// Validate checks limits that would otherwise surface mid-run.
func (p Params) Validate() error {
	if p.MaxPoolSize < 0 {
		return fmt.Errorf("max pool size %d is negative", p.MaxPoolSize)
	}
	if p.MaxObjects < 0 {
		return fmt.Errorf("max objects %d is negative", p.MaxObjects)
	}
	if p.MaxObjects > ir.MaxRecordObjects {
		return &CapacityError{What: "objects per candidate", Limit: ir.MaxRecordObjects}
	}
	if need := 2 + ir.RecordSize(p.MaxObjects); p.PoolBufferSize < need {
		return fmt.Errorf("pool buffer size %d cannot hold a %d-object record", p.PoolBufferSize, p.MaxObjects)
	}
	if p.Cost.Ceiling < 2 || p.Cost.Ceiling > ir.MaxRecordCost+1 {
		return fmt.Errorf("cost ceiling %d outside [2, %d]", p.Cost.Ceiling, ir.MaxRecordCost+1)
	}
	if p.LatePhaseGens < 0 || p.MaxNewGens < 2 || p.MaxStabilizeGens < 2 {
		return fmt.Errorf("generation limits must be positive")
	}
	if p.ProgressEvery <= 0 {
		return fmt.Errorf("progress interval %d must be positive", p.ProgressEvery)
	}
	return nil
}
