// Package config loads search tuning from YAML.
//
// Every field has a default, so a config file only names what it changes.
// Decoded values are checked against an embedded CUE schema before use.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/simeksgol/GoL-destroy/internal/cost"
	"github.com/simeksgol/GoL-destroy/internal/ir"
	"github.com/simeksgol/GoL-destroy/internal/placement"
	"github.com/simeksgol/GoL-destroy/internal/search"
)

//go:embed schema.cue
var schemaSource string

// Config holds every tunable of a search run. The yaml and json tags must
// agree: YAML is decoded with the former, the CUE check encodes with the
// latter.
type Config struct {
	LatePhaseGens    int `yaml:"late_phase_gens" json:"late_phase_gens"`
	MaxNewGens       int `yaml:"max_new_gens" json:"max_new_gens"`
	MaxStabilizeGens int `yaml:"max_stabilize_gens" json:"max_stabilize_gens"`
	MaxCensusObjects int `yaml:"max_census_objects" json:"max_census_objects"`
	MaxPlacements    int `yaml:"max_placements" json:"max_placements"`

	// MaxObjectsLimit caps the <max objects> argument.
	MaxObjectsLimit int `yaml:"max_objects_limit" json:"max_objects_limit"`

	CostCeiling    int     `yaml:"cost_ceiling" json:"cost_ceiling"`
	CostExponent   float64 `yaml:"cost_exponent" json:"cost_exponent"`
	CostMultiplier float64 `yaml:"cost_multiplier" json:"cost_multiplier"`

	PoolBufferSize         int `yaml:"pool_buffer_size" json:"pool_buffer_size"`
	ProgressEvery          int `yaml:"progress_every" json:"progress_every"`
	HistogramReportBuckets int `yaml:"histogram_report_buckets" json:"histogram_report_buckets"`

	Dedup DedupConfig `yaml:"dedup" json:"dedup"`
}

// DedupConfig sizes the fingerprint indexes.
type DedupConfig struct {
	InitialCapacity uint64  `yaml:"initial_capacity" json:"initial_capacity"`
	GrowFraction    float64 `yaml:"grow_fraction" json:"grow_fraction"`
	FailFraction    float64 `yaml:"fail_fraction" json:"fail_fraction"`
}

// Default returns the built-in tuning.
func Default() Config {
	p := search.DefaultParams(0, 0)
	return Config{
		LatePhaseGens:          p.LatePhaseGens,
		MaxNewGens:             p.MaxNewGens,
		MaxStabilizeGens:       p.MaxStabilizeGens,
		MaxCensusObjects:       p.Cost.MaxComponents,
		MaxPlacements:          placement.DefaultMaxPlacements,
		MaxObjectsLimit:        ir.MaxRecordObjects,
		CostCeiling:            p.Cost.Ceiling,
		CostExponent:           p.Cost.Exponent,
		CostMultiplier:         p.Cost.Multiplier,
		PoolBufferSize:         p.PoolBufferSize,
		ProgressEvery:          p.ProgressEvery,
		HistogramReportBuckets: p.HistogramBuckets,
		Dedup: DedupConfig{
			InitialCapacity: p.Dedup.InitialCapacity,
			GrowFraction:    p.Dedup.GrowFraction,
			FailFraction:    p.Dedup.FailFraction,
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration against the CUE schema, then checks
// what the schema cannot express.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}

	v := schema.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}

	if n := c.Dedup.InitialCapacity; bits.OnesCount64(n) != 1 {
		return &FieldError{Path: "dedup.initial_capacity", Message: fmt.Sprintf("%d is not a power of two", n)}
	}
	return nil
}

// FieldError is a config value that failed validation.
type FieldError struct {
	Path    string // Dotted YAML path, e.g. "dedup.grow_fraction"
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// formatCUEError reduces a CUE validation error to its first field error.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	path := first.Path()
	if len(path) > 0 && path[0] == "#Config" {
		path = path[1:]
	}
	if len(path) == 0 {
		return err
	}
	format, args := first.Msg()
	return &FieldError{Path: strings.Join(path, "."), Message: fmt.Sprintf(format, args...)}
}

// SearchParams returns the driver tuning for a run with the given limits.
func (c Config) SearchParams(maxPoolSize, maxObjects int) search.Params {
	p := search.DefaultParams(maxPoolSize, maxObjects)
	p.LatePhaseGens = c.LatePhaseGens
	p.MaxNewGens = c.MaxNewGens
	p.MaxStabilizeGens = c.MaxStabilizeGens
	p.MaxPlacements = c.MaxPlacements
	p.PoolBufferSize = c.PoolBufferSize
	p.ProgressEvery = c.ProgressEvery
	p.HistogramBuckets = c.HistogramReportBuckets
	p.Dedup = search.DedupParams{
		InitialCapacity: c.Dedup.InitialCapacity,
		GrowFraction:    c.Dedup.GrowFraction,
		FailFraction:    c.Dedup.FailFraction,
	}
	p.Cost = cost.Params{
		Exponent:      c.CostExponent,
		Multiplier:    c.CostMultiplier,
		Ceiling:       c.CostCeiling,
		MaxComponents: c.MaxCensusObjects,
	}
	return p
}
