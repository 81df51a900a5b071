package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/simeksgol/GoL-destroy/internal/search"
)

// Scenario defines one search run and what its result must look like.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Pattern is the LifeHistory pattern file body.
	Pattern string `yaml:"pattern"`

	// Objects is the object digit string, as on the command line.
	Objects     string `yaml:"objects"`
	MaxPoolSize int    `yaml:"max_pool_size"`
	MaxObjects  int    `yaml:"max_objects"`
	Seed        uint64 `yaml:"seed"`

	// RunID is the fixed journal run ID. If empty, defaults to
	// "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the result of a run.
type Assertion struct {
	// Type is one of the Assert constants.
	Type string `yaml:"type"`

	// Outcome is the expected outcome name (used by outcome).
	Outcome string `yaml:"outcome,omitempty"`

	// Count is the expected number of rounds (used by rounds).
	Count int `yaml:"count,omitempty"`

	// Round is the object count of the round to check (used by round_stats).
	Round int `yaml:"round,omitempty"`

	// Expect holds expected round statistics by JSON field name (used by
	// round_stats). Subset match: only the given fields are checked.
	Expect map[string]int64 `yaml:"expect,omitempty"`

	// Placements lists [type, x, y] triples in placement order (used by
	// solution_placements).
	Placements [][3]int `yaml:"placements,omitempty"`

	// Generations bounds the evolution of the solved pattern (used by
	// dies_out).
	Generations int `yaml:"generations,omitempty"`
}

// Assertion type constants.
const (
	AssertOutcome            = "outcome"
	AssertRounds             = "rounds"
	AssertRoundStats         = "round_stats"
	AssertSolutionPlacements = "solution_placements"
	AssertDiesOut            = "dies_out"
	AssertJournaled          = "journaled"
)

// roundStatFields are the keys a round_stats expect map may use.
var roundStatFields = map[string]bool{
	"filtered":    true,
	"unfiltered":  true,
	"lowest_cost": true,
	"cutoff":      true,
	"kept":        true,
	"buckets":     true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Pattern == "" {
		return fmt.Errorf("pattern is required")
	}
	if s.Objects == "" {
		return fmt.Errorf("objects is required")
	}
	if s.MaxPoolSize < 1 {
		return fmt.Errorf("max_pool_size must be positive")
	}
	if s.MaxObjects < 0 {
		return fmt.Errorf("max_objects must be non-negative")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOutcome:
		var o search.Outcome
		if err := o.UnmarshalText([]byte(a.Outcome)); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertRounds:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for rounds", index)
		}
	case AssertRoundStats:
		if a.Round < 1 {
			return fmt.Errorf("assertions[%d]: round is required for round_stats", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for round_stats", index)
		}
		for field := range a.Expect {
			if !roundStatFields[field] {
				return fmt.Errorf("assertions[%d]: unknown round_stats field %q", index, field)
			}
		}
	case AssertSolutionPlacements:
		if len(a.Placements) == 0 {
			return fmt.Errorf("assertions[%d]: placements list is required for solution_placements", index)
		}
	case AssertDiesOut:
		if a.Generations < 1 {
			return fmt.Errorf("assertions[%d]: generations is required for dies_out", index)
		}
	case AssertJournaled:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
