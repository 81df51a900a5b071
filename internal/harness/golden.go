package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/simeksgol/GoL-destroy/internal/search"
)

// TraceSnapshot captures what a scenario run produced. Fields are in a fixed
// order so the JSON is stable for golden comparison.
type TraceSnapshot struct {
	ScenarioName string              `json:"scenario_name"`
	Seed         uint64              `json:"seed"`
	Outcome      search.Outcome      `json:"outcome"`
	Rounds       int                 `json:"rounds"`
	Trace        []search.RoundStats `json:"trace"`

	// Solution lists placements as type@(x,y).
	Solution    []string `json:"solution,omitempty"`
	PrefixCosts []int    `json:"prefix_costs,omitempty"`
}

// NewTraceSnapshot builds the snapshot of a result.
func NewTraceSnapshot(scenario *Scenario, result *Result) TraceSnapshot {
	s := TraceSnapshot{
		ScenarioName: scenario.Name,
		Seed:         scenario.Seed,
		Outcome:      result.Outcome,
		Rounds:       result.Rounds,
		Trace:        result.Trace,
	}
	if sol := result.Solution; sol != nil {
		for _, p := range sol.Placements {
			s.Solution = append(s.Solution, p.String())
		}
		s.PrefixCosts = sol.PrefixCosts
	}
	return s
}

// Marshal returns the snapshot as indented JSON with a trailing newline.
func (s TraceSnapshot) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can check assertions too. Test failure (via
// goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's snapshot against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := NewTraceSnapshot(scenario, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
