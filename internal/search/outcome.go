package search

import (
	"fmt"

	"github.com/simeksgol/GoL-destroy/internal/grid"
	"github.com/simeksgol/GoL-destroy/internal/ir"
)

// Outcome is how a run ended.
type Outcome int

const (
	// OutcomeContinue is never returned by Run; it marks a normal round transition.
	OutcomeContinue Outcome = iota
	OutcomeSuccess
	OutcomeNoContinuation
	OutcomeMaxObjectsReached
)

var outcomeNames = map[Outcome]string{
	OutcomeContinue:          "CONTINUE",
	OutcomeSuccess:           "SUCCESS",
	OutcomeNoContinuation:    "NO_CONTINUATION",
	OutcomeMaxObjectsReached: "MAX_OBJECTS_REACHED",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name.
func (o *Outcome) UnmarshalText(b []byte) error {
	for k, v := range outcomeNames {
		if v == string(b) {
			*o = k
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", b)
}

// SetupResult classifies the simulation of one extended candidate. None of
// these are errors; only SetupEmpty and SetupStable are kept.
type SetupResult int

const (
	// SetupStable settled into a non-empty pattern with period 1 or 2.
	SetupStable SetupResult = iota
	// SetupEmpty settled into nothing: a solution.
	SetupEmpty
	// SetupEscaped left the allowed area.
	SetupEscaped
	// SetupUnstable did not settle within the generation limit.
	SetupUnstable
	// SetupOvercrowded settled into more clusters than the cost model accepts.
	SetupOvercrowded
)

func (r SetupResult) String() string {
	switch r {
	case SetupStable:
		return "stable"
	case SetupEmpty:
		return "empty"
	case SetupEscaped:
		return "escaped"
	case SetupUnstable:
		return "unstable"
	case SetupOvercrowded:
		return "overcrowded"
	}
	return fmt.Sprintf("SetupResult(%d)", int(r))
}

// Bucket is one non-empty cost histogram slot.
type Bucket struct {
	Cost  int   `json:"cost"`
	Count int64 `json:"count"`
}

// RoundStats summarises one round.
type RoundStats struct {
	Objects    int      `json:"objects"`
	Filtered   int64    `json:"filtered"`
	Unfiltered int64    `json:"unfiltered"`
	Buckets    []Bucket `json:"buckets,omitempty"`
	LowestCost int      `json:"lowest_cost"`
	Cutoff     int      `json:"cutoff"`
	Kept       int64    `json:"kept"`
}

// Solution is a placement list whose combined pattern dies out.
type Solution struct {
	Placements []ir.Placement `json:"placements"`

	// PrefixCosts[k-1] is the cost of the problem with only the first k
	// objects placed, for every k below len(Placements).
	PrefixCosts []int `json:"prefix_costs"`

	// Pattern is the problem with every object placed; Objects holds only
	// the objects.
	Pattern *grid.Grid `json:"-"`
	Objects *grid.Grid `json:"-"`
}

// Result is the outcome of a run.
type Result struct {
	Outcome  Outcome      `json:"outcome"`
	Rounds   int          `json:"rounds"`
	Trace    []RoundStats `json:"trace"`
	Solution *Solution    `json:"solution,omitempty"`
}

// Reporter receives progress from a run. Implementations must not retain
// the grids passed to them.
type Reporter interface {
	// Intermediate is called before each round after the first with the
	// cheapest candidate carried into it.
	Intermediate(objects int, c ir.Candidate, pattern, objectGrid *grid.Grid)

	// RoundFinished is called after pool selection, or when the round ends
	// the run.
	RoundFinished(stats RoundStats)
}

type nopReporter struct{}

func (nopReporter) Intermediate(int, ir.Candidate, *grid.Grid, *grid.Grid) {}
func (nopReporter) RoundFinished(RoundStats)                               {}
