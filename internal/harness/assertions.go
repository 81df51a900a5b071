package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/simeksgol/GoL-destroy/internal/grid"
	"github.com/simeksgol/GoL-destroy/internal/ir"
	"github.com/simeksgol/GoL-destroy/internal/search"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string              // Assertion type for categorization
	Expected string              // Human-readable expected outcome
	Actual   string              // Human-readable actual outcome
	Trace    []search.RoundStats // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, s := range e.Trace {
		fmt.Fprintf(&buf, "  [%d objects] filtered=%d unfiltered=%d lowest=%d cutoff=%d kept=%d\n",
			s.Objects, s.Filtered, s.Unfiltered, s.LowestCost, s.Cutoff, s.Kept)
	}
	return buf.String()
}

// checkAssertion evaluates one assertion against a result.
func checkAssertion(r *Result, a Assertion) error {
	switch a.Type {
	case AssertOutcome:
		return assertOutcome(r, a)
	case AssertRounds:
		return assertRounds(r, a)
	case AssertRoundStats:
		return assertRoundStats(r, a)
	case AssertSolutionPlacements:
		return assertSolutionPlacements(r, a)
	case AssertDiesOut:
		return assertDiesOut(r, a)
	case AssertJournaled:
		return assertJournaled(r)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertOutcome(r *Result, a Assertion) error {
	if r.Outcome.String() == a.Outcome {
		return nil
	}
	return &AssertionError{
		Type:     AssertOutcome,
		Expected: a.Outcome,
		Actual:   r.Outcome.String(),
		Trace:    r.Trace,
	}
}

func assertRounds(r *Result, a Assertion) error {
	if r.Rounds == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRounds,
		Expected: fmt.Sprintf("%d rounds", a.Count),
		Actual:   fmt.Sprintf("%d rounds", r.Rounds),
		Trace:    r.Trace,
	}
}

// statField returns the value of a round_stats field. "buckets" is the
// number of reported histogram buckets.
func statField(s search.RoundStats, field string) int64 {
	switch field {
	case "filtered":
		return s.Filtered
	case "unfiltered":
		return s.Unfiltered
	case "lowest_cost":
		return int64(s.LowestCost)
	case "cutoff":
		return int64(s.Cutoff)
	case "kept":
		return s.Kept
	case "buckets":
		return int64(len(s.Buckets))
	}
	return 0
}

func assertRoundStats(r *Result, a Assertion) error {
	stats, ok := r.round(a.Round)
	if !ok {
		return &AssertionError{
			Type:     AssertRoundStats,
			Expected: fmt.Sprintf("a round with %d objects", a.Round),
			Actual:   fmt.Sprintf("%d rounds in trace", len(r.Trace)),
			Trace:    r.Trace,
		}
	}

	// Sort fields so mismatches are reported in a stable order
	fields := make([]string, 0, len(a.Expect))
	for f := range a.Expect {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var mismatches []string
	for _, f := range fields {
		if got := statField(stats, f); got != a.Expect[f] {
			mismatches = append(mismatches, fmt.Sprintf("%s: expected %d, got %d", f, a.Expect[f], got))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertRoundStats,
		Expected: fmt.Sprintf("round %d matches %v", a.Round, a.Expect),
		Actual:   strings.Join(mismatches, "; "),
		Trace:    r.Trace,
	}
}

func assertSolutionPlacements(r *Result, a Assertion) error {
	want := make([]ir.Placement, len(a.Placements))
	for i, p := range a.Placements {
		want[i] = ir.NewPlacement(ir.ObjectType(p[0]), p[1], p[2])
	}

	var got []ir.Placement
	if r.Solution != nil {
		got = r.Solution.Placements
	}
	if reflect.DeepEqual(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     AssertSolutionPlacements,
		Expected: fmt.Sprint(want),
		Actual:   fmt.Sprint(got),
		Trace:    r.Trace,
	}
}

func assertDiesOut(r *Result, a Assertion) error {
	if r.Solution == nil {
		return &AssertionError{
			Type:     AssertDiesOut,
			Expected: "a solution",
			Actual:   r.Outcome.String(),
			Trace:    r.Trace,
		}
	}

	cur, next := r.Solution.Pattern.Clone(), grid.New()
	for gen := 0; gen < a.Generations; gen++ {
		if cur.IsEmpty() {
			return nil
		}
		cur.Evolve(next)
		cur, next = next, cur
	}
	if cur.IsEmpty() {
		return nil
	}
	return &AssertionError{
		Type:     AssertDiesOut,
		Expected: fmt.Sprintf("empty within %d generations", a.Generations),
		Actual:   fmt.Sprintf("%d cells left", cur.Population()),
		Trace:    r.Trace,
	}
}

func assertJournaled(r *Result) error {
	run := r.Stored
	if run == nil {
		return &AssertionError{Type: AssertJournaled, Expected: "a journaled run", Actual: "none", Trace: r.Trace}
	}
	if run.Outcome != r.Outcome || run.Rounds != r.Rounds {
		return &AssertionError{
			Type:     AssertJournaled,
			Expected: fmt.Sprintf("%s after %d rounds", r.Outcome, r.Rounds),
			Actual:   fmt.Sprintf("%s after %d rounds", run.Outcome, run.Rounds),
			Trace:    r.Trace,
		}
	}
	if len(run.Trace) != len(r.Trace) || (len(r.Trace) > 0 && !reflect.DeepEqual(run.Trace, r.Trace)) {
		return &AssertionError{
			Type:     AssertJournaled,
			Expected: fmt.Sprintf("trace %v", r.Trace),
			Actual:   fmt.Sprintf("trace %v", run.Trace),
			Trace:    r.Trace,
		}
	}
	if (run.Solution == nil) != (r.Solution == nil) {
		return &AssertionError{
			Type:     AssertJournaled,
			Expected: fmt.Sprintf("solution stored: %t", r.Solution != nil),
			Actual:   fmt.Sprintf("solution stored: %t", run.Solution != nil),
			Trace:    r.Trace,
		}
	}
	if r.Solution != nil && !reflect.DeepEqual(run.Solution.Placements, r.Solution.Placements) {
		return &AssertionError{
			Type:     AssertJournaled,
			Expected: fmt.Sprint(r.Solution.Placements),
			Actual:   fmt.Sprint(run.Solution.Placements),
			Trace:    r.Trace,
		}
	}
	return nil
}
