package harness

import (
	"github.com/simeksgol/GoL-destroy/internal/journal"
	"github.com/simeksgol/GoL-destroy/internal/search"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	Outcome search.Outcome      `json:"outcome"`
	Rounds  int                 `json:"rounds"`
	Trace   []search.RoundStats `json:"trace"`

	// Solution is nil unless Outcome is OutcomeSuccess.
	Solution *search.Solution `json:"solution,omitempty"`

	// Placements is the number of possible object placements, and
	// RemovedCatalyst the number of catalyst cells dropped for being too
	// close to the pattern.
	Placements      int `json:"placements"`
	RemovedCatalyst int `json:"removed_catalyst"`

	// Stored is the run as read back from the journal.
	Stored *journal.Run `json:"-"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// round returns the statistics of the round that placed objects objects.
func (r *Result) round(objects int) (search.RoundStats, bool) {
	for _, s := range r.Trace {
		if s.Objects == objects {
			return s, true
		}
	}
	return search.RoundStats{}, false
}
