package harness

import (
	"github.com/roach88/sigconv/internal/engine"
	"github.com/roach88/sigconv/internal/store"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if the expected error matched, or every assertion held.
	Pass bool `json:"pass"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Outcome is what the engine produced. Nil when the request failed.
	Outcome *engine.Outcome `json:"outcome,omitempty"`

	// Err is the request error, if any.
	Err error `json:"-"`

	// Run is the run as recorded in the scenario's store.
	Run *store.Run `json:"run,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
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
