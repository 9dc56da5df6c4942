package formula

import (
	"github.com/HendryAvila/neurosym/internal/expression"
	"github.com/HendryAvila/neurosym/internal/variables"
)

// Result is the outcome of evaluating a formula. Exactly one of Value and
// Err is meaningful: when Err is set the formula displays as ErrorSentinel.
type Result struct {
	Value variables.Value
	Err   error
}

// OK reports whether evaluation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// String renders the result for display.
func (r Result) String() string {
	if r.Err != nil {
		return ErrorSentinel
	}
	return r.Value.String()
}

// Evaluate runs the formula's expression against store. The formula need
// not be registered; drafts are evaluated the same way. Failures never
// escape as panics: they come back in Result.Err.
func Evaluate(ev *expression.Evaluator, f Formula, store variables.Store) Result {
	out, err := ev.Evaluate(f.Expression, store.Bindings())
	if err != nil {
		return Result{Err: err}
	}
	v, err := variables.FromAny(out)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Value: v}
}
