// Package engine is the single entry point to the rule engine.
//
// It composes the gatekeeper, the variable builder, the formula registry and
// the expression evaluator. Every operation is a pure function from
// (inputs, current State) to a new State, or to a scalar for evaluation. The
// Engine holds configuration only, so one Engine can serve any number of
// independent sessions.
package engine

import (
	"fmt"

	"github.com/HendryAvila/neurosym/internal/catalog"
	"github.com/HendryAvila/neurosym/internal/checklist"
	"github.com/HendryAvila/neurosym/internal/expression"
	"github.com/HendryAvila/neurosym/internal/formula"
	"github.com/HendryAvila/neurosym/internal/report"
	"github.com/HendryAvila/neurosym/internal/variables"
)

// State is the aggregate a host threads through engine calls.
// Treat it as an immutable value: operations return new States and never
// modify the one passed in.
type State struct {
	Checklist []checklist.Item `json:"checklist"`
	Formulas  []formula.Formula `json:"formulas"`
	Variables variables.Store   `json:"variable_store"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{
		Checklist: checklist.Clone(s.Checklist),
		Formulas:  formula.Clone(s.Formulas),
		Variables: s.Variables.Clone(),
	}
}

// Engine evaluates checklists and formulas for one catalogue.
type Engine struct {
	gatekeeper *checklist.Gatekeeper
	builder    *variables.Builder
	evaluator  *expression.Evaluator

	items    []checklist.Item
	formulas []formula.Formula
}

// New builds an Engine from a compiled catalogue.
func New(c *catalog.Catalog, ev *expression.Evaluator) (*Engine, error) {
	if c == nil {
		return nil, fmt.Errorf("catalogue is required")
	}
	if ev == nil {
		ev = expression.New()
	}
	builder, err := variables.NewBuilder(c.Derivations)
	if err != nil {
		return nil, fmt.Errorf("building variable store: %w", err)
	}
	return &Engine{
		gatekeeper: checklist.NewGatekeeper(c.Rules),
		builder:    builder,
		evaluator:  ev,
		items:      checklist.Clone(c.Items),
		formulas:   formula.Clone(c.Formulas),
	}, nil
}

// NewState returns the initial state of a session: every item pending,
// the system formulas, and an empty variable store. The first
// ValidateGatekeeper call populates the store.
func (e *Engine) NewState() State {
	items := checklist.Clone(e.items)
	for i := range items {
		items[i].Status = checklist.StatusPending
		items[i].Value = ""
	}
	return State{
		Checklist: items,
		Formulas:  formula.Clone(e.formulas),
		Variables: variables.Store{},
	}
}

// ValidateGatekeeper recomputes every checklist item from params and
// rebuilds the variable store. Manual skips persist while their predicate
// does not hold. Never panics; never modifies params or state.
func (e *Engine) ValidateGatekeeper(params report.Parameters, state State) State {
	return State{
		Checklist: e.gatekeeper.Validate(params, state.Checklist),
		Formulas:  formula.Clone(state.Formulas),
		Variables: e.builder.Build(params, state.Variables),
	}
}

// EvaluateFormula evaluates f against store. f may be a draft that is not
// in any registry. A failed evaluation returns a Result whose String() is
// formula.ErrorSentinel.
func (e *Engine) EvaluateFormula(f formula.Formula, store variables.Store) formula.Result {
	return formula.Evaluate(e.evaluator, f, store)
}

// CreateFormula appends a user formula named name. Empty (after trimming)
// name or expression leaves the state unchanged; use AddFormula to learn
// why a creation was refused.
func (e *Engine) CreateFormula(name, expr string, state State) State {
	next, _, err := e.AddFormula(formula.Draft{Name: name, Expression: expr}, state)
	if err != nil {
		return state
	}
	return next
}

// AddFormula is CreateFormula with the created formula and the refusal
// reason returned.
func (e *Engine) AddFormula(d formula.Draft, state State) (State, formula.Formula, error) {
	registry, f, err := formula.Create(state.Formulas, d)
	if err != nil {
		return state, formula.Formula{}, err
	}
	next := state.Clone()
	next.Formulas = registry
	return next, f, nil
}

// DeleteFormula removes a user formula. System formulas are refused with
// formula.ErrSystemFormula and the state is returned unchanged.
func (e *Engine) DeleteFormula(id string, state State) (State, error) {
	registry, err := formula.Delete(state.Formulas, id)
	if err != nil {
		return state, err
	}
	next := state.Clone()
	next.Formulas = registry
	return next, nil
}

// SetSkipped applies or clears the manual skip override on one item.
func (e *Engine) SetSkipped(id string, skipped bool, state State) (State, error) {
	items, err := checklist.SetSkipped(state.Checklist, id, skipped)
	if err != nil {
		return state, err
	}
	next := state.Clone()
	next.Checklist = items
	return next, nil
}

// InjectVariables returns a new state whose store has vars laid over it.
// Derived names are refused: the next validation pass would overwrite them.
// Injected test variables survive later validation passes.
func (e *Engine) InjectVariables(vars variables.Store, state State) (State, error) {
	for _, name := range e.builder.Names() {
		if _, ok := vars[name]; ok {
			return state, fmt.Errorf("variable %q is derived from report parameters and cannot be set directly", name)
		}
	}
	next := state.Clone()
	next.Variables = state.Variables.With(vars)
	return next, nil
}

// Readiness summarizes the checklist for gating decisions made by the host.
func (e *Engine) Readiness(state State) checklist.Summary {
	return checklist.Summarize(state.Checklist)
}

// DerivedVariables returns the names the builder recomputes on every pass.
func (e *Engine) DerivedVariables() []string {
	return e.builder.Names()
}

// Evaluator exposes the engine's expression evaluator.
func (e *Engine) Evaluator() *expression.Evaluator {
	return e.evaluator
}
