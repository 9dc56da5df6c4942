// Package formula owns the formula registry: named expressions over the
// variable store, some shipped with the engine (system formulas) and some
// authored by users at runtime.
//
// Formulas are immutable once created. There is no edit operation, so the
// variable list extracted at creation always matches the expression text.
// To change a user formula, delete it and create a new one.
package formula

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/HendryAvila/neurosym/internal/expression"
)

// ErrorSentinel is the display value of a formula that failed to evaluate.
const ErrorSentinel = "Error"

// UserIDPrefix marks ids generated for user formulas. System formula ids
// must not use it, which keeps the two id spaces disjoint.
const UserIDPrefix = "usr_"

// Errors returned by registry operations.
var (
	ErrInvalidFormula  = errors.New("invalid formula")
	ErrSystemFormula   = errors.New("system formulas cannot be deleted")
	ErrFormulaNotFound = errors.New("formula not found")
)

// Formula is a named expression bound to the variables it references.
type Formula struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Expression  string   `json:"expression"`
	Variables   []string `json:"variables"`
	Description string   `json:"description,omitempty"`
	IsSystem    bool     `json:"is_system"`
}

// Draft is user input for a new formula, before it has an id.
type Draft struct {
	Name        string `validate:"required"`
	Expression  string `validate:"required"`
	Description string
}

var validate = validator.New()

// newID generates user formula ids. Tests replace it to force collisions.
var newID = func() string {
	return UserIDPrefix + uuid.NewString()
}

// ExtractVariables returns the identifiers referenced by an expression,
// de-duplicated in order of first appearance.
func ExtractVariables(expr string) []string {
	names := expression.Identifiers(expr)
	if names == nil {
		return []string{}
	}
	return names
}

// NewSystem builds a system formula with a fixed id.
func NewSystem(id, name, expr, description string) (Formula, error) {
	if strings.HasPrefix(id, UserIDPrefix) {
		return Formula{}, fmt.Errorf("%w: system id %q uses the reserved prefix %q", ErrInvalidFormula, id, UserIDPrefix)
	}
	if strings.TrimSpace(id) == "" || strings.TrimSpace(name) == "" || strings.TrimSpace(expr) == "" {
		return Formula{}, fmt.Errorf("%w: system formula needs id, name and expression", ErrInvalidFormula)
	}
	return Formula{
		ID:          id,
		Name:        name,
		Expression:  expr,
		Variables:   ExtractVariables(expr),
		Description: description,
		IsSystem:    true,
	}, nil
}

// Create validates a draft and appends the new formula to registry.
// Name and expression are trimmed; either being empty is an
// ErrInvalidFormula and leaves the registry untouched. The returned slice
// is new; registry is never modified.
func Create(registry []Formula, d Draft) ([]Formula, Formula, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Expression = strings.TrimSpace(d.Expression)
	d.Description = strings.TrimSpace(d.Description)

	if err := validate.Struct(d); err != nil {
		return registry, Formula{}, fmt.Errorf("%w: %v", ErrInvalidFormula, err)
	}

	f := Formula{
		ID:          uniqueID(registry),
		Name:        d.Name,
		Expression:  d.Expression,
		Variables:   ExtractVariables(d.Expression),
		Description: d.Description,
	}

	out := make([]Formula, 0, len(registry)+1)
	out = append(out, registry...)
	out = append(out, f)
	return out, f, nil
}

// uniqueID draws ids until one is unused in registry.
func uniqueID(registry []Formula) string {
	for {
		id := newID()
		if _, taken := Find(registry, id); !taken {
			return id
		}
	}
}

// Delete returns registry without the formula id. System formulas are
// refused with ErrSystemFormula; unknown ids yield ErrFormulaNotFound.
// On error the original registry is returned unchanged.
func Delete(registry []Formula, id string) ([]Formula, error) {
	idx := slices.IndexFunc(registry, func(f Formula) bool { return f.ID == id })
	if idx < 0 {
		return registry, fmt.Errorf("%w: %q", ErrFormulaNotFound, id)
	}
	if registry[idx].IsSystem {
		return registry, fmt.Errorf("%w: %q", ErrSystemFormula, id)
	}

	out := make([]Formula, 0, len(registry)-1)
	out = append(out, registry[:idx]...)
	out = append(out, registry[idx+1:]...)
	return out, nil
}

// Find returns the formula with the given id.
func Find(registry []Formula, id string) (Formula, bool) {
	for _, f := range registry {
		if f.ID == id {
			return f, true
		}
	}
	return Formula{}, false
}

// Clone returns an independent copy of a registry.
func Clone(registry []Formula) []Formula {
	if registry == nil {
		return nil
	}
	out := make([]Formula, len(registry))
	for i, f := range registry {
		f.Variables = slices.Clone(f.Variables)
		out[i] = f
	}
	return out
}
