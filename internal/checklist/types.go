// Package checklist implements the gatekeeper: a checklist whose item
// statuses are recomputed from a report snapshot by a declarative table of
// predicates keyed by item id.
//
// Design principles:
// - SRP: item types, rule compilation and the status transition live in separate files
// - OCP: adding a checklist item means adding one table row, never editing control flow
// - Pure: every operation returns a new checklist; inputs are never modified
package checklist

import (
	"errors"
	"fmt"

	"github.com/HendryAvila/neurosym/internal/report"
)

// ErrItemNotFound is returned when an operation names an unknown item id.
var ErrItemNotFound = errors.New("checklist item not found")

// --- Status enum ---

// Status is the gatekeeper state of a single item.
type Status string

const (
	// StatusPending is the initial state: the predicate does not hold yet.
	StatusPending Status = "pending"
	// StatusSatisfied means the predicate held on the last validation pass.
	StatusSatisfied Status = "satisfied"
	// StatusFailed means a predicate positively detected an invalid value,
	// as opposed to one that is merely absent.
	StatusFailed Status = "failed"
	// StatusSkipped is a human override. Validation keeps it until the
	// predicate holds.
	StatusSkipped Status = "skipped"
)

var validStatuses = map[Status]bool{
	StatusPending:   true,
	StatusSatisfied: true,
	StatusFailed:    true,
	StatusSkipped:   true,
}

// --- Category enum ---

// Category groups items for display. It plays no part in evaluation.
type Category string

const (
	CategoryIdentity   Category = "Identity"
	CategoryStrategy   Category = "Strategy"
	CategoryFinancial  Category = "Financial"
	CategoryRisk       Category = "Risk"
	CategoryCompliance Category = "Compliance"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryIdentity,
	CategoryStrategy,
	CategoryFinancial,
	CategoryRisk,
	CategoryCompliance,
}

var validCategories = map[Category]bool{
	CategoryIdentity:   true,
	CategoryStrategy:   true,
	CategoryFinancial:  true,
	CategoryRisk:       true,
	CategoryCompliance: true,
}

// ValidateCategory returns an error if the category is not recognized.
func ValidateCategory(c Category) error {
	if !validCategories[c] {
		return fmt.Errorf("invalid category %q: must be one of: Identity, Strategy, Financial, Risk, Compliance", c)
	}
	return nil
}

// --- Core data structures ---

// Item is one checklist entry.
type Item struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Category    Category `json:"category"`
	Status      Status   `json:"status"`
	Value       string   `json:"value"` // last observed snapshot value, for display/audit
	Required    bool     `json:"required"`
	Description string   `json:"description,omitempty"`
}

// Verdict is what a predicate reports about the snapshot.
// Status is StatusSatisfied, StatusPending (not satisfied) or StatusFailed.
type Verdict struct {
	Status Status
	Value  string
}

// Satisfied reports that the predicate holds, observing value.
func Satisfied(value string) Verdict { return Verdict{Status: StatusSatisfied, Value: value} }

// Unsatisfied reports that the predicate does not hold (yet).
func Unsatisfied(value string) Verdict { return Verdict{Status: StatusPending, Value: value} }

// Failed reports that the observed value is invalid, not merely missing.
func Failed(value string) Verdict { return Verdict{Status: StatusFailed, Value: value} }

// Predicate decides an item's verdict from a snapshot. It must not modify params.
type Predicate func(params report.Parameters) Verdict

// Rules is the declarative predicate table, keyed by item id.
type Rules map[string]Predicate

// Clone returns a copy of the table that can be extended independently.
func (r Rules) Clone() Rules {
	out := make(Rules, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy of a checklist.
func Clone(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Find returns the item with the given id.
func Find(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
