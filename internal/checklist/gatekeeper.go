package checklist

import (
	"fmt"

	"github.com/HendryAvila/neurosym/internal/report"
)

// Gatekeeper recomputes checklist statuses from a snapshot.
type Gatekeeper struct {
	rules Rules
}

// NewGatekeeper creates a Gatekeeper over the given predicate table.
// The table is copied; later changes to rules do not affect the gatekeeper.
func NewGatekeeper(rules Rules) *Gatekeeper {
	return &Gatekeeper{rules: rules.Clone()}
}

// Validate returns a new checklist with every item's status and value
// recomputed from params. Items without a predicate, and items whose
// predicate panics, are treated as not satisfied. Neither params nor
// items is modified.
func (g *Gatekeeper) Validate(params report.Parameters, items []Item) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		out[i] = Transition(item, g.verdict(item.ID, params))
	}
	return out
}

// verdict evaluates the predicate for id, containing any panic.
func (g *Gatekeeper) verdict(id string, params report.Parameters) (v Verdict) {
	pred, ok := g.rules[id]
	if !ok || pred == nil {
		return Unsatisfied("")
	}
	defer func() {
		if r := recover(); r != nil {
			v = Unsatisfied("")
		}
	}()
	return pred(params)
}

// Transition applies one verdict to one item:
//
//	satisfied            -> satisfied (value = observed)
//	skipped item         -> skipped   (any verdict short of satisfied)
//	failed               -> failed    (value = observed)
//	not satisfied        -> pending
func Transition(item Item, v Verdict) Item {
	item.Value = v.Value
	switch {
	case v.Status == StatusSatisfied:
		item.Status = StatusSatisfied
	case item.Status == StatusSkipped:
		// override holds until the predicate does
	case v.Status == StatusFailed:
		item.Status = StatusFailed
	default:
		item.Status = StatusPending
	}
	return item
}

// SetSkipped returns a new checklist with the item's manual skip override
// set or cleared. Clearing a skip puts the item back to pending; the next
// validation pass decides its real status.
func SetSkipped(items []Item, id string, skipped bool) ([]Item, error) {
	idx := -1
	for i, it := range items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}

	out := Clone(items)
	switch {
	case skipped:
		out[idx].Status = StatusSkipped
	case out[idx].Status == StatusSkipped:
		out[idx].Status = StatusPending
	}
	return out, nil
}
