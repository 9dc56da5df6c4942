package checklist

// Summary is a readiness report over a checklist.
//
// The engine only computes it: deciding what a failed gate blocks is
// the host's policy.
type Summary struct {
	Total        int            `json:"total"`
	Counts       map[Status]int `json:"counts"`
	Completion   int            `json:"completion"` // satisfied items, percent (0-100)
	GateFailures []Item         `json:"gate_failures,omitempty"`
	GatePassed   bool           `json:"gate_passed"`
}

// Summarize counts statuses and collects required items that are not
// satisfied. Skipped required items count as gate failures.
func Summarize(items []Item) Summary {
	s := Summary{
		Total:  len(items),
		Counts: make(map[Status]int, len(validStatuses)),
	}
	for st := range validStatuses {
		s.Counts[st] = 0
	}

	for _, it := range items {
		s.Counts[it.Status]++
		if it.Required && it.Status != StatusSatisfied {
			s.GateFailures = append(s.GateFailures, it)
		}
	}

	if s.Total > 0 {
		s.Completion = s.Counts[StatusSatisfied] * 100 / s.Total
	}
	s.GatePassed = len(s.GateFailures) == 0
	return s
}

// ByCategory groups items by category, preserving checklist order within a
// group. Iterate Categories for display order.
func ByCategory(items []Item) map[Category][]Item {
	groups := make(map[Category][]Item)
	for _, it := range items {
		groups[it.Category] = append(groups[it.Category], it)
	}
	return groups
}
