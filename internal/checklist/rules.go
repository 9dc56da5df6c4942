package checklist

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/HendryAvila/neurosym/internal/report"
)

// RuleKind names a reusable predicate shape.
type RuleKind string

const (
	// RulePresent holds when the field is a non-empty text or a non-empty list.
	RulePresent RuleKind = "present"
	// RuleChecked holds when the field is boolean true.
	RuleChecked RuleKind = "checked"
	// RuleMinLength holds when the text field has at least Min characters.
	RuleMinLength RuleKind = "min_length"
	// RuleMinItems holds when the list field has at least Min entries.
	RuleMinItems RuleKind = "min_items"
	// RuleOneOf holds when the text field equals one of Values (case-insensitive).
	RuleOneOf RuleKind = "one_of"
	// RuleRange holds when the numeric field lies in [Min, Max]. A present
	// number outside the range is a contradiction and yields StatusFailed.
	RuleRange RuleKind = "range"
)

// RuleSpec is the data form of a predicate: one row in a catalogue.
type RuleSpec struct {
	Field  string
	Kind   RuleKind
	Min    *float64
	Max    *float64
	Values []string
}

// Compile turns a rule spec into a Predicate.
func Compile(spec RuleSpec) (Predicate, error) {
	if spec.Field == "" {
		return nil, fmt.Errorf("rule %s: field is required", spec.Kind)
	}
	field := spec.Field

	switch spec.Kind {
	case RulePresent:
		return func(p report.Parameters) Verdict {
			observed := p.Observe(field)
			if items, ok := p.List(field); ok && len(items) > 0 {
				return Satisfied(observed)
			}
			if s, ok := p.Text(field); ok && s != "" {
				return Satisfied(observed)
			}
			return Unsatisfied(observed)
		}, nil

	case RuleChecked:
		return func(p report.Parameters) Verdict {
			if b, ok := p.Bool(field); ok && b {
				return Satisfied("true")
			}
			return Unsatisfied(p.Observe(field))
		}, nil

	case RuleMinLength:
		if spec.Min == nil || *spec.Min < 0 {
			return nil, fmt.Errorf("rule min_length on %q: min must be >= 0", field)
		}
		minLen := int(*spec.Min)
		return func(p report.Parameters) Verdict {
			s, ok := p.Text(field)
			if ok && s != "" && utf8.RuneCountInString(s) >= minLen {
				return Satisfied(s)
			}
			return Unsatisfied(p.Observe(field))
		}, nil

	case RuleMinItems:
		if spec.Min == nil || *spec.Min < 1 {
			return nil, fmt.Errorf("rule min_items on %q: min must be >= 1", field)
		}
		minItems := int(*spec.Min)
		return func(p report.Parameters) Verdict {
			items, ok := p.List(field)
			if ok && len(items) >= minItems {
				return Satisfied(strings.Join(items, ", "))
			}
			return Unsatisfied(p.Observe(field))
		}, nil

	case RuleOneOf:
		if len(spec.Values) == 0 {
			return nil, fmt.Errorf("rule one_of on %q: values are required", field)
		}
		allowed := make(map[string]bool, len(spec.Values))
		for _, v := range spec.Values {
			allowed[strings.ToLower(strings.TrimSpace(v))] = true
		}
		return func(p report.Parameters) Verdict {
			s, ok := p.Text(field)
			if ok && allowed[strings.ToLower(s)] {
				return Satisfied(s)
			}
			return Unsatisfied(p.Observe(field))
		}, nil

	case RuleRange:
		if spec.Min == nil && spec.Max == nil {
			return nil, fmt.Errorf("rule range on %q: min or max is required", field)
		}
		if spec.Min != nil && spec.Max != nil && *spec.Min > *spec.Max {
			return nil, fmt.Errorf("rule range on %q: min %v exceeds max %v", field, *spec.Min, *spec.Max)
		}
		lo, hi := spec.Min, spec.Max
		return func(p report.Parameters) Verdict {
			observed := p.Observe(field)
			x, ok := p.Float(field)
			if !ok {
				return Unsatisfied(observed)
			}
			if (lo != nil && x < *lo) || (hi != nil && x > *hi) {
				return Failed(observed)
			}
			return Satisfied(observed)
		}, nil

	default:
		return nil, fmt.Errorf("invalid rule kind %q: must be one of: present, checked, min_length, min_items, one_of, range", spec.Kind)
	}
}
