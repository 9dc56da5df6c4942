// Package report holds the parameter snapshot the rule engine reads.
//
// The snapshot is owned by the host (the wizard UI, an MCP client, a CLI
// invocation). The engine only ever reads it: every accessor here is
// non-mutating and never panics, whatever shape the host sent. A field that
// cannot be coerced to the requested type reads as its zero value with
// ok == false, so a single malformed field degrades to "absent".
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Parameters is a read-only snapshot of the report wizard's fields,
// keyed by field name (e.g. "country", "organizationType", "industry").
// Values are whatever a JSON decoder produces: strings, float64s, bools,
// []any, map[string]any, or nil.
type Parameters map[string]any

// Has reports whether the field is present with a non-nil value.
func (p Parameters) Has(field string) bool {
	v, ok := p[field]
	return ok && v != nil
}

// Text returns the field as a trimmed string.
// Lists and maps are not text; they read as absent.
func (p Parameters) Text(field string) (string, bool) {
	v, ok := p[field]
	if !ok || v == nil {
		return "", false
	}
	switch v.(type) {
	case []any, []string, map[string]any:
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// Float returns the field as a float64. Numeric strings ("12.5") are accepted.
func (p Parameters) Float(field string) (float64, bool) {
	v, ok := p[field]
	if !ok || v == nil {
		return 0, false
	}
	if s, isString := v.(string); isString {
		v = strings.TrimSpace(s)
		if v == "" {
			return 0, false
		}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Bool returns the field as a bool. "true"/"false"/"1"/"0" strings are accepted.
func (p Parameters) Bool(field string) (bool, bool) {
	v, ok := p[field]
	if !ok || v == nil {
		return false, false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// List returns the field as a list of non-empty trimmed strings.
// A scalar string is treated as a one-element list, so hosts that send
// "industry": "Energy" and "industry": ["Energy"] are read the same way.
func (p Parameters) List(field string) ([]string, bool) {
	v, ok := p[field]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, true
		}
		return []string{s}, true
	}
	raw, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, true
}

// Observe renders the field's current value for display and audit.
// Lists are joined with ", "; absent fields render as "".
func (p Parameters) Observe(field string) string {
	v, ok := p[field]
	if !ok || v == nil {
		return ""
	}
	switch v.(type) {
	case []any, []string:
		items, _ := p.List(field)
		return strings.Join(items, ", ")
	case map[string]any:
		return fmt.Sprintf("%d fields", len(v.(map[string]any)))
	}
	if s, ok := p.Text(field); ok {
		return s
	}
	return ""
}

// Fields returns the snapshot's field names in sorted order.
func (p Parameters) Fields() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy. Hosts that keep a snapshot across calls
// clone it before handing out references.
func (p Parameters) Clone() Parameters {
	out := make(Parameters, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a new snapshot with patch laid over p. A nil value in the
// patch removes the field. Neither input is modified.
func (p Parameters) Merge(patch Parameters) Parameters {
	out := p.Clone()
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}
