// Package variables holds the variable store formulas are evaluated against,
// and the builder that derives it from a report snapshot.
//
// Design principles:
// - Value is a closed scalar: number, string or boolean, nothing else
// - Store is a plain map; every operation that changes it returns a copy
// - Derivations are data (a table of rows), not code paths
package variables

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind is the type tag of a Value.
type Kind string

const (
	KindNumber Kind = "number"
	KindString Kind = "string"
	KindBool   Kind = "boolean"
)

// Value is a number, string or boolean.
// The zero Value is the number 0.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
}

// Number returns a numeric Value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text returns a string Value.
func Text(s string) Value { return Value{kind: KindString, str: s} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the value's type tag.
func (v Value) Kind() Kind {
	if v.kind == "" {
		return KindNumber
	}
	return v.kind
}

// Float returns the numeric payload and whether v is a number.
func (v Value) Float() (float64, bool) {
	return v.num, v.Kind() == KindNumber
}

// Interface returns the Go value handed to the expression evaluator.
func (v Value) Interface() any {
	switch v.Kind() {
	case KindString:
		return v.str
	case KindBool:
		return v.b
	default:
		return v.num
	}
}

// String renders the value for display. Numbers use the shortest
// representation that round-trips ("100", "0.33").
func (v Value) String() string {
	switch v.Kind() {
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(other Value) bool {
	return v.Kind() == other.Kind() && v.Interface() == other.Interface()
}

// MarshalJSON encodes the value as a bare JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON accepts a JSON number, string or boolean.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromAny converts a decoded JSON/YAML scalar into a Value.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("parsing number %q: %w", x, err)
		}
		return Number(f), nil
	case string:
		return Text(x), nil
	case bool:
		return Bool(x), nil
	default:
		return Value{}, fmt.Errorf("unsupported variable value %v (%T): want number, string or boolean", raw, raw)
	}
}

// Store maps variable names to values.
type Store map[string]Value

// Clone returns an independent copy of s. A nil store clones to an empty one.
func (s Store) Clone() Store {
	out := make(Store, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// With returns a copy of s with overrides laid over it.
func (s Store) With(overrides Store) Store {
	out := s.Clone()
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Bindings returns the store as evaluator bindings.
func (s Store) Bindings() map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		out[k] = v.Interface()
	}
	return out
}

// Names returns the variable names in sorted order.
func (s Store) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FromMap converts a decoded object into a Store, rejecting non-scalar values.
func FromMap(raw map[string]any) (Store, error) {
	out := make(Store, len(raw))
	for k, v := range raw {
		val, err := FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}
