package variables

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/neurosym/internal/report"
)

// DerivationKind selects how a derived variable is computed from its source field.
type DerivationKind string

const (
	// DeriveLookup maps a banded/enum text field through a fixed table
	// (case-insensitive). Unknown or missing values yield the default.
	DeriveLookup DerivationKind = "lookup"
	// DeriveCount counts the non-empty entries of a list field.
	DeriveCount DerivationKind = "count"
	// DeriveNumber copies a numeric field.
	DeriveNumber DerivationKind = "number"
	// DeriveText copies a non-empty text field.
	DeriveText DerivationKind = "text"
	// DeriveFlag copies a boolean field.
	DeriveFlag DerivationKind = "flag"
)

// validKinds maps each derivation kind to the Value kind it produces.
var validKinds = map[DerivationKind]Kind{
	DeriveLookup: KindNumber,
	DeriveCount:  KindNumber,
	DeriveNumber: KindNumber,
	DeriveText:   KindString,
	DeriveFlag:   KindBool,
}

// Derivation is one row of the derivation table: a variable name, the
// snapshot field it reads, and the rule that turns one into the other.
type Derivation struct {
	Name        string
	Source      string
	Kind        DerivationKind
	Table       map[string]float64
	Default     Value
	Description string
}

// Builder produces variable stores from report snapshots.
type Builder struct {
	rows []Derivation
}

// NewBuilder validates the derivation table and returns a Builder.
// Lookup table keys are normalized (trimmed, lower-cased) once here.
func NewBuilder(rows []Derivation) (*Builder, error) {
	seen := make(map[string]bool, len(rows))
	normalized := make([]Derivation, 0, len(rows))

	for _, row := range rows {
		if row.Name == "" || row.Source == "" {
			return nil, fmt.Errorf("derivation %q: name and source are required", row.Name)
		}
		if seen[row.Name] {
			return nil, fmt.Errorf("derivation %q: duplicate variable name", row.Name)
		}
		seen[row.Name] = true

		produces, ok := validKinds[row.Kind]
		if !ok {
			return nil, fmt.Errorf("derivation %q: invalid kind %q: must be one of: lookup, count, number, text, flag", row.Name, row.Kind)
		}
		if row.Default.kind == "" {
			row.Default = zeroOf(produces)
		}
		if row.Default.Kind() != produces {
			return nil, fmt.Errorf("derivation %q: default is a %s, %s derivations produce a %s", row.Name, row.Default.Kind(), row.Kind, produces)
		}

		if row.Kind == DeriveLookup {
			if len(row.Table) == 0 {
				return nil, fmt.Errorf("derivation %q: lookup requires a non-empty table", row.Name)
			}
			table := make(map[string]float64, len(row.Table))
			for k, v := range row.Table {
				table[normalizeKey(k)] = v
			}
			row.Table = table
		}

		normalized = append(normalized, row)
	}

	return &Builder{rows: normalized}, nil
}

// Names returns the derived variable names in declaration order.
func (b *Builder) Names() []string {
	names := make([]string, len(b.rows))
	for i, row := range b.rows {
		names[i] = row.Name
	}
	return names
}

// Build returns prev overlaid with every derived variable recomputed from
// params. Keys prev holds that no row derives are carried over unchanged.
// Neither input is modified; the result depends only on its inputs.
func (b *Builder) Build(params report.Parameters, prev Store) Store {
	out := prev.Clone()
	for _, row := range b.rows {
		out[row.Name] = row.derive(params)
	}
	return out
}

func (d Derivation) derive(params report.Parameters) Value {
	switch d.Kind {
	case DeriveLookup:
		s, ok := params.Text(d.Source)
		if !ok || s == "" {
			return d.Default
		}
		if score, found := d.Table[normalizeKey(s)]; found {
			return Number(score)
		}
		return d.Default

	case DeriveCount:
		items, ok := params.List(d.Source)
		if !ok {
			return d.Default
		}
		return Number(float64(len(items)))

	case DeriveNumber:
		if f, ok := params.Float(d.Source); ok {
			return Number(f)
		}
		return d.Default

	case DeriveText:
		if s, ok := params.Text(d.Source); ok && s != "" {
			return Text(s)
		}
		return d.Default

	case DeriveFlag:
		if b, ok := params.Bool(d.Source); ok {
			return Bool(b)
		}
		return d.Default
	}
	return d.Default
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func zeroOf(k Kind) Value {
	switch k {
	case KindString:
		return Text("")
	case KindBool:
		return Bool(false)
	default:
		return Number(0)
	}
}
