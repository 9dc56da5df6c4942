// Package catalog loads the engine's declarative tables: the checklist with
// its rules, the variable derivations, and the system formulas.
//
// A default catalogue is embedded in the binary. Hosts can replace it with
// their own YAML file; adding a checklist item is then a one-row change.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/neurosym/internal/checklist"
	"github.com/HendryAvila/neurosym/internal/expression"
	"github.com/HendryAvila/neurosym/internal/formula"
	"github.com/HendryAvila/neurosym/internal/variables"
)

//go:embed default.yaml
var defaultCatalog []byte

// --- YAML schema ---

// File is the on-disk shape of a catalogue.
type File struct {
	Checklist []ItemSpec     `yaml:"checklist" validate:"required,min=1,dive"`
	Variables []VariableSpec `yaml:"variables" validate:"dive"`
	Formulas  []FormulaSpec  `yaml:"formulas" validate:"dive"`
}

// ItemSpec declares one checklist item and its rule.
type ItemSpec struct {
	ID          string   `yaml:"id" validate:"required"`
	Label       string   `yaml:"label" validate:"required"`
	Category    string   `yaml:"category" validate:"required,oneof=Identity Strategy Financial Risk Compliance"`
	Required    bool     `yaml:"required"`
	Description string   `yaml:"description"`
	Rule        RuleSpec `yaml:"rule"`
}

// RuleSpec is the YAML form of checklist.RuleSpec.
type RuleSpec struct {
	Field  string   `yaml:"field" validate:"required"`
	Kind   string   `yaml:"kind" validate:"required,oneof=present checked min_length min_items one_of range"`
	Min    *float64 `yaml:"min"`
	Max    *float64 `yaml:"max"`
	Values []string `yaml:"values"`
}

// VariableSpec declares one derived variable.
type VariableSpec struct {
	Name        string             `yaml:"name" validate:"required"`
	Source      string             `yaml:"source" validate:"required"`
	Kind        string             `yaml:"kind" validate:"required,oneof=lookup count number text flag"`
	Default     any                `yaml:"default"`
	Table       map[string]float64 `yaml:"table"`
	Description string             `yaml:"description"`
}

// FormulaSpec declares one system formula.
type FormulaSpec struct {
	ID          string `yaml:"id" validate:"required"`
	Name        string `yaml:"name" validate:"required"`
	Expression  string `yaml:"expression" validate:"required"`
	Description string `yaml:"description"`
}

// --- Compiled catalogue ---

// Catalog is a validated, compiled catalogue ready to seed an engine.
type Catalog struct {
	Items       []checklist.Item
	Rules       checklist.Rules
	Derivations []variables.Derivation
	Formulas    []formula.Formula
}

var validate = validator.New()

// Default returns the catalogue embedded in the binary.
func Default() (*Catalog, error) {
	c, err := Parse(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("embedded catalogue: %w", err)
	}
	return c, nil
}

// LoadFile reads and compiles a catalogue from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalogue: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalogue %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes, validates and compiles a catalogue. Unknown YAML keys are
// rejected so that typos in rule rows fail loudly.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalogue is empty")
		}
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("validating: %w", err)
	}
	return compile(f)
}

func compile(f File) (*Catalog, error) {
	c := &Catalog{Rules: make(checklist.Rules, len(f.Checklist))}

	for _, spec := range f.Checklist {
		if _, dup := c.Rules[spec.ID]; dup {
			return nil, fmt.Errorf("checklist item %q: duplicate id", spec.ID)
		}
		pred, err := checklist.Compile(checklist.RuleSpec{
			Field:  spec.Rule.Field,
			Kind:   checklist.RuleKind(spec.Rule.Kind),
			Min:    spec.Rule.Min,
			Max:    spec.Rule.Max,
			Values: spec.Rule.Values,
		})
		if err != nil {
			return nil, fmt.Errorf("checklist item %q: %w", spec.ID, err)
		}
		c.Rules[spec.ID] = pred
		c.Items = append(c.Items, checklist.Item{
			ID:          spec.ID,
			Label:       spec.Label,
			Category:    checklist.Category(spec.Category),
			Status:      checklist.StatusPending,
			Required:    spec.Required,
			Description: spec.Description,
		})
	}

	for _, spec := range f.Variables {
		d := variables.Derivation{
			Name:        spec.Name,
			Source:      spec.Source,
			Kind:        variables.DerivationKind(spec.Kind),
			Table:       spec.Table,
			Description: spec.Description,
		}
		if spec.Default != nil {
			def, err := variables.FromAny(spec.Default)
			if err != nil {
				return nil, fmt.Errorf("variable %q default: %w", spec.Name, err)
			}
			d.Default = def
		}
		c.Derivations = append(c.Derivations, d)
	}
	// Surface derivation errors (duplicates, kind/default mismatch) at load time.
	if _, err := variables.NewBuilder(c.Derivations); err != nil {
		return nil, err
	}

	ids := make(map[string]bool, len(f.Formulas))
	for _, spec := range f.Formulas {
		if ids[spec.ID] {
			return nil, fmt.Errorf("formula %q: duplicate id", spec.ID)
		}
		ids[spec.ID] = true
		if _, err := expression.Scan(spec.Expression); err != nil {
			return nil, fmt.Errorf("formula %q: %w", spec.ID, err)
		}
		sys, err := formula.NewSystem(spec.ID, spec.Name, spec.Expression, spec.Description)
		if err != nil {
			return nil, fmt.Errorf("formula %q: %w", spec.ID, err)
		}
		c.Formulas = append(c.Formulas, sys)
	}

	return c, nil
}
