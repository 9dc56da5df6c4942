package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/neurosym/internal/checklist"
	"github.com/HendryAvila/neurosym/internal/formula"
	"github.com/HendryAvila/neurosym/internal/report"
	"github.com/HendryAvila/neurosym/internal/variables"
)

func TestDefault_Compiles(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Items, 10)
	assert.Len(t, c.Rules, len(c.Items))
	assert.Len(t, c.Derivations, 5)
	assert.Len(t, c.Formulas, 3)

	for _, it := range c.Items {
		assert.Equal(t, checklist.StatusPending, it.Status, "item %s", it.ID)
		assert.NoError(t, checklist.ValidateCategory(it.Category))
		assert.Contains(t, c.Rules, it.ID)
	}
	for _, f := range c.Formulas {
		assert.True(t, f.IsSystem)
		assert.NotContains(t, f.ID, formula.UserIDPrefix)
	}
}

func TestDefault_EveryCategoryUsed(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	groups := checklist.ByCategory(c.Items)
	for _, cat := range checklist.Categories {
		assert.NotEmpty(t, groups[cat], "category %s has no items", cat)
	}
}

func TestDefault_SystemFormulasOnlyUseDerivedVariables(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	derived := map[string]bool{}
	for _, d := range c.Derivations {
		derived[d.Name] = true
	}
	for _, f := range c.Formulas {
		for _, v := range f.Variables {
			assert.True(t, derived[v], "formula %s references underived variable %s", f.ID, v)
		}
	}
}

func TestDefault_CountryRule(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	g := checklist.NewGatekeeper(c.Rules)
	items := g.Validate(report.Parameters{"country": "Vietnam"}, c.Items)
	item, ok := checklist.Find(items, "country")
	require.True(t, ok)
	assert.Equal(t, "Target Country Selected", item.Label)
	assert.Equal(t, checklist.StatusSatisfied, item.Status)
	assert.Equal(t, "Vietnam", item.Value)
}

func TestDefault_Derivations(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	b, err := variables.NewBuilder(c.Derivations)
	require.NoError(t, err)
	store := b.Build(report.Parameters{"revenue": "$50M-$250M", "riskTolerance": "low"}, nil)

	assert.True(t, store["revenue_score"].Equal(variables.Number(70)))
	assert.True(t, store["risk_score"].Equal(variables.Number(30)))

	empty := b.Build(report.Parameters{}, nil)
	assert.True(t, empty["risk_score"].Equal(variables.Number(50)))
	assert.True(t, empty["target_country"].Equal(variables.Text("")))
	assert.True(t, empty["compliance_ack"].Equal(variables.Bool(false)))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ""},
		{"no checklist", "formulas: []\n"},
		{"unknown key", "checklist:\n  - id: a\n    label: A\n    category: Identity\n    rule: {field: x, kind: present}\n    colour: red\n"},
		{"bad category", "checklist:\n  - id: a\n    label: A\n    category: Marketing\n    rule: {field: x, kind: present}\n"},
		{"bad rule kind", "checklist:\n  - id: a\n    label: A\n    category: Identity\n    rule: {field: x, kind: regex}\n"},
		{"rule missing min", "checklist:\n  - id: a\n    label: A\n    category: Identity\n    rule: {field: x, kind: min_items}\n"},
		{"duplicate item", "checklist:\n  - id: a\n    label: A\n    category: Identity\n    rule: {field: x, kind: present}\n  - id: a\n    label: B\n    category: Risk\n    rule: {field: y, kind: present}\n"},
		{"lookup without table", "checklist:\n  - id: a\n    label: A\n    category: Identity\n    rule: {field: x, kind: present}\nvariables:\n  - name: v\n    source: x\n    kind: lookup\n"},
		{"bad default", "checklist:\n  - id: a\n    label: A\n    category: Identity\n    rule: {field: x, kind: present}\nvariables:\n  - name: v\n    source: x\n    kind: count\n    default: [1]\n"},
		{"user id prefix", "checklist:\n  - id: a\n    label: A\n    category: Identity\n    rule: {field: x, kind: present}\nformulas:\n  - id: usr_1\n    name: X\n    expression: a + 1\n"},
		{"unsafe expression", "checklist:\n  - id: a\n    label: A\n    category: Identity\n    rule: {field: x, kind: present}\nformulas:\n  - id: f\n    name: X\n    expression: len(a)\n"},
		{"duplicate formula", "checklist:\n  - id: a\n    label: A\n    category: Identity\n    rule: {field: x, kind: present}\nformulas:\n  - id: f\n    name: X\n    expression: a\n  - id: f\n    name: Y\n    expression: b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := "checklist:\n" +
		"  - id: equity\n" +
		"    label: Equity Share Within Bounds\n" +
		"    category: Financial\n" +
		"    required: true\n" +
		"    rule: {field: equityShare, kind: range, min: 0, max: 100}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.True(t, c.Items[0].Required)
	assert.Empty(t, c.Formulas)

	g := checklist.NewGatekeeper(c.Rules)
	items := g.Validate(report.Parameters{"equityShare": 150}, c.Items)
	assert.Equal(t, checklist.StatusFailed, items[0].Status)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
