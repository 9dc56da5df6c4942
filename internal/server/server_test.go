package server

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/HendryAvila/neurosym/internal/config"
)

func TestNew_DefaultCatalogue(t *testing.T) {
	cfg := config.Default()
	s, cleanup, err := New(&cfg, zaptest.NewLogger(t))
	defer cleanup()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if s == nil {
		t.Fatal("New() returned nil server")
	}
}

func TestNewEngine_CatalogueFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `checklist:
  - id: name
    label: Name Given
    category: Identity
    required: true
    rule: { field: name, kind: present }
variables:
  - name: seats
    source: seats
    kind: number
formulas:
  - id: sys_double
    name: Double Seats
    expression: seats * 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.CatalogPath = path
	eng, err := NewEngine(&cfg)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	state := eng.NewState()
	if len(state.Checklist) != 1 || len(state.Formulas) != 1 {
		t.Errorf("state = %d items, %d formulas, want 1 and 1", len(state.Checklist), len(state.Formulas))
	}
}

func TestNew_BadCatalogue(t *testing.T) {
	cfg := config.Default()
	cfg.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, cleanup, err := New(&cfg, nil)
	defer cleanup()
	if err == nil {
		t.Error("New() should fail when the catalogue file is missing")
	}
}
