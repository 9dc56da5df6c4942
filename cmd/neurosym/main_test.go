package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HendryAvila/neurosym/internal/config"
	"github.com/HendryAvila/neurosym/internal/variables"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	orig := loadConfig
	loadConfig = func() (*config.Config, error) {
		cfg := config.Default()
		return &cfg, nil
	}
	t.Cleanup(func() { loadConfig = orig })

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// --- eval ---

func TestEval_Literal(t *testing.T) {
	out, err := runCLI(t, "eval", "2 + 3 * 4")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if strings.TrimSpace(out) != "14" {
		t.Errorf("output = %q, want 14", out)
	}
}

func TestEval_SetFlags(t *testing.T) {
	out, err := runCLI(t, "eval", "(revenue_score * 0.3) + (100 - risk_score)",
		"--set", "revenue_score=100", "--set", "risk_score=30")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if strings.TrimSpace(out) != "100" {
		t.Errorf("output = %q, want 100", out)
	}
}

func TestEval_VarsFile(t *testing.T) {
	path := writeFile(t, "vars.yaml", "industry_count: 3\nrevenue_score: 50\n")
	out, err := runCLI(t, "eval", "industry_count * 10 + revenue_score / 2", "-v", path)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if strings.TrimSpace(out) != "55" {
		t.Errorf("output = %q, want 55", out)
	}
}

func TestEval_Failure(t *testing.T) {
	out, err := runCLI(t, "eval", "missing * 2")
	if err == nil {
		t.Fatal("eval of an undefined variable should fail")
	}
	if !strings.HasPrefix(out, "Error\n") {
		t.Errorf("output = %q, want the Error sentinel first", out)
	}
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		in   string
		want variables.Value
	}{
		{"x=1.5", variables.Number(1.5)},
		{"flag=true", variables.Bool(true)},
		{"region=EU", variables.Text("EU")},
		{"empty=", variables.Text("")},
	}
	for _, tt := range tests {
		_, got, err := parseAssignment(tt.in)
		if err != nil {
			t.Errorf("parseAssignment(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseAssignment(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, _, err := parseAssignment("novalue"); err == nil {
		t.Error("parseAssignment should reject a missing '='")
	}
}

// --- check ---

func TestCheck_CompleteReport(t *testing.T) {
	path := writeFile(t, "report.yaml", `organizationName: Mekong Renewables
organizationType: Corporation
country: Vietnam
industry: [Energy]
strategicIntent: Market entry via joint venture
problemStatement: Grid access for offshore wind is constrained.
revenue: Over $1B
riskTolerance: Low
idealPartnerProfile: State utility with transmission rights
complianceAcknowledged: true
`)
	out, err := runCLI(t, "check", "--strict", path)
	if err != nil {
		t.Fatalf("check error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "**Gate:** PASSED") {
		t.Error("complete report should pass the gate")
	}
	// 100*0.3 + (100-30) = 100
	if !strings.Contains(out, "| 100 | system |") {
		t.Errorf("market entry should evaluate to 100, got:\n%s", out)
	}
}

func TestCheck_StrictBlocked(t *testing.T) {
	path := writeFile(t, "report.json", `{"country": "Vietnam"}`)

	if _, err := runCLI(t, "check", path); err != nil {
		t.Errorf("non-strict check should succeed: %v", err)
	}
	if _, err := runCLI(t, "check", "--strict", path); err == nil {
		t.Error("strict check should fail when the gate is blocked")
	}
}

// --- version ---

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(out, "neurosym v") {
		t.Errorf("output = %q", out)
	}
}
