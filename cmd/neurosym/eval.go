package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/neurosym/internal/formula"
	"github.com/HendryAvila/neurosym/internal/report"
	nsserver "github.com/HendryAvila/neurosym/internal/server"
	"github.com/HendryAvila/neurosym/internal/session"
	"github.com/HendryAvila/neurosym/internal/tools"
	"github.com/HendryAvila/neurosym/internal/variables"
)

func evalCmd() *cobra.Command {
	var (
		varsFile string
		sets     []string
	)
	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate one expression against variables",
		Example: `  neurosym eval '(revenue_score * 0.3) + (100 - risk_score)' --set revenue_score=85 --set risk_score=30
  neurosym eval 'industry_count * 10' -v vars.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			eng, err := nsserver.NewEngine(cfg)
			if err != nil {
				return err
			}

			store := variables.Store{}
			if varsFile != "" {
				raw, err := readDocument(varsFile)
				if err != nil {
					return err
				}
				if store, err = variables.FromMap(raw); err != nil {
					return fmt.Errorf("variables file %s: %w", varsFile, err)
				}
			}
			for _, kv := range sets {
				name, v, err := parseAssignment(kv)
				if err != nil {
					return err
				}
				store[name] = v
			}

			f := formula.Formula{Expression: args[0], Variables: formula.ExtractVariables(args[0])}
			result := eng.EvaluateFormula(f, store)
			fmt.Fprintln(cmd.OutOrStdout(), result)
			if !result.OK() {
				return fmt.Errorf("evaluating %q: %w", args[0], result.Err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&varsFile, "vars", "v", "", "YAML or JSON file mapping variable names to values")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "variable assignment name=value (repeatable, overrides --vars)")
	return cmd
}

func checkCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check <report.yaml>",
		Short: "Validate a report parameter file and show checklist and formulas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			eng, err := nsserver.NewEngine(cfg)
			if err != nil {
				return err
			}
			raw, err := readDocument(args[0])
			if err != nil {
				return err
			}

			state := eng.ValidateGatekeeper(report.Parameters(raw), eng.NewState())
			fmt.Fprint(cmd.OutOrStdout(), tools.RenderSession(eng, session.Session{ID: args[0], State: state}))

			if summary := eng.Readiness(state); strict && !summary.GatePassed {
				return fmt.Errorf("readiness gate blocked: %d required item(s) not satisfied", len(summary.GateFailures))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the readiness gate is blocked")
	return cmd
}

// readDocument decodes a YAML (or JSON) mapping file.
func readDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// parseAssignment parses name=value. The value is read as a YAML scalar,
// so "1.5" is a number, "true" a boolean and anything else a string.
func parseAssignment(kv string) (string, variables.Value, error) {
	name, raw, ok := strings.Cut(kv, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", variables.Value{}, fmt.Errorf("invalid --set %q: want name=value", kv)
	}
	var scalar any
	if err := yaml.Unmarshal([]byte(raw), &scalar); err != nil || scalar == nil {
		scalar = raw
	}
	v, err := variables.FromAny(scalar)
	if err != nil {
		return "", variables.Value{}, fmt.Errorf("invalid --set %q: %w", kv, err)
	}
	return name, v, nil
}
