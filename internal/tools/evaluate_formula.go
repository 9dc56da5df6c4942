package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/neurosym/internal/formula"
	"github.com/HendryAvila/neurosym/internal/variables"
)

// EvaluateFormulaTool handles the neuro_evaluate_formula MCP tool.
// It never changes the session: ad-hoc variables only apply to this call.
type EvaluateFormulaTool struct {
	deps Deps
}

// NewEvaluateFormulaTool creates an EvaluateFormulaTool.
func NewEvaluateFormulaTool(deps Deps) *EvaluateFormulaTool {
	return &EvaluateFormulaTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *EvaluateFormulaTool) Definition() mcp.Tool {
	return mcp.NewTool("neuro_evaluate_formula",
		mcp.WithDescription(
			"Evaluate a registered formula (by `formula_id`) or a draft `expression` "+
				"against the session's variable store. Optional `variables` are laid over "+
				"the store for this call only. Evaluation failures show as 'Error' with the reason.",
		),
		mcp.WithString("formula_id",
			mcp.Description("Registered formula id. Takes precedence over 'expression'."),
		),
		mcp.WithString("expression",
			mcp.Description("Draft expression to evaluate without registering it."),
		),
		mcp.WithObject("variables",
			mcp.Description("Test variables for this evaluation only, e.g. {\"risk_score\": 20}."),
		),
		sessionOption(),
	)
}

// Handle processes the neuro_evaluate_formula tool call.
func (t *EvaluateFormulaTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formulaID := strings.TrimSpace(req.GetString("formula_id", ""))
	expr := strings.TrimSpace(req.GetString("expression", ""))
	if formulaID == "" && expr == "" {
		return mcp.NewToolResultError("Provide either 'formula_id' or 'expression'."), nil
	}

	rawVars, _, err := objectArg(req, "variables")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	overrides, err := variables.FromMap(rawVars)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid 'variables': %v", err)), nil
	}

	id := t.deps.sessionID(req)
	s := t.deps.Sessions.Get(id)

	var f formula.Formula
	if formulaID != "" {
		var ok bool
		f, ok = formula.Find(s.State.Formulas, formulaID)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Formula %q not found. Use `neuro_status` to list formulas.", formulaID)), nil
		}
	} else {
		f = formula.Formula{
			Name:       "draft",
			Expression: expr,
			Variables:  formula.ExtractVariables(expr),
		}
	}

	store := s.State.Variables.With(overrides)
	result := t.deps.Engine.EvaluateFormula(f, store)

	t.deps.logger().Debug("formula evaluated",
		zap.String("session", id),
		zap.String("formula", f.ID),
		zap.Int("overrides", len(overrides)),
		zap.Bool("ok", result.OK()),
	)

	var b strings.Builder
	if f.ID != "" {
		fmt.Fprintf(&b, "# %s (`%s`)\n\n", f.Name, f.ID)
	} else {
		b.WriteString("# Draft Expression\n\n")
	}
	fmt.Fprintf(&b, "`%s` = **%s**\n", f.Expression, result)

	if !result.OK() {
		fmt.Fprintf(&b, "\n**Reason:** %v\n", result.Err)
		if missing := missingVariables(f.Variables, store); len(missing) > 0 {
			fmt.Fprintf(&b, "**Missing variables:** %s\n", strings.Join(missing, ", "))
		}
	}

	if len(f.Variables) > 0 {
		b.WriteString("\n| Variable | Value | Source |\n")
		b.WriteString("|----------|-------|--------|\n")
		for _, name := range f.Variables {
			v, ok := store[name]
			switch {
			case !ok:
				fmt.Fprintf(&b, "| `%s` | — | undefined |\n", name)
			case hasKey(overrides, name):
				fmt.Fprintf(&b, "| `%s` | %s | test override |\n", name, v)
			default:
				fmt.Fprintf(&b, "| `%s` | %s | store |\n", name, v)
			}
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func hasKey(store variables.Store, name string) bool {
	_, ok := store[name]
	return ok
}
