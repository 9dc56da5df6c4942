package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/neurosym/internal/engine"
	"github.com/HendryAvila/neurosym/internal/session"
)

// StatusTool handles the neuro_status MCP tool.
// Read-only: it renders the session as it stands.
type StatusTool struct {
	deps Deps
}

// NewStatusTool creates a StatusTool.
func NewStatusTool(deps Deps) *StatusTool {
	return &StatusTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("neuro_status",
		mcp.WithDescription(
			"Show a session: the checklist with readiness, every formula with its current value, "+
				"and the variable store.",
		),
		sessionOption(),
	)
}

// Handle processes the neuro_status tool call.
func (t *StatusTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := t.deps.Sessions.Get(t.deps.sessionID(req))
	return mcp.NewToolResultText(RenderSession(t.deps.Engine, s)), nil
}

// RenderSession renders the full session report. Shared with the
// neuro-review prompt.
func RenderSession(eng *engine.Engine, s session.Session) string {
	var b strings.Builder
	b.WriteString("# Neuro-Symbolic Analysis\n\n")
	fmt.Fprintf(&b, "**Session:** %s · **Revision:** %d", s.ID, s.Revision)
	if s.UpdatedAt != "" {
		fmt.Fprintf(&b, " · **Updated:** %s", s.UpdatedAt)
	}
	if fields := s.Parameters.Fields(); len(fields) > 0 {
		fmt.Fprintf(&b, "\n\n**Report fields:** %s", strings.Join(fields, ", "))
	}
	b.WriteString("\n\n## Readiness\n\n")
	b.WriteString(renderReadiness(eng.Readiness(s.State)))
	b.WriteString("\n## Checklist\n\n")
	b.WriteString(renderChecklist(s.State.Checklist))
	b.WriteString("\n## Formulas\n\n")
	b.WriteString(renderFormulas(eng, s.State))
	b.WriteString("\n## Variable Store\n\n")
	b.WriteString(renderVariables(s.State.Variables))
	return b.String()
}

// renderFormulas renders every formula with its value against the state's store.
func renderFormulas(eng *engine.Engine, state engine.State) string {
	if len(state.Formulas) == 0 {
		return "_No formulas registered._\n"
	}
	var b strings.Builder
	b.WriteString("| Formula | ID | Expression | Value | Kind |\n")
	b.WriteString("|---------|----|------------|-------|------|\n")
	for _, f := range state.Formulas {
		kind := "user"
		if f.IsSystem {
			kind = "system"
		}
		result := eng.EvaluateFormula(f, state.Variables)
		fmt.Fprintf(&b, "| %s | `%s` | `%s` | %s | %s |\n", f.Name, f.ID, f.Expression, result, kind)
	}
	return b.String()
}
