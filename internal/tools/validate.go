package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/neurosym/internal/report"
	"github.com/HendryAvila/neurosym/internal/session"
)

// ValidateTool handles the neuro_validate MCP tool.
// It runs the gatekeeper over a parameter snapshot and rebuilds the
// session's variable store.
type ValidateTool struct {
	deps Deps
}

// NewValidateTool creates a ValidateTool.
func NewValidateTool(deps Deps) *ValidateTool {
	return &ValidateTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *ValidateTool) Definition() mcp.Tool {
	return mcp.NewTool("neuro_validate",
		mcp.WithDescription(
			"Validate a report parameter snapshot against the checklist. "+
				"Every item is recomputed from the snapshot; items the user skipped stay skipped "+
				"until their rule holds. The variable store is rebuilt from the same snapshot. "+
				"Returns the checklist table and the readiness gate.",
		),
		mcp.WithObject("parameters",
			mcp.Required(),
			mcp.Description("Report parameters, e.g. {\"organizationName\": \"Acme\", \"industry\": [\"Energy\"]}."),
		),
		mcp.WithBoolean("merge",
			mcp.Description("Merge into the previous snapshot instead of replacing it. A null value removes a field. Default: false."),
		),
		sessionOption(),
	)
}

// Handle processes the neuro_validate tool call.
func (t *ValidateTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, present, err := objectArg(req, "parameters")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !present {
		return mcp.NewToolResultError("'parameters' is required. Pass the report fields as an object."), nil
	}
	merge := req.GetBool("merge", false)
	id := t.deps.sessionID(req)

	s, err := t.deps.Sessions.Update(id, func(s session.Session) (session.Session, error) {
		params := report.Parameters(raw).Clone()
		if merge {
			params = s.Parameters.Merge(report.Parameters(raw))
		}
		s.Parameters = params
		s.State = t.deps.Engine.ValidateGatekeeper(params, s.State)
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating session %s: %w", id, err)
	}

	summary := t.deps.Engine.Readiness(s.State)
	t.deps.logger().Info("gatekeeper validated",
		zap.String("session", id),
		zap.Int("fields", len(s.Parameters)),
		zap.Int("completion", summary.Completion),
		zap.Bool("gate_passed", summary.GatePassed),
	)

	var b strings.Builder
	b.WriteString("# Gatekeeper Validation\n\n")
	fmt.Fprintf(&b, "**Session:** %s · **Revision:** %d\n\n", s.ID, s.Revision)
	b.WriteString("## Checklist\n\n")
	b.WriteString(renderChecklist(s.State.Checklist))
	b.WriteString("\n## Readiness\n\n")
	b.WriteString(renderReadiness(summary))
	b.WriteString("\n## Variable Store\n\n")
	b.WriteString(renderVariables(s.State.Variables))

	return mcp.NewToolResultText(b.String()), nil
}
