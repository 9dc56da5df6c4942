package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/neurosym/internal/expression"
	"github.com/HendryAvila/neurosym/internal/session"
	"github.com/HendryAvila/neurosym/internal/variables"
)

// SetVariablesTool handles the neuro_set_variables MCP tool.
// Injected variables persist in the session store and survive later
// validations; derived names are refused.
type SetVariablesTool struct {
	deps Deps
}

// NewSetVariablesTool creates a SetVariablesTool.
func NewSetVariablesTool(deps Deps) *SetVariablesTool {
	return &SetVariablesTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *SetVariablesTool) Definition() mcp.Tool {
	return mcp.NewTool("neuro_set_variables",
		mcp.WithDescription(
			"Add test variables to the session's variable store. They survive later validations. "+
				"Variables derived from report parameters (e.g. revenue_score) cannot be set here: "+
				"change the report parameters instead.",
		),
		mcp.WithObject("variables",
			mcp.Required(),
			mcp.Description("Name to scalar value, e.g. {\"growth_rate\": 1.2, \"region\": \"EU\"}."),
		),
		sessionOption(),
	)
}

// Handle processes the neuro_set_variables tool call.
func (t *SetVariablesTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, present, err := objectArg(req, "variables")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !present || len(raw) == 0 {
		return mcp.NewToolResultError("'variables' is required and must not be empty."), nil
	}
	vars, err := variables.FromMap(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid 'variables': %v", err)), nil
	}
	for name := range vars {
		if !expression.IsIdentifier(name) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"Invalid variable name %q: use letters, digits and underscores, not starting with a digit, and not a reserved word.", name)), nil
		}
	}

	id := t.deps.sessionID(req)
	var rejected error
	s, err := t.deps.Sessions.Update(id, func(s session.Session) (session.Session, error) {
		state, err := t.deps.Engine.InjectVariables(vars, s.State)
		if err != nil {
			rejected = err
			return s, err
		}
		s.State = state
		return s, nil
	})
	if rejected != nil {
		return mcp.NewToolResultError(rejected.Error()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("updating session %s: %w", id, err)
	}

	t.deps.logger().Info("test variables injected",
		zap.String("session", id),
		zap.Strings("names", vars.Names()),
	)

	var b strings.Builder
	fmt.Fprintf(&b, "Set %d variable(s): %s\n\n", len(vars), strings.Join(vars.Names(), ", "))
	b.WriteString("## Variable Store\n\n")
	b.WriteString(renderVariables(s.State.Variables))
	return mcp.NewToolResultText(b.String()), nil
}
