package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/neurosym/internal/formula"
	"github.com/HendryAvila/neurosym/internal/session"
)

// CreateFormulaTool handles the neuro_create_formula MCP tool.
type CreateFormulaTool struct {
	deps Deps
}

// NewCreateFormulaTool creates a CreateFormulaTool.
func NewCreateFormulaTool(deps Deps) *CreateFormulaTool {
	return &CreateFormulaTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateFormulaTool) Definition() mcp.Tool {
	return mcp.NewTool("neuro_create_formula",
		mcp.WithDescription(
			"Register a user formula: an arithmetic expression over variable store names "+
				"(numbers, identifiers, + - * / ^ and parentheses). "+
				"Formulas are immutable; delete and recreate to change one. "+
				"Returns the new id, the variables it references and a preview value.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Display name, e.g. 'Weighted Capacity'."),
		),
		mcp.WithString("expression",
			mcp.Required(),
			mcp.Description("Expression text, e.g. 'revenue_score * 0.5 + industry_count'."),
		),
		mcp.WithString("description",
			mcp.Description("Optional note on what the formula measures."),
		),
		sessionOption(),
	)
}

// Handle processes the neuro_create_formula tool call.
func (t *CreateFormulaTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draft := formula.Draft{
		Name:        req.GetString("name", ""),
		Expression:  req.GetString("expression", ""),
		Description: req.GetString("description", ""),
	}
	id := t.deps.sessionID(req)

	var created formula.Formula
	s, err := t.deps.Sessions.Update(id, func(s session.Session) (session.Session, error) {
		state, f, err := t.deps.Engine.AddFormula(draft, s.State)
		if err != nil {
			return s, err
		}
		created = f
		s.State = state
		return s, nil
	})
	if errors.Is(err, formula.ErrInvalidFormula) {
		return mcp.NewToolResultError(
			"Both 'name' and 'expression' are required and must not be blank. " + err.Error()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("updating session %s: %w", id, err)
	}

	preview := t.deps.Engine.EvaluateFormula(created, s.State.Variables)
	t.deps.logger().Info("formula created",
		zap.String("session", id),
		zap.String("formula", created.ID),
		zap.Strings("variables", created.Variables),
		zap.Bool("evaluates", preview.OK()),
	)

	var b strings.Builder
	fmt.Fprintf(&b, "# Formula Created: %s\n\n", created.Name)
	fmt.Fprintf(&b, "- **ID:** `%s`\n", created.ID)
	fmt.Fprintf(&b, "- **Expression:** `%s`\n", created.Expression)
	if len(created.Variables) > 0 {
		fmt.Fprintf(&b, "- **Variables:** %s\n", strings.Join(created.Variables, ", "))
	} else {
		b.WriteString("- **Variables:** none\n")
	}
	if created.Description != "" {
		fmt.Fprintf(&b, "- **Description:** %s\n", created.Description)
	}
	fmt.Fprintf(&b, "- **Current value:** %s\n", preview)

	if !preview.OK() {
		fmt.Fprintf(&b, "\n⚠️ The formula does not evaluate yet: %v\n", preview.Err)
		if missing := missingVariables(created.Variables, s.State.Variables); len(missing) > 0 {
			fmt.Fprintf(&b, "Missing variables: %s\n", strings.Join(missing, ", "))
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
