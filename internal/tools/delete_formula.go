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

// DeleteFormulaTool handles the neuro_delete_formula MCP tool.
type DeleteFormulaTool struct {
	deps Deps
}

// NewDeleteFormulaTool creates a DeleteFormulaTool.
func NewDeleteFormulaTool(deps Deps) *DeleteFormulaTool {
	return &DeleteFormulaTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteFormulaTool) Definition() mcp.Tool {
	return mcp.NewTool("neuro_delete_formula",
		mcp.WithDescription("Delete a user formula. System formulas cannot be deleted."),
		mcp.WithString("formula_id",
			mcp.Required(),
			mcp.Description("Id of the formula to delete, e.g. 'usr_…'."),
		),
		sessionOption(),
	)
}

// Handle processes the neuro_delete_formula tool call.
func (t *DeleteFormulaTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formulaID := strings.TrimSpace(req.GetString("formula_id", ""))
	if formulaID == "" {
		return mcp.NewToolResultError("'formula_id' is required."), nil
	}
	id := t.deps.sessionID(req)

	var removed formula.Formula
	s, err := t.deps.Sessions.Update(id, func(s session.Session) (session.Session, error) {
		removed, _ = formula.Find(s.State.Formulas, formulaID)
		state, err := t.deps.Engine.DeleteFormula(formulaID, s.State)
		if err != nil {
			return s, err
		}
		s.State = state
		return s, nil
	})
	switch {
	case errors.Is(err, formula.ErrSystemFormula):
		return mcp.NewToolResultError(fmt.Sprintf("Formula %q is a system formula and cannot be deleted.", formulaID)), nil
	case errors.Is(err, formula.ErrFormulaNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("Formula %q not found.", formulaID)), nil
	case err != nil:
		return nil, fmt.Errorf("updating session %s: %w", id, err)
	}

	t.deps.logger().Info("formula deleted",
		zap.String("session", id),
		zap.String("formula", formulaID),
	)

	return mcp.NewToolResultText(fmt.Sprintf(
		"Deleted formula **%s** (`%s`). %d formulas remain.",
		removed.Name, removed.ID, len(s.State.Formulas),
	)), nil
}
