package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/neurosym/internal/session"
)

// ResetSessionTool handles the neuro_reset_session MCP tool.
// It discards the session's checklist, formulas, variables and parameters;
// the next call on the same id starts from the catalogue again.
type ResetSessionTool struct {
	deps Deps
}

// NewResetSessionTool creates a ResetSessionTool.
func NewResetSessionTool(deps Deps) *ResetSessionTool {
	return &ResetSessionTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *ResetSessionTool) Definition() mcp.Tool {
	return mcp.NewTool("neuro_reset_session",
		mcp.WithDescription(
			"Discard an analysis session: checklist statuses, user formulas, injected variables "+
				"and the last report parameters. The next call on the same session starts fresh.",
		),
		sessionOption(),
	)
}

// Handle processes the neuro_reset_session tool call.
func (t *ResetSessionTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := t.deps.sessionID(req)

	err := t.deps.Sessions.Reset(id)
	if errors.Is(err, session.ErrSessionNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Session %q has no state to reset. Active sessions: %s.", id, sessionList(t.deps.Sessions.List()),
		)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("resetting session %s: %w", id, err)
	}

	t.deps.logger().Info("session reset by tool", zap.String("session", id))
	return mcp.NewToolResultText(fmt.Sprintf(
		"Session **%s** was reset. The next `neuro_validate` starts from a pending checklist.", id,
	)), nil
}

func sessionList(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	return "`" + strings.Join(ids, "`, `") + "`"
}
