package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/neurosym/internal/checklist"
	"github.com/HendryAvila/neurosym/internal/session"
)

// SkipItemTool handles the neuro_skip_item MCP tool.
// A skip is a manual override; the next validation still promotes the item
// to satisfied once its rule holds.
type SkipItemTool struct {
	deps Deps
}

// NewSkipItemTool creates a SkipItemTool.
func NewSkipItemTool(deps Deps) *SkipItemTool {
	return &SkipItemTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *SkipItemTool) Definition() mcp.Tool {
	return mcp.NewTool("neuro_skip_item",
		mcp.WithDescription(
			"Mark a checklist item as skipped, or clear the skip. "+
				"A skipped item stays skipped across validations until its rule is satisfied.",
		),
		mcp.WithString("item_id",
			mcp.Required(),
			mcp.Description("Checklist item id, e.g. 'partner_profile'."),
		),
		mcp.WithBoolean("skipped",
			mcp.Description("true to skip, false to clear the skip. Default: true."),
		),
		sessionOption(),
	)
}

// Handle processes the neuro_skip_item tool call.
func (t *SkipItemTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID := strings.TrimSpace(req.GetString("item_id", ""))
	if itemID == "" {
		return mcp.NewToolResultError("'item_id' is required. Use `neuro_status` to list checklist items."), nil
	}
	skipped := req.GetBool("skipped", true)
	id := t.deps.sessionID(req)

	var before checklist.Status
	s, err := t.deps.Sessions.Update(id, func(s session.Session) (session.Session, error) {
		if it, ok := checklist.Find(s.State.Checklist, itemID); ok {
			before = it.Status
		}
		state, err := t.deps.Engine.SetSkipped(itemID, skipped, s.State)
		if err != nil {
			return s, err
		}
		s.State = state
		return s, nil
	})
	if errors.Is(err, checklist.ErrItemNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("Checklist item %q not found.", itemID)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("updating session %s: %w", id, err)
	}

	item, _ := checklist.Find(s.State.Checklist, itemID)
	t.deps.logger().Info("checklist item override",
		zap.String("session", id),
		zap.String("item", itemID),
		zap.Bool("skipped", skipped),
		zap.String("status", string(item.Status)),
	)

	var b strings.Builder
	fmt.Fprintf(&b, "%s **%s** (`%s`) is now **%s**.\n\n", statusMarker(item.Status), item.Label, item.ID, item.Status)
	if skipped && before == checklist.StatusSatisfied {
		b.WriteString("The item's rule already holds: the next `neuro_validate` will mark it satisfied again.\n\n")
	}
	b.WriteString("## Readiness\n\n")
	b.WriteString(renderReadiness(t.deps.Engine.Readiness(s.State)))

	return mcp.NewToolResultText(b.String()), nil
}
