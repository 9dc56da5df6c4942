// Package tools implements MCP tool handlers for the rule engine.
//
// Each tool is a struct that receives its dependencies (DIP) and exposes
// Definition() for registration and Handle() with mcp-go's CallToolRequest
// signature.
//
// Design principles:
// - SRP: each file = one tool
// - DIP: tools depend on session.Store, not on the in-memory Manager
// - Domain failures (unknown ids, refused deletions) are tool results with
//   IsError set; Go errors are reserved for broken infrastructure
package tools

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/neurosym/internal/checklist"
	"github.com/HendryAvila/neurosym/internal/engine"
	"github.com/HendryAvila/neurosym/internal/session"
	"github.com/HendryAvila/neurosym/internal/variables"
)

// Deps bundles what every tool needs.
type Deps struct {
	Sessions       session.Store
	Engine         *engine.Engine
	DefaultSession string
	Logger         *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// sessionOption is the shared session_id argument.
func sessionOption() mcp.ToolOption {
	return mcp.WithString("session_id",
		mcp.Description("Analysis session to operate on. Defaults to the server's default session."),
	)
}

// sessionID returns the requested session id or the default.
func (d Deps) sessionID(req mcp.CallToolRequest) string {
	id := strings.TrimSpace(req.GetString("session_id", ""))
	if id == "" {
		return d.DefaultSession
	}
	return id
}

// objectArg returns an object-valued argument. present is false when the
// argument was omitted; an argument of the wrong type is an error.
func objectArg(req mcp.CallToolRequest, name string) (obj map[string]any, present bool, err error) {
	raw, ok := req.GetArguments()[name]
	if !ok || raw == nil {
		return nil, false, nil
	}
	obj, ok = raw.(map[string]any)
	if !ok {
		return nil, true, fmt.Errorf("'%s' must be an object, got %T", name, raw)
	}
	return obj, true, nil
}

// statusMarker returns the display marker for a checklist status.
func statusMarker(s checklist.Status) string {
	switch s {
	case checklist.StatusSatisfied:
		return "✅"
	case checklist.StatusFailed:
		return "❌"
	case checklist.StatusSkipped:
		return "⏭️"
	default:
		return "⬜"
	}
}

// renderChecklist renders items grouped by category as a markdown table.
func renderChecklist(items []checklist.Item) string {
	var b strings.Builder
	b.WriteString("| Item | Category | Status | Value | Required |\n")
	b.WriteString("|------|----------|--------|-------|----------|\n")

	groups := checklist.ByCategory(items)
	for _, cat := range checklist.Categories {
		for _, it := range groups[cat] {
			value := it.Value
			if value == "" {
				value = "—"
			}
			required := ""
			if it.Required {
				required = "yes"
			}
			fmt.Fprintf(&b, "| %s %s (`%s`) | %s | %s | %s | %s |\n",
				statusMarker(it.Status), it.Label, it.ID, it.Category, it.Status, value, required)
		}
	}
	return b.String()
}

// renderReadiness renders a checklist summary.
func renderReadiness(s checklist.Summary) string {
	var b strings.Builder
	gate := "PASSED"
	if !s.GatePassed {
		gate = "BLOCKED"
	}
	fmt.Fprintf(&b, "**Gate:** %s\n", gate)
	fmt.Fprintf(&b, "**Completion:** %d%% (%d/%d satisfied)\n",
		s.Completion, s.Counts[checklist.StatusSatisfied], s.Total)
	fmt.Fprintf(&b, "**Pending:** %d · **Skipped:** %d · **Failed:** %d\n",
		s.Counts[checklist.StatusPending], s.Counts[checklist.StatusSkipped], s.Counts[checklist.StatusFailed])

	if len(s.GateFailures) > 0 {
		b.WriteString("\nRequired items not satisfied:\n")
		for _, it := range s.GateFailures {
			fmt.Fprintf(&b, "- `%s` %s (%s)\n", it.ID, it.Label, it.Status)
		}
	}
	return b.String()
}

// renderVariables renders the variable store as a markdown table.
func renderVariables(store variables.Store) string {
	if len(store) == 0 {
		return "_Variable store is empty. Run `neuro_validate` first._\n"
	}
	var b strings.Builder
	b.WriteString("| Variable | Type | Value |\n")
	b.WriteString("|----------|------|-------|\n")
	for _, name := range store.Names() {
		v := store[name]
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", name, v.Kind(), v.String())
	}
	return b.String()
}

// missingVariables lists names the store does not define.
func missingVariables(names []string, store variables.Store) []string {
	var missing []string
	for _, n := range names {
		if _, ok := store[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}
