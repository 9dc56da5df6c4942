// Package prompts implements MCP prompt handlers for the rule engine.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// IntakePrompt handles the neuro-intake MCP prompt.
// It guides the AI through collecting report parameters until the gate passes.
type IntakePrompt struct{}

// NewIntakePrompt creates an IntakePrompt.
func NewIntakePrompt() *IntakePrompt {
	return &IntakePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *IntakePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("neuro-intake",
		mcp.WithPromptDescription(
			"Start a strategic analysis report. "+
				"Collects the organization's details field by field and validates them "+
				"against the checklist until the readiness gate passes.",
		),
		mcp.WithArgument("organization",
			mcp.ArgumentDescription("Name of the organization the report is for"),
		),
		mcp.WithArgument("session_id",
			mcp.ArgumentDescription("Session to fill in. Default: the server's default session"),
		),
	)
}

// Handle processes the neuro-intake prompt request.
func (p *IntakePrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	org := argOr(req, "organization", "")
	sessionHint := sessionArg(req)

	opening := "I want to prepare a strategic analysis report."
	first := "Ask me for the organization name first."
	if org != "" {
		opening = fmt.Sprintf("I want to prepare a strategic analysis report for '%s'.", org)
		first = fmt.Sprintf("Start by validating organizationName='%s'.", org)
	}

	return &mcp.GetPromptResult{
		Description: "Strategic analysis intake",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"%s\n\n"+
						"Please:\n"+
						"1. Read the `neuro://catalog` resource to see which fields the checklist expects\n"+
						"2. %s\n"+
						"3. Ask me for the missing fields one category at a time and run `neuro_validate` with merge=true%s after each answer\n"+
						"4. If I don't have an answer for an optional item, offer to run `neuro_skip_item`\n"+
						"5. Stop when the readiness gate shows PASSED and summarize the system formula values",
					opening, first, sessionHint,
				)),
			},
		},
	}, nil
}

// argOr returns a prompt argument or fallback when it is absent or empty.
func argOr(req mcp.GetPromptRequest, name, fallback string) string {
	if args := req.Params.Arguments; args != nil {
		if v, ok := args[name]; ok && v != "" {
			return v
		}
	}
	return fallback
}

// sessionArg renders the session_id argument as a tool-call hint.
func sessionArg(req mcp.GetPromptRequest) string {
	if id := argOr(req, "session_id", ""); id != "" {
		return fmt.Sprintf(" and session_id='%s'", id)
	}
	return ""
}
