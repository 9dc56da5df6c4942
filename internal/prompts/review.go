package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReviewPrompt handles the neuro-review MCP prompt.
// It instructs the AI to read the session and explain what blocks the report.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("neuro-review",
		mcp.WithPromptDescription(
			"Review an analysis session: checklist gaps, formula values and anything "+
				"that evaluates to Error, with concrete next steps.",
		),
		mcp.WithArgument("session_id",
			mcp.ArgumentDescription("Session to review. Default: the server's default session"),
		),
	)
}

// Handle processes the neuro-review prompt request.
func (p *ReviewPrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	call := "`neuro_status`"
	if id := argOr(req, "session_id", ""); id != "" {
		call = fmt.Sprintf("`neuro_status` with session_id='%s'", id)
	}

	return &mcp.GetPromptResult{
		Description: "Analysis session review",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run " + call + " to load my analysis session.\n\n" +
						"Then:\n" +
						"1. Tell me whether the readiness gate passes, and list every required item still blocking it\n" +
						"2. Point out skipped items I may want to revisit\n" +
						"3. For each formula showing 'Error', use `neuro_evaluate_formula` to find the reason and tell me which variable or report field is missing\n" +
						"4. Interpret the system formula values in plain language\n" +
						"5. Suggest the next report fields I should fill in",
				),
			},
		},
	}, nil
}
