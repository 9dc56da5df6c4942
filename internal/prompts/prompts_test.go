package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptText(t *testing.T, result *mcp.GetPromptResult) string {
	t.Helper()
	if len(result.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(result.Messages))
	}
	tc, ok := result.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", result.Messages[0].Content)
	}
	return tc.Text
}

func TestIntakePrompt(t *testing.T) {
	p := NewIntakePrompt()
	if got := p.Definition().Name; got != "neuro-intake" {
		t.Errorf("name = %q, want neuro-intake", got)
	}

	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"organization": "Acme", "session_id": "acme"}
	result, err := p.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := promptText(t, result)
	for _, want := range []string{"'Acme'", "neuro_validate", "session_id='acme'"} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt should contain %q", want)
		}
	}
}

func TestIntakePrompt_NoArguments(t *testing.T) {
	result, err := NewIntakePrompt().Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := promptText(t, result)
	if !strings.Contains(text, "Ask me for the organization name") {
		t.Error("prompt should ask for the organization name")
	}
	if strings.Contains(text, "session_id=") {
		t.Error("prompt should not mention a session without one")
	}
}

func TestReviewPrompt(t *testing.T) {
	p := NewReviewPrompt()
	if got := p.Definition().Name; got != "neuro-review" {
		t.Errorf("name = %q, want neuro-review", got)
	}

	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"session_id": "q3"}
	result, err := p.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := promptText(t, result)
	if !strings.Contains(text, "`neuro_status` with session_id='q3'") {
		t.Errorf("prompt should target session q3, got: %s", text)
	}
}
