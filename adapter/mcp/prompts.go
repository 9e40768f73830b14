package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common study workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	textPrompt(srv, "study_plan",
		"Review open tasks and build a study schedule.",
		"Study Planning Session",
		`Help me plan my studying. Please:

1. Read my open tasks from the studybuddy://tasks resource
2. Point out tasks whose due date is close relative to the hours left
3. Build a schedule with the schedule.build tool
4. Summarize the first two days of the result and any tasks it could not place

If tasks were left out, suggest which ones to shorten, move or mark as
hard deadlines before rebuilding.`)

	textPrompt(srv, "focus_checkin",
		"Check on the current focus session and decide what to do next.",
		"Focus Check-in",
		`Check my focus session with the session.status tool.

- If nothing is running, start one on the next scheduled task with session.start
- If it is paused, ask whether I want to resume or stop
- If a work interval just ended, remind me to take the break

Keep the answer short.`)

	return nil
}

func textPrompt(srv *mcp.Server, name, description, title, text string) {
	srv.Prompt(name).
		Description(description).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: title,
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: text,
						},
					},
				},
			}, nil
		})
}
