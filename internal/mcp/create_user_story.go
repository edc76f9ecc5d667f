package mcp

import (
	"context"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// CreateUserStoryTool handles the create_user_story MCP tool.
type CreateUserStoryTool struct {
	client *Client
}

// NewCreateUserStoryTool creates a CreateUserStoryTool with the given
// bridge client.
func NewCreateUserStoryTool(client *Client) *CreateUserStoryTool {
	return &CreateUserStoryTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateUserStoryTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("create_user_story",
		mcpgo.WithDescription(
			"Add a user story to the loaded AppDNA model. The text must "+
				"follow 'As a [Role], I want to [view all|view|add|update|delete] "+
				"[a|an|all] [Object]' and reference a role that exists in the "+
				"model. Duplicate story text is rejected.",
		),
		mcpgo.WithString("story_text",
			mcpgo.Required(),
			mcpgo.Description("The story sentence, e.g. 'As a Manager, I want to view all orders'"),
		),
	)
}

// Handle processes the create_user_story tool call.
func (t *CreateUserStoryTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	storyText := req.GetString("story_text", "")
	if storyText == "" {
		return mcpgo.NewToolResultError("'story_text' is required"), nil
	}

	story, err := t.client.CreateUserStory(ctx, storyText)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	text, err := renderJSON(story)
	if err != nil {
		return nil, err
	}
	return mcpgo.NewToolResultText(fmt.Sprintf("Created user story %q.\n\n%s", story.Name, text)), nil
}
