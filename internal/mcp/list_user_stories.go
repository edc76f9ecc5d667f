package mcp

import (
	"context"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// ListUserStoriesTool handles the list_user_stories MCP tool.
type ListUserStoriesTool struct {
	client *Client
}

// NewListUserStoriesTool creates a ListUserStoriesTool with the given
// bridge client.
func NewListUserStoriesTool(client *Client) *ListUserStoriesTool {
	return &ListUserStoriesTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListUserStoriesTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("list_user_stories",
		mcpgo.WithDescription(
			"List all user stories in the loaded AppDNA model across every "+
				"namespace. Each story carries its generated name, optional "+
				"story number and the story text.",
		),
	)
}

// Handle processes the list_user_stories tool call.
func (t *ListUserStoriesTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	stories, err := t.client.ListUserStories(ctx)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	text, err := renderJSON(stories)
	if err != nil {
		return nil, err
	}
	return mcpgo.NewToolResultText(text), nil
}
