package mcp

import (
	"context"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// ListRolesTool handles the list_roles MCP tool. Roles are the lookup
// item names of the data object named "Role".
type ListRolesTool struct {
	client *Client
}

// NewListRolesTool creates a ListRolesTool with the given bridge
// client.
func NewListRolesTool(client *Client) *ListRolesTool {
	return &ListRolesTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListRolesTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("list_roles",
		mcpgo.WithDescription(
			"List the role names defined in the loaded AppDNA model, sorted "+
				"alphabetically. Roles are the lookup items of the 'Role' data "+
				"object and are the only role names user stories may reference.",
		),
	)
}

// Handle processes the list_roles tool call.
func (t *ListRolesTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	roles, err := t.client.ListRoles(ctx)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	text, err := renderJSON(roles)
	if err != nil {
		return nil, err
	}
	return mcpgo.NewToolResultText(text), nil
}
