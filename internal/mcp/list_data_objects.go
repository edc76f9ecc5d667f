package mcp

import (
	"context"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// ListDataObjectsTool handles the list_data_objects MCP tool. It
// returns the flat object projection across all namespaces.
type ListDataObjectsTool struct {
	client *Client
}

// NewListDataObjectsTool creates a ListDataObjectsTool with the given
// bridge client.
func NewListDataObjectsTool(client *Client) *ListDataObjectsTool {
	return &ListDataObjectsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListDataObjectsTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("list_data_objects",
		mcpgo.WithDescription(
			"List all data objects in the loaded AppDNA model across every "+
				"namespace. Each entry carries name, isLookup, parentObjectName "+
				"and codeDescription.",
		),
	)
}

// Handle processes the list_data_objects tool call.
func (t *ListDataObjectsTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	objects, err := t.client.ListDataObjects(ctx)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	text, err := renderJSON(objects)
	if err != nil {
		return nil, err
	}
	return mcpgo.NewToolResultText(text), nil
}
