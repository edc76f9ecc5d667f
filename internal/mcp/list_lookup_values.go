package mcp

import (
	"context"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// ListLookupValuesTool handles the list_lookup_values MCP tool.
type ListLookupValuesTool struct {
	client *Client
}

// NewListLookupValuesTool creates a ListLookupValuesTool with the given
// bridge client.
func NewListLookupValuesTool(client *Client) *ListLookupValuesTool {
	return &ListLookupValuesTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListLookupValuesTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("list_lookup_values",
		mcpgo.WithDescription(
			"List the lookup items of a lookup data object in the loaded "+
				"AppDNA model, sorted by name. The object must exist and have "+
				"isLookup set.",
		),
		mcpgo.WithString("lookup_object_name",
			mcpgo.Required(),
			mcpgo.Description("Name of the lookup data object, matched case-insensitively"),
		),
	)
}

// Handle processes the list_lookup_values tool call.
func (t *ListLookupValuesTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	objectName := req.GetString("lookup_object_name", "")
	if objectName == "" {
		return mcpgo.NewToolResultError("'lookup_object_name' is required"), nil
	}

	items, err := t.client.ListLookupValues(ctx, objectName)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	text, err := renderJSON(items)
	if err != nil {
		return nil, err
	}
	return mcpgo.NewToolResultText(text), nil
}
