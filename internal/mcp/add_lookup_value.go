package mcp

import (
	"context"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"appdna/internal/model"
)

// AddLookupValueTool handles the add_lookup_value MCP tool.
type AddLookupValueTool struct {
	client *Client
}

// NewAddLookupValueTool creates an AddLookupValueTool with the given
// bridge client.
func NewAddLookupValueTool(client *Client) *AddLookupValueTool {
	return &AddLookupValueTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *AddLookupValueTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("add_lookup_value",
		mcpgo.WithDescription(
			"Add an item to a lookup data object in the loaded AppDNA model. "+
				"Item names are unique within the object, case-insensitively.",
		),
		mcpgo.WithString("lookup_object_name",
			mcpgo.Required(),
			mcpgo.Description("Name of the lookup data object to add to"),
		),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("Pascal-case item name, e.g. 'Pending'"),
		),
		mcpgo.WithString("display_name",
			mcpgo.Description("Human-readable label. Defaults to the name."),
		),
		mcpgo.WithString("description",
			mcpgo.Description("What the item means. Optional."),
		),
		mcpgo.WithBoolean("is_active",
			mcpgo.Description("Whether the item is active (default: true)"),
		),
	)
}

// Handle processes the add_lookup_value tool call.
func (t *AddLookupValueTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	objectName := req.GetString("lookup_object_name", "")
	if objectName == "" {
		return mcpgo.NewToolResultError("'lookup_object_name' is required"), nil
	}
	name := req.GetString("name", "")
	if name == "" {
		return mcpgo.NewToolResultError("'name' is required"), nil
	}

	item, err := t.client.AddLookupValue(ctx, LookupValueRequest{
		LookupObjectName: objectName,
		Name:             name,
		DisplayName:      req.GetString("display_name", ""),
		Description:      req.GetString("description", ""),
		IsActive:         model.NewFlag(boolArg(req, "is_active", true)),
	})
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	text, err := renderJSON(item)
	if err != nil {
		return nil, err
	}
	return mcpgo.NewToolResultText(fmt.Sprintf("Added lookup item %q to %q.\n\n%s", item.Name, objectName, text)), nil
}
