package mcp

import (
	"context"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"appdna/internal/model"
)

// UpdateLookupValueTool handles the update_lookup_value MCP tool. Only
// supplied fields are changed.
type UpdateLookupValueTool struct {
	client *Client
}

// NewUpdateLookupValueTool creates an UpdateLookupValueTool with the
// given bridge client.
func NewUpdateLookupValueTool(client *Client) *UpdateLookupValueTool {
	return &UpdateLookupValueTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateLookupValueTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("update_lookup_value",
		mcpgo.WithDescription(
			"Update an existing item of a lookup data object in the loaded "+
				"AppDNA model. The item name must match exactly. Omitted fields "+
				"are left unchanged.",
		),
		mcpgo.WithString("lookup_object_name",
			mcpgo.Required(),
			mcpgo.Description("Name of the lookup data object holding the item"),
		),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("Exact name of the item to update"),
		),
		mcpgo.WithString("display_name",
			mcpgo.Description("New human-readable label. Omit to keep the current one."),
		),
		mcpgo.WithString("description",
			mcpgo.Description("New description. Omit to keep the current one."),
		),
		mcpgo.WithBoolean("is_active",
			mcpgo.Description("New active state. Omit to keep the current one."),
		),
	)
}

// Handle processes the update_lookup_value tool call.
func (t *UpdateLookupValueTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	objectName := req.GetString("lookup_object_name", "")
	if objectName == "" {
		return mcpgo.NewToolResultError("'lookup_object_name' is required"), nil
	}
	name := req.GetString("name", "")
	if name == "" {
		return mcpgo.NewToolResultError("'name' is required"), nil
	}

	update := LookupValueUpdateRequest{LookupObjectName: objectName, Name: name}
	if hasArg(req, "display_name") {
		v := req.GetString("display_name", "")
		update.DisplayName = &v
	}
	if hasArg(req, "description") {
		v := req.GetString("description", "")
		update.Description = &v
	}
	if hasArg(req, "is_active") {
		update.IsActive = model.NewFlag(boolArg(req, "is_active", true))
	}

	item, err := t.client.UpdateLookupValue(ctx, update)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	text, err := renderJSON(item)
	if err != nil {
		return nil, err
	}
	return mcpgo.NewToolResultText(fmt.Sprintf("Updated lookup item %q in %q.\n\n%s", item.Name, objectName, text)), nil
}
