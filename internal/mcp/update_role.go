package mcp

import (
	"context"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"appdna/internal/model"
)

// UpdateRoleTool handles the update_role MCP tool. Only the fields the
// caller supplies are changed; the rest keep their current values.
type UpdateRoleTool struct {
	client *Client
}

// NewUpdateRoleTool creates an UpdateRoleTool with the given bridge
// client.
func NewUpdateRoleTool(client *Client) *UpdateRoleTool {
	return &UpdateRoleTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateRoleTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("update_role",
		mcpgo.WithDescription(
			"Update an existing role in the loaded AppDNA model. The name "+
				"must match an existing role exactly. Omitted fields are left "+
				"unchanged.",
		),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("Exact name of the role to update"),
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

// Handle processes the update_role tool call.
func (t *UpdateRoleTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcpgo.NewToolResultError("'name' is required"), nil
	}

	update := RoleUpdateRequest{Name: name}
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

	role, err := t.client.UpdateRole(ctx, update)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	text, err := renderJSON(role)
	if err != nil {
		return nil, err
	}
	return mcpgo.NewToolResultText(fmt.Sprintf("Updated role %q.\n\n%s", role.Name, text)), nil
}
