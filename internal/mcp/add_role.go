package mcp

import (
	"context"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"appdna/internal/model"
)

// AddRoleTool handles the add_role MCP tool.
type AddRoleTool struct {
	client *Client
}

// NewAddRoleTool creates an AddRoleTool with the given bridge client.
func NewAddRoleTool(client *Client) *AddRoleTool {
	return &AddRoleTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *AddRoleTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("add_role",
		mcpgo.WithDescription(
			"Add a role to the loaded AppDNA model. The role becomes a lookup "+
				"item on the 'Role' data object, which must already exist. Role "+
				"names are unique case-insensitively.",
		),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("Role name, e.g. 'Manager'"),
		),
		mcpgo.WithString("display_name",
			mcpgo.Description("Human-readable label. Defaults to the name."),
		),
		mcpgo.WithString("description",
			mcpgo.Description("What the role is for. Optional."),
		),
		mcpgo.WithBoolean("is_active",
			mcpgo.Description("Whether the role is active (default: true)"),
		),
	)
}

// Handle processes the add_role tool call.
func (t *AddRoleTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcpgo.NewToolResultError("'name' is required"), nil
	}

	role, err := t.client.AddRole(ctx, RoleRequest{
		Name:        name,
		DisplayName: req.GetString("display_name", ""),
		Description: req.GetString("description", ""),
		IsActive:    model.NewFlag(boolArg(req, "is_active", true)),
	})
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	text, err := renderJSON(role)
	if err != nil {
		return nil, err
	}
	return mcpgo.NewToolResultText(fmt.Sprintf("Added role %q.\n\n%s", role.Name, text)), nil
}
