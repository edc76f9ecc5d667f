package mcp

import (
	"context"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// CreateDataObjectTool handles the create_data_object MCP tool.
type CreateDataObjectTool struct {
	client *Client
}

// NewCreateDataObjectTool creates a CreateDataObjectTool with the given
// bridge client.
func NewCreateDataObjectTool(client *Client) *CreateDataObjectTool {
	return &CreateDataObjectTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateDataObjectTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("create_data_object",
		mcpgo.WithDescription(
			"Add a data object to the loaded AppDNA model. Names must be "+
				"unique across all namespaces. Setting parent_object_name links "+
				"the object to its parent and auto-generates a <Parent>ID "+
				"foreign-key property; the object is placed in the parent's "+
				"namespace. The change stays in memory until the model is saved.",
		),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("Pascal-case object name, unique across all namespaces"),
		),
		mcpgo.WithString("parent_object_name",
			mcpgo.Description("Existing data object to link as parent. Optional."),
		),
		mcpgo.WithString("code_description",
			mcpgo.Description("Short description of what the object represents. Optional."),
		),
		mcpgo.WithBoolean("is_lookup",
			mcpgo.Description("If true, creates a lookup object seeded with an 'Unknown' item (default: false)"),
		),
	)
}

// Handle processes the create_data_object tool call.
func (t *CreateDataObjectTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcpgo.NewToolResultError("'name' is required"), nil
	}

	obj, err := t.client.CreateDataObject(ctx, CreateDataObjectRequest{
		Name:             name,
		ParentObjectName: req.GetString("parent_object_name", ""),
		CodeDescription:  req.GetString("code_description", ""),
		IsLookup:         boolArg(req, "is_lookup", false),
	})
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	text, err := renderJSON(obj)
	if err != nil {
		return nil, err
	}
	return mcpgo.NewToolResultText(fmt.Sprintf("Created data object %q.\n\n%s", obj.Name, text)), nil
}
