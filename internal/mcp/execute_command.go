package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// ExecuteCommandTool handles the execute_command MCP tool, the generic
// RPC surface over the command bridge.
type ExecuteCommandTool struct {
	client *Client
}

// NewExecuteCommandTool creates an ExecuteCommandTool with the given
// bridge client.
func NewExecuteCommandTool(client *Client) *ExecuteCommandTool {
	return &ExecuteCommandTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ExecuteCommandTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("execute_command",
		mcpgo.WithDescription(
			"Execute a named AppDNA command through the command bridge. "+
				"Built-in commands: appdna.refresh, appdna.saveModel (optional "+
				"file path argument), appdna.modelLoaded, "+
				"appdna.hasUnsavedChanges. The bridge may restrict which "+
				"commands are allowed.",
		),
		mcpgo.WithString("command",
			mcpgo.Required(),
			mcpgo.Description("Command name, e.g. 'appdna.saveModel'"),
		),
		mcpgo.WithString("args",
			mcpgo.Description("Optional JSON array of positional arguments, e.g. '[\"/tmp/model.json\"]'"),
		),
	)
}

// Handle processes the execute_command tool call.
func (t *ExecuteCommandTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	command := req.GetString("command", "")
	if command == "" {
		return mcpgo.NewToolResultError("'command' is required"), nil
	}

	var args []interface{}
	if raw := req.GetString("args", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return mcpgo.NewToolResultError(fmt.Sprintf("'args' must be a JSON array: %v", err)), nil
		}
	}

	result, err := t.client.ExecuteCommand(ctx, command, args)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	text := result.Message
	if len(result.Result) > 0 && string(result.Result) != "null" {
		var pretty interface{}
		if err := json.Unmarshal(result.Result, &pretty); err != nil {
			return nil, fmt.Errorf("decoding command result: %w", err)
		}
		rendered, err := renderJSON(pretty)
		if err != nil {
			return nil, err
		}
		text = fmt.Sprintf("%s\n\n%s", result.Message, rendered)
	}
	return mcpgo.NewToolResultText(text), nil
}
