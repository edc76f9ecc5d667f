package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// ModelStatusTool handles the get_model_status MCP tool. It probes both
// bridges and reports reachability plus whether a model is loaded, so
// an unreachable bridge is a finding rather than a tool failure.
type ModelStatusTool struct {
	client *Client
}

// NewModelStatusTool creates a ModelStatusTool with the given bridge
// client.
func NewModelStatusTool(client *Client) *ModelStatusTool {
	return &ModelStatusTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ModelStatusTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("get_model_status",
		mcpgo.WithDescription(
			"Check both AppDNA bridges. Reports whether the data and command "+
				"bridges are reachable and whether a model file is currently "+
				"loaded. Use this first when another tool reports a connection "+
				"error.",
		),
	)
}

// Handle processes the get_model_status tool call.
func (t *ModelStatusTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	var b strings.Builder
	b.WriteString("# AppDNA Status\n\n")

	if health, err := t.client.DataHealth(ctx); err != nil {
		fmt.Fprintf(&b, "**Data bridge:** unreachable (%v)\n", err)
	} else {
		fmt.Fprintf(&b, "**Data bridge:** %s (port %d)\n", health.Status, health.Port)
		fmt.Fprintf(&b, "**Model loaded:** %t\n", health.ModelLoaded)
	}

	if health, err := t.client.CommandHealth(ctx); err != nil {
		fmt.Fprintf(&b, "**Command bridge:** unreachable (%v)\n", err)
	} else {
		fmt.Fprintf(&b, "**Command bridge:** %s (port %d)\n", health.Status, health.Port)
	}

	return mcpgo.NewToolResultText(b.String()), nil
}
