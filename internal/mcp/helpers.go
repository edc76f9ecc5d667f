// Package mcp implements the stdio MCP server that fronts the AppDNA
// bridges. Each tool is a struct holding a *Client, registered on the
// server via its Definition and dispatched via its Handle method. Tools
// never touch the model directly; everything goes through the bridges'
// HTTP contracts.
package mcp

import (
	"encoding/json"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcpgo.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// hasArg reports whether the caller supplied the argument at all, so
// partial-update tools can distinguish "unset" from a zero value.
func hasArg(req mcpgo.CallToolRequest, key string) bool {
	_, ok := req.GetArguments()[key]
	return ok
}

// renderJSON pretty-prints v for a tool result body.
func renderJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return string(data), nil
}
