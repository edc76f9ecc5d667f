package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"appdna/internal/config"
	"appdna/internal/mcp"
)

// tokenEnvVar lets MCP hosts pass the bridge token without putting it on
// the command line, where it would show up in process listings.
const tokenEnvVar = "APPDNA_BRIDGE_TOKEN"

var (
	mcpDataURL    string
	mcpCommandURL string
	mcpToken      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP tool surface over stdio",
	Long: `Serve AppDNA tools to an MCP host over stdin/stdout.

The MCP server is a client of the bridges: 'appdna serve' must be running
for the tools to work. get_model_status reports bridge reachability, so
hosts can surface a useful message when the bridges are down.

Bridge URLs default to the configured loopback addresses. When command
bridge auth is enabled, pass the token via --token or ` + tokenEnvVar + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot()
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig(root)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// stdout carries the MCP protocol; everything else goes to stderr.
		logger := newLogger(cfg, os.Stderr)

		dataURL := mcpDataURL
		if dataURL == "" {
			dataURL = "http://" + cfg.DataBridge.Addr()
		}
		commandURL := mcpCommandURL
		if commandURL == "" {
			commandURL = "http://" + cfg.CommandBridge.Addr()
		}
		token := mcpToken
		if token == "" {
			token = os.Getenv(tokenEnvVar)
		}

		client := mcp.NewClient(mcp.Config{
			DataBridgeURL:    dataURL,
			CommandBridgeURL: commandURL,
			Token:            token,
		})

		logger.Info("Starting MCP server", map[string]interface{}{
			"dataBridge":    dataURL,
			"commandBridge": commandURL,
			"authToken":     token != "",
		})

		if err := mcp.ServeStdio(mcp.New(client)); err != nil {
			return fmt.Errorf("MCP server stopped: %w", err)
		}
		return nil
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpDataURL, "data-url", "", "Data bridge base URL (default: from config)")
	mcpCmd.Flags().StringVar(&mcpCommandURL, "command-url", "", "Command bridge base URL (default: from config)")
	mcpCmd.Flags().StringVar(&mcpToken, "token", "", "Bearer token for the command bridge (default: $"+tokenEnvVar+")")
	rootCmd.AddCommand(mcpCmd)
}
