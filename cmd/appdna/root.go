package main

import (
	"appdna/internal/version"

	"github.com/spf13/cobra"
)

var (
	// rootFlag is the CLI --root flag value
	rootFlag string
)

var rootCmd = &cobra.Command{
	Use:   "appdna",
	Short: "AppDNA - application model service",
	Long: `AppDNA serves a JSON application model (namespaces, data objects, lookups,
user stories, forms and reports) over two local HTTP bridges: a data bridge
for reads and constrained mutations, and a command bridge that dispatches
named commands. A companion MCP stdio server exposes the same surface to
tool-calling agents.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("AppDNA version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "",
		"Project root holding the .appdna directory (default: current directory)")
}
