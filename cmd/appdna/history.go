package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"appdna/internal/config"
	"appdna/internal/logging"
	"appdna/internal/storage"
)

var (
	historyLimit  int
	historyFormat string
)

// historyResponseCLI wraps journal entries for the output formatters.
type historyResponseCLI struct {
	Entries []storage.ChangeEntry `json:"entries" yaml:"entries"`
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent model changes",
	Long: `Print recent entries from the model change journal, newest first.

The journal records every mutation applied through the bridges and the
save commands. It must be enabled in config (journal.enabled).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot()
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig(root)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if !cfg.Journal.Enabled {
			return fmt.Errorf("change journal is disabled; enable journal.enabled in %s/config.json", config.ConfigDirName)
		}

		logger := logging.NewLogger(logging.Config{
			Format: logging.HumanFormat,
			Level:  logging.WarnLevel,
			Output: os.Stderr,
		})

		journal, err := storage.OpenJournal(resolvePath(root, cfg.Journal.Path), logger)
		if err != nil {
			return fmt.Errorf("failed to open change journal: %w", err)
		}
		defer journal.Close()

		entries, err := journal.Recent(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to read change journal: %w", err)
		}

		resp := &historyResponseCLI{Entries: entries}
		output, err := FormatResponse(resp, OutputFormat(historyFormat))
		if err != nil {
			return err
		}
		fmt.Println(output)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries to show")
	historyCmd.Flags().StringVar(&historyFormat, "format", "human", "Output format (json, yaml, human)")
	rootCmd.AddCommand(historyCmd)
}
