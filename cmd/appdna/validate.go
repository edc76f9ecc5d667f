package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"appdna/internal/config"
	"appdna/internal/logging"
	"appdna/internal/model"
	"appdna/internal/storage"
)

var validateCmd = &cobra.Command{
	Use:   "validate [FILE]",
	Short: "Validate a model file",
	Long: `Load a model file and check the structural invariants the service
depends on: a root object, named namespaces, globally unique object names,
and unique lookup item names per object.

Without FILE the configured model file is validated. Exits non-zero when
the file cannot be read or any problem is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot()
		if err != nil {
			return err
		}

		var path string
		if len(args) == 1 {
			path = resolvePath(root, args[0])
		} else {
			cfg, err := config.LoadConfig(root)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			path = resolvePath(root, cfg.ModelFile)
		}

		logger := logging.NewLogger(logging.Config{
			Format: logging.HumanFormat,
			Level:  logging.WarnLevel,
			Output: os.Stderr,
		})
		provider := storage.NewProvider(logger)

		rootModel, err := provider.LoadRootModel(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}

		if problems := storage.ValidateRootModel(rootModel); len(problems) > 0 {
			fmt.Printf("Model %s is invalid:\n", path)
			for _, p := range problems {
				fmt.Printf("  - %s\n", p)
			}
			return fmt.Errorf("model has %d problem(s)", len(problems))
		}

		fmt.Printf("Model %s is valid.\n", path)
		fmt.Printf("  Namespaces:   %d\n", len(rootModel.Namespace))
		fmt.Printf("  Data objects: %d\n", len(model.Objects(rootModel)))
		fmt.Printf("  User stories: %d\n", len(model.UserStories(rootModel)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
