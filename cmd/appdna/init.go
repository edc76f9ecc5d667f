package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"appdna/internal/config"
	"appdna/internal/logging"
	"appdna/internal/model"
	"appdna/internal/storage"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize AppDNA configuration",
	Long: `Creates a .appdna/ directory with default configuration and, when no
model file exists yet, a starter model with a Role lookup object.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes existing .appdna directory)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.InfoLevel,
	})

	root, err := resolveRoot()
	if err != nil {
		return err
	}

	configDir := filepath.Join(root, config.ConfigDirName)
	if _, statErr := os.Stat(configDir); statErr == nil {
		if !initForce {
			// Already initialized is success, so init is safe in setup scripts.
			fmt.Println("AppDNA already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(configDir, "config.json"))
			fmt.Println("\nRun 'appdna init --force' to reinitialize.")
			return nil
		}
		// --force resets configuration only. The model file is user data
		// and is never removed.
		if removeErr := os.RemoveAll(configDir); removeErr != nil {
			return fmt.Errorf("failed to remove existing %s directory: %w", config.ConfigDirName, removeErr)
		}
		logger.Info("Removed existing config directory", map[string]interface{}{
			"dir": configDir,
		})
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(root); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	modelPath := resolvePath(root, cfg.ModelFile)
	modelCreated := false
	if _, statErr := os.Stat(modelPath); os.IsNotExist(statErr) {
		provider := storage.NewProvider(logger.Named("storage"))
		if err := provider.SaveRootModel(modelPath, starterModel(root)); err != nil {
			return fmt.Errorf("failed to write starter model: %w", err)
		}
		modelCreated = true
	}

	fmt.Println("AppDNA initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", filepath.Join(configDir, "config.json"))
	if modelCreated {
		fmt.Printf("Starter model written to: %s\n", modelPath)
	} else {
		fmt.Printf("Existing model kept: %s\n", modelPath)
	}
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'appdna serve' to start the bridges")
	fmt.Println("  2. Run 'appdna token' if you want command bridge auth")

	return nil
}

// starterModel builds the minimal model new projects begin with: a default
// namespace holding the Role lookup object, so role tools work immediately.
func starterModel(root string) *model.RootModel {
	appName := filepath.Base(root)
	return &model.RootModel{
		Name:    appName,
		AppName: appName,
		Namespace: []*model.Namespace{{
			Name: model.DefaultNamespaceName,
			Object: []*model.DataObject{{
				Name:            model.RoleObjectName,
				CodeDescription: "Application security roles",
				IsLookup:        model.NewFlag(true),
				LookupItem: []*model.LookupItem{
					{Name: "Admin", DisplayName: "Admin", IsActive: model.NewFlag(true)},
					{Name: "User", DisplayName: "User", IsActive: model.NewFlag(true)},
				},
			}},
		}},
	}
}
