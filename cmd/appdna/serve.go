package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"appdna/internal/auth"
	"appdna/internal/bridge"
	"appdna/internal/command"
	"appdna/internal/config"
	"appdna/internal/service"
	"appdna/internal/storage"
)

var (
	serveModelFile   string
	serveDataPort    int
	serveCommandPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the data and command bridges",
	Long: `Start the AppDNA bridges and serve the application model over HTTP.

The data bridge exposes read and write endpoints for data objects, roles,
lookup values, and user stories. The command bridge executes registered
commands such as appdna.saveModel. Both listen on loopback only.

The model file is loaded at startup when it exists; otherwise the service
starts empty and reports modelLoaded=false until a model is created.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot()
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig(root)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if serveModelFile != "" {
			cfg.ModelFile = serveModelFile
		}
		if cmd.Flags().Changed("data-port") {
			cfg.DataBridge.Port = serveDataPort
		}
		if cmd.Flags().Changed("command-port") {
			cfg.CommandBridge.Port = serveCommandPort
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger := newLogger(cfg, os.Stdout)

		var journal *storage.Journal
		if cfg.Journal.Enabled {
			journal, err = storage.OpenJournal(resolvePath(root, cfg.Journal.Path), logger.Named("journal"))
			if err != nil {
				return fmt.Errorf("failed to open change journal: %w", err)
			}
			defer journal.Close()
		}

		provider := storage.NewProvider(logger.Named("storage"))
		svc, err := service.New(provider, journal, cfg, logger.Named("service"))
		if err != nil {
			return fmt.Errorf("failed to create model service: %w", err)
		}

		modelPath := resolvePath(root, cfg.ModelFile)
		if _, statErr := os.Stat(modelPath); statErr == nil {
			if _, err := svc.LoadFile(modelPath); err != nil {
				return fmt.Errorf("failed to load model %s: %w", modelPath, err)
			}
			logger.Info("Model loaded", map[string]interface{}{
				"file": modelPath,
			})
		} else {
			logger.Info("No model file found, starting empty", map[string]interface{}{
				"file": modelPath,
			})
		}

		registry := command.NewRegistry(logger.Named("commands"))
		hub := command.NewRefreshHub()
		command.RegisterBuiltins(registry, svc, hub)

		policy, err := config.LoadCommandPolicy(root)
		if err != nil {
			return fmt.Errorf("failed to load command policy: %w", err)
		}

		var tokenHash string
		if cfg.CommandBridge.Auth.Enabled {
			tokenHash, err = auth.ResolveHash(
				cfg.CommandBridge.Auth.TokenHash,
				resolvePath(root, cfg.CommandBridge.Auth.TokenFile),
			)
			if err != nil {
				return fmt.Errorf("failed to resolve command bridge token: %w", err)
			}
			if tokenHash == "" {
				return fmt.Errorf("command bridge auth is enabled but no token hash is configured; run 'appdna token' first")
			}
		}

		dataBridge := bridge.NewDataBridge(svc, registry, cfg.DataBridge.Port, logger.Named("data-bridge"))
		commandBridge := bridge.NewCommandBridge(registry, policy, tokenHash, cfg.CommandBridge.Port, logger.Named("command-bridge"))

		manager := bridge.NewManager(dataBridge, cfg.DataBridge.Addr(), commandBridge, cfg.CommandBridge.Addr(), logger.Named("bridges"))
		manager.Start()
		defer manager.Dispose()

		if manager.DataBoundAddr() == "" && manager.CommandBoundAddr() == "" {
			return fmt.Errorf("no bridge could bind; ports %d and %d are both unavailable", cfg.DataBridge.Port, cfg.CommandBridge.Port)
		}

		logger.Info("AppDNA serving", map[string]interface{}{
			"dataBridge":    manager.DataBoundAddr(),
			"commandBridge": manager.CommandBoundAddr(),
			"authEnabled":   cfg.CommandBridge.Auth.Enabled,
		})

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan

		logger.Info("Shutting down", map[string]interface{}{
			"signal": sig.String(),
		})

		if svc.HasUnsavedChangesInMemory() {
			logger.Warn("Exiting with unsaved model changes", map[string]interface{}{
				"file": svc.GetCurrentFilePath(),
			})
		}

		manager.Stop()
		logger.Info("Shutdown complete", nil)
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveModelFile, "model", "", "Model file to serve (default: from config)")
	serveCmd.Flags().IntVar(&serveDataPort, "data-port", 0, "Data bridge port (default: from config)")
	serveCmd.Flags().IntVar(&serveCommandPort, "command-port", 0, "Command bridge port (default: from config)")
	rootCmd.AddCommand(serveCmd)
}
