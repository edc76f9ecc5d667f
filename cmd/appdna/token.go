package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"appdna/internal/auth"
	"appdna/internal/config"
)

var tokenSave bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate a command bridge bearer token",
	Long: `Generate a bearer token for the command bridge and print its bcrypt
hash. Only the hash is stored; the token itself is shown once and cannot
be recovered.

With --save the hash is written to config and auth is enabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := auth.GenerateToken()
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}
		hash, err := auth.HashToken(token)
		if err != nil {
			return fmt.Errorf("failed to hash token: %w", err)
		}

		fmt.Println("Generated command bridge token (shown once, store it now):")
		fmt.Printf("  %s\n\n", token)
		fmt.Println("Bcrypt hash:")
		fmt.Printf("  %s\n\n", hash)

		if tokenSave {
			root, err := resolveRoot()
			if err != nil {
				return err
			}
			cfg, err := config.LoadConfig(root)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.CommandBridge.Auth.Enabled = true
			cfg.CommandBridge.Auth.TokenHash = hash
			if err := cfg.Save(root); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Println("Auth enabled and hash saved to config.")
			fmt.Println("Restart 'appdna serve' for the change to take effect.")
			return nil
		}

		fmt.Println("To enable auth, set in .appdna/config.json:")
		fmt.Println(`  "commandBridge": { "auth": { "enabled": true, "tokenHash": "<hash above>" } }`)
		fmt.Printf("Clients send: Authorization: Bearer %s\n", auth.MaskToken(token))
		return nil
	},
}

func init() {
	tokenCmd.Flags().BoolVar(&tokenSave, "save", false, "Write the hash to config and enable command bridge auth")
	rootCmd.AddCommand(tokenCmd)
}
