package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "petbattle",
		Short: "CLI tool for the pet battle API",
		Long: `petbattle is a CLI tool for interacting with the pet battle JSON API.

Battle requests are sent as the address your session belongs to. Claim an
address with "petbattle account claim" or log in to one you already claimed
with "petbattle account login". Read-only commands need no session.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			client = NewClient(cfg.ServerURL, cfg.Token)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: PETBATTLE_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: PETBATTLE_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: PETBATTLE_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newAccountCmd())
	rootCmd.AddCommand(newStateCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newMoveCmd())
	rootCmd.AddCommand(newUpdateInfoCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newNotificationsCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newDevnetCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
