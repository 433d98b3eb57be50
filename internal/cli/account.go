package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Claim addresses and manage sessions",
	}

	cmd.AddCommand(newAccountSessionCmd("claim", "Claim an unclaimed address", "/api/v1/accounts"))
	cmd.AddCommand(newAccountSessionCmd("login", "Log in to an address you claimed", "/api/v1/sessions"))
	cmd.AddCommand(newAccountWhoamiCmd())
	cmd.AddCommand(newAccountLogoutCmd())

	return cmd
}

// newAccountSessionCmd builds claim and login, which differ only in route
func newAccountSessionCmd(use, short, path string) *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   use + " <address>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"address": args[0],
				"secret":  secret,
			}
			var result SessionResult

			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Secret proving control of the address (required)")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}

func newAccountWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the address your session acts as",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}

			var result SessionResult
			if err := client.Get("/api/v1/sessions/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAccountLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End your session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}

			if err := client.Delete("/api/v1/sessions/me"); err != nil {
				return err
			}
			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Logged out")
			return nil
		},
	}
}
