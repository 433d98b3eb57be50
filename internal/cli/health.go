package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health and which battle it hosts",
		Long: `Check server health and which battle program it hosts.

With --wait, keep retrying until the server answers or the wait runs out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := waitForHealth(wait, 250*time.Millisecond)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "Retry until healthy for up to this long")

	return cmd
}

// waitForHealth polls the health route until it succeeds or wait elapses
func waitForHealth(wait, interval time.Duration) (HealthResult, error) {
	deadline := time.Now().Add(wait)
	for {
		var result HealthResult
		err := client.Get("/api/v1/health", &result)
		if err == nil {
			return result, nil
		}
		if !time.Now().Add(interval).Before(deadline) {
			if wait > 0 {
				return result, fmt.Errorf("server not healthy after %s: %w", wait, err)
			}
			return result, err
		}
		time.Sleep(interval)
	}
}
