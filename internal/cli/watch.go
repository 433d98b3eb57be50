package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print battle state changes as they happen",
		Long: `Poll the battle and print a line whenever its state, turn or
energy changes.

Press Ctrl+C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watchBattle(ctx, interval, cfg.Output == "json")
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Polling interval")

	return cmd
}

// WatchEvent is one observed change
type WatchEvent struct {
	Time   time.Time `json:"time"`
	Battle Battle    `json:"battle"`
}

func watchBattle(ctx context.Context, interval time.Duration, jsonOutput bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if !jsonOutput {
		fmt.Printf("Watching %s\n", cfg.ServerURL)
	}

	var last string
	for {
		var b Battle
		if err := client.Get("/api/v1/battle", &b); err != nil {
			return err
		}

		if key := summarize(b); key != last {
			last = key
			printChange(b, jsonOutput)
		}

		select {
		case <-ctx.Done():
			if !jsonOutput {
				fmt.Println("\nStopped")
			}
			return nil
		case <-ticker.C:
		}
	}
}

// summarize reduces a battle to the fields worth reporting
func summarize(b Battle) string {
	s := fmt.Sprintf("%s|%d|%d|%s", b.State, b.CurrentTurn, b.Steps, b.Winner)
	for _, p := range b.Players {
		s += fmt.Sprintf("|%s:%d:%s", p.EntityID, p.Energy, p.Facing)
	}
	return s
}

func printChange(b Battle, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		data, _ := json.Marshal(WatchEvent{Time: now, Battle: b})
		fmt.Println(string(data))
		return
	}

	line := fmt.Sprintf("[%s] %s", now.Format("2006-01-02 15:04:05"), b.State)
	for i, p := range b.Players {
		marker := ""
		if b.State == "moves" && int(b.CurrentTurn) == i {
			marker = "*"
		}
		line += fmt.Sprintf(" %s%s=%d/%s", marker, p.EntityID, p.Energy, p.Facing)
	}
	if b.State == "game_is_over" {
		line += " winner=" + b.Winner
	}
	fmt.Fprintln(os.Stdout, line)
}
