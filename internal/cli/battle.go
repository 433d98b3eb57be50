package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func requireSession() error {
	if cfg.Token == "" {
		return fmt.Errorf("not logged in: use 'petbattle account claim' or 'petbattle account login'")
	}
	return nil
}

func newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the battle state",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Battle
			if err := client.Get("/api/v1/battle", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <entity>",
		Short: "Register an entity for the battle",
		Long: `Register an entity for the battle. The entity's owner is looked up,
so the entity plays for its owner whoever sends the request.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}

			req := map[string]string{"entity_id": args[0]}
			return sendBattle("/api/v1/battle/register", req)
		},
	}
}

func newMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <LEFT|RIGHT> <ATTACK|DEFEND>",
		Short: "Make a move on your turn",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}

			req := map[string]string{
				"side":   strings.ToUpper(args[0]),
				"action": strings.ToUpper(args[1]),
			}
			return sendBattle("/api/v1/battle/move", req)
		},
	}
}

func newUpdateInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update-info",
		Short: "Request an attribute refresh (only the program may do this)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			return sendBattle("/api/v1/battle/update-info", nil)
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reopen registration after a finished game",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			return sendBattle("/api/v1/battle/reset", nil)
		},
	}
}

func sendBattle(path string, body any) error {
	var result Event
	if err := client.Post(path, body, &result); err != nil {
		return err
	}

	out := NewOutput(cfg.Output)
	out.Print(result)
	return nil
}
