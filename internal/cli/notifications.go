package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newNotificationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notifications [address]",
		Short: "List notifications sent to an actor (default: yourself)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var address string
			switch {
			case len(args) == 1:
				address = args[0]
			case cfg.Token != "":
				var me SessionResult
				if err := client.Get("/api/v1/sessions/me", &me); err != nil {
					return err
				}
				address = me.Actor
			default:
				return fmt.Errorf("address required when not logged in")
			}

			var result NotificationList
			if err := client.Get("/api/v1/actors/"+url.PathEscape(address)+"/notifications", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
