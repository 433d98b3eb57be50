package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newDevnetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devnet",
		Short: "Dev network commands (server must run with PETBATTLE_DEVNET=true)",
	}

	cmd.AddCommand(newDevnetEntityCmd())
	cmd.AddCommand(newDevnetOwnerCmd())
	cmd.AddCommand(newDevnetAttributesCmd())

	return cmd
}

func newDevnetEntityCmd() *cobra.Command {
	var owner string
	var attributes []uint

	cmd := &cobra.Command{
		Use:   "entity <address>",
		Short: "Create or replace an entity with its owner and attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"owner":      owner,
				"attributes": attributes,
			}
			if err := client.Put("/devnet/entities/"+url.PathEscape(args[0]), req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Entity " + args[0] + " owned by " + owner)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner address (required)")
	cmd.Flags().UintSliceVar(&attributes, "attr", nil, "Attribute id (repeatable)")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func newDevnetOwnerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "owner <entity>",
		Short: "Ask an entity for its owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return askDevnet(args[0], map[string]string{"kind": "owner"})
		},
	}
}

func newDevnetAttributesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attributes <store> <entity>",
		Short: "Ask a store for an entity's attributes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return askDevnet(args[0], map[string]string{"kind": "get_attributes", "entity_id": args[1]})
		},
	}
}

func askDevnet(address string, req map[string]string) error {
	var result CollaboratorReply
	if err := client.Post("/devnet/actors/"+url.PathEscape(address)+"/handle", req, &result); err != nil {
		return err
	}

	out := NewOutput(cfg.Output)
	out.Print(result)
	return nil
}
