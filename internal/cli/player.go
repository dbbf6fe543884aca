package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/whamageddon/internal/api/request"
	"github.com/mcoot/whamageddon/internal/api/response"
)

func playerPath(id string, parts ...string) string {
	p := "/api/v1/players/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player commands",
	}

	cmd.AddCommand(newPlayerJoinCmd())
	cmd.AddCommand(newPlayerGetCmd())
	cmd.AddCommand(newPlayerWhamCmd())
	cmd.AddCommand(newPlayerReviveCmd())
	cmd.AddCommand(newPlayerDeleteCmd())

	return cmd
}

func newPlayerJoinCmd() *cobra.Command {
	var req request.JoinRequest

	cmd := &cobra.Command{
		Use:   "join <slug>",
		Short: "Join a group",
		Long: `Join a group as this device's user.

A first join issues the user id, which is saved so later commands act as
the same person. Name, company, avatar and PIN default to the ones used in
your other groups; if you are already whammed elsewhere you join whammed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.JoinResponse
			if err := client.Post(cmd.Context(), groupPath(args[0], "players"), req, &result); err != nil {
				return err
			}

			if result.UserID != "" && result.UserID != cfg.UserID {
				if err := cfg.SaveUser(result.UserID); err != nil {
					return fmt.Errorf("failed to save user id: %w", err)
				}
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Your name")
	cmd.Flags().StringVar(&req.Company, "company", "", "Company or department")
	cmd.Flags().StringVar(&req.AvatarURL, "avatar-url", "", "Avatar image URL")
	cmd.Flags().StringVar(&req.PIN, "pin", "", "Four digit PIN for recovering this device")
	cmd.Flags().StringVar(&req.Password, "password", "", "Group password, if it has one")

	return cmd
}

func newPlayerGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <player-id>",
		Short: "Show a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player
			if err := client.Get(cmd.Context(), playerPath(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPlayerWhamCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "wham <player-id>",
		Short: "Report that a player heard the song",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player
			req := request.WhamRequest{Reason: reason}
			if err := client.Post(cmd.Context(), playerPath(args[0], "wham"), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Where it happened")

	return cmd
}

func newPlayerReviveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revive <player-id>",
		Short: "Bring a whammed player back (group admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player
			if err := client.Post(cmd.Context(), playerPath(args[0], "revive"), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPlayerDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <player-id>",
		Short: "Remove a player from their group (group admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(cmd.Context(), playerPath(args[0])); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Player removed")
			return nil
		},
	}
}
