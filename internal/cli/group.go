package cli

import (
	"errors"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/whamageddon/internal/api/request"
	"github.com/mcoot/whamageddon/internal/api/response"
)

func groupPath(slug string, parts ...string) string {
	p := "/api/v1/groups/" + url.PathEscape(slug)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func newGroupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Group commands",
	}

	cmd.AddCommand(newGroupCreateCmd())
	cmd.AddCommand(newGroupGetCmd())
	cmd.AddCommand(newGroupPlayersCmd())
	cmd.AddCommand(newGroupStatsCmd())
	cmd.AddCommand(newGroupPasswordCmd())

	return cmd
}

func newGroupCreateCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a group; you become its admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The creator is remembered by user id, so make sure there is one
			userID, err := cfg.EnsureUser()
			if err != nil {
				return err
			}
			client.SetUser(userID)

			req := request.CreateGroupRequest{Name: args[0], Password: password}
			var result response.Group
			if err := client.Post(cmd.Context(), "/api/v1/groups", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password required to join")

	return cmd
}

func newGroupGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <slug>",
		Short: "Show a group's leaderboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Leaderboard
			if err := client.Get(cmd.Context(), groupPath(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGroupPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players <slug>",
		Short: "List a group's players in leaderboard order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Player
			if err := client.Get(cmd.Context(), groupPath(args[0], "players"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGroupStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <slug>",
		Short: "Show a group's totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GroupStats
			if err := client.Get(cmd.Context(), groupPath(args[0], "stats"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGroupPasswordCmd() *cobra.Command {
	var (
		password      string
		clearPassword bool
	)

	cmd := &cobra.Command{
		Use:   "password <slug>",
		Short: "Set or clear a group's password (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearPassword == (password != "") {
				return errors.New("give exactly one of --password or --clear")
			}

			req := request.SetPasswordRequest{Password: password}
			var result response.Group
			if err := client.Put(cmd.Context(), groupPath(args[0], "password"), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "New password")
	cmd.Flags().BoolVar(&clearPassword, "clear", false, "Remove the password")

	return cmd
}
