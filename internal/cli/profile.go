package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/whamageddon/internal/api/request"
	"github.com/mcoot/whamageddon/internal/api/response"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Your profile across every group you joined",
	}

	cmd.AddCommand(newProfileGetCmd())
	cmd.AddCommand(newProfileUpdateCmd())
	cmd.AddCommand(newProfileWhamCmd())

	return cmd
}

func newProfileGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Profile
			if err := client.Get(cmd.Context(), "/api/v1/me", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newProfileUpdateCmd() *cobra.Command {
	var name, company, avatarURL, pin string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your name, company, avatar or PIN in every group",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only flags that were given are sent; the rest stay as they are
			var req request.UpdateProfileRequest
			flags := cmd.Flags()
			if flags.Changed("name") {
				req.Name = &name
			}
			if flags.Changed("company") {
				req.Company = &company
			}
			if flags.Changed("avatar-url") {
				req.AvatarURL = &avatarURL
			}
			if flags.Changed("pin") {
				req.PIN = &pin
			}
			if req == (request.UpdateProfileRequest{}) {
				return errors.New("nothing to update")
			}

			var result response.Profile
			if err := client.Patch(cmd.Context(), "/api/v1/me", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your name")
	cmd.Flags().StringVar(&company, "company", "", "Company or department")
	cmd.Flags().StringVar(&avatarURL, "avatar-url", "", "Avatar image URL")
	cmd.Flags().StringVar(&pin, "pin", "", "Four digit PIN, empty to remove")

	return cmd
}

func newProfileWhamCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "wham",
		Short: "Admit you heard the song; you are out in every group",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Profile
			req := request.WhamRequest{Reason: reason}
			if err := client.Post(cmd.Context(), "/api/v1/me/wham", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Where it happened")

	return cmd
}

func newRecoverCmd() *cobra.Command {
	var req request.RecoverRequest

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Take over your identity on this device using name and PIN",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Recovery
			if err := client.Post(cmd.Context(), "/api/v1/recover", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveUser(result.UserID); err != nil {
				return fmt.Errorf("failed to save user id: %w", err)
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Name used when joining (required)")
	cmd.Flags().StringVar(&req.PIN, "pin", "", "Four digit PIN (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("pin")

	return cmd
}
