package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/whamageddon/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult

			if err := client.Get(cmd.Context(), "/api/v1/health", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newCountdownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countdown",
		Short: "Show the days left until 24 December",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Countdown

			if err := client.Get(cmd.Context(), "/api/v1/countdown", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show game-wide statistics and the group ranking",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Stats

			if err := client.Get(cmd.Context(), "/api/v1/stats", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
