package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]string
			if err := client.Get("/health", &result); err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server status and game counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]any
			if err := client.Get("/status", &result); err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}
}

func newLeaderboardCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top race results",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]any
			if err := client.Get(fmt.Sprintf("/leaderboard?limit=%d", limit), &result); err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of entries to show")
	return cmd
}
