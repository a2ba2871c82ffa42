// Package cli provides a command-line client for poking at a running game
// server: status queries over HTTP and a WebSocket race client for manual
// testing.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "typerace",
		Short: "CLI tool for the typerace game server",
		Long: `typerace is a CLI tool for interacting with a running typerace server.

It can query the status server and connect to a race over WebSocket as a
test client, printing every event the server sends.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			client = NewClient(cfg.StatusURL)
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.StatusURL, "status-url", cfg.StatusURL, "Status server URL (env: TYPERACE_STATUS_URL)")
	rootCmd.PersistentFlags().StringVar(&cfg.WSURL, "ws-url", cfg.WSURL, "WebSocket endpoint (env: TYPERACE_WS_URL)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Bearer token (env: TYPERACE_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.Secret, "secret", cfg.Secret, "JWT secret for minting a token locally (env: JWT_SECRET)")

	// Add subcommands
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newRaceCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// printJSON pretty-prints a value to stdout
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to render output:", err)
		return
	}
	fmt.Println(string(data))
}
