package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/typerace-go/internal/dependencies/clock"
	"github.com/mcoot/typerace-go/internal/model"
	"github.com/mcoot/typerace-go/internal/services/auth"
)

func newRaceCmd() *cobra.Command {
	var (
		gameID     string
		gameCode   string
		difficulty string
		text       string
		hostID     string
		userID     string
		username   string
		start      bool
	)

	cmd := &cobra.Command{
		Use:   "race",
		Short: "Join a race as a test client and print server events",
		Long: `race connects to the game server over WebSocket, authenticates,
joins (or lazily creates) the named game and prints every event the server
sends until interrupted.

A bearer token is taken from --token; if --secret is set instead, a token
is minted locally for --user-id/--username.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := cfg.Token
			if token == "" {
				if cfg.Secret == "" {
					return errors.New("either --token or --secret is required")
				}
				svc := auth.New(cfg.Secret, clock.New())
				var err error
				token, err = svc.Sign(userID, userID, username, time.Hour)
				if err != nil {
					return err
				}
			}

			conn, _, err := websocket.DefaultDialer.Dial(cfg.WSURL, nil)
			if err != nil {
				return fmt.Errorf("dial %s: %w", cfg.WSURL, err)
			}
			defer conn.Close()

			authMsg := model.ClientMessage{
				Type:       model.TypeAuth,
				Token:      token,
				GameID:     gameID,
				GameCode:   gameCode,
				Difficulty: difficulty,
				Text:       text,
				HostID:     hostID,
			}
			if err := conn.WriteJSON(authMsg); err != nil {
				return fmt.Errorf("send auth: %w", err)
			}

			if start {
				if err := conn.WriteJSON(model.ClientMessage{Type: model.TypeStartGame}); err != nil {
					return fmt.Errorf("send start_game: %w", err)
				}
			}

			// Close the connection on interrupt so the read loop unblocks
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				_ = conn.Close()
			}()

			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return nil
				}
				var event map[string]any
				if err := json.Unmarshal(data, &event); err != nil {
					fmt.Println(string(data))
					continue
				}
				printJSON(event)
			}
		},
	}

	cmd.Flags().StringVar(&gameID, "game", "cli-race", "Game id to join or create")
	cmd.Flags().StringVar(&gameCode, "code", "", "Join code (used on creation)")
	cmd.Flags().StringVar(&difficulty, "difficulty", "medium", "Difficulty (used on creation)")
	cmd.Flags().StringVar(&text, "text", "the quick brown fox jumps over the lazy dog", "Race text (used on creation)")
	cmd.Flags().StringVar(&hostID, "host-id", "", "Host id (used on creation)")
	cmd.Flags().StringVar(&userID, "user-id", "cli-user", "User id for locally minted tokens")
	cmd.Flags().StringVar(&username, "username", "cli", "Username for locally minted tokens")
	cmd.Flags().BoolVar(&start, "start", false, "Send start_game immediately after authenticating")
	return cmd
}
