// Package leaderboard records the results of finished races
package leaderboard

import "context"

// Entry is one finished player's result
type Entry struct {
	RaceID     string  `json:"race_id"`
	PlayerID   string  `json:"player_id"`
	Username   string  `json:"username"`
	WPM        int     `json:"wpm"`
	Accuracy   float64 `json:"accuracy"`
	FinishedAt int64   `json:"finished_at"`
}

// Store defines the interface for leaderboard persistence
type Store interface {
	// Record saves one result
	Record(ctx context.Context, e Entry) error

	// Top returns up to n entries ordered descending by WPM
	Top(ctx context.Context, n int) ([]Entry, error)

	// Size returns the total number of recorded entries
	Size(ctx context.Context) (int, error)
}
