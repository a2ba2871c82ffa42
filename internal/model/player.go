package model

// PlayerID is a server-minted opaque identifier, unique per connection.
// A user holding multiple connections holds multiple player ids.
type PlayerID string

// Player represents one connected participant in a race
type Player struct {
	ID         PlayerID `json:"id"`
	UserID     string   `json:"user_id"`
	Username   string   `json:"username"`
	WPM        int      `json:"wpm"`
	Accuracy   float64  `json:"accuracy"`
	Progress   int      `json:"progress"`
	Finished   bool     `json:"finished"`
	FinishedAt *int64   `json:"finished_at"`
}

// NewPlayer creates a player with zeroed race stats
func NewPlayer(id PlayerID, userID, username string) Player {
	return Player{
		ID:       id,
		UserID:   userID,
		Username: username,
	}
}
