package model

// Wire protocol: JSON objects tagged with a "type" field, snake_case values,
// exchanged over a persistent WebSocket.

// Client message types
const (
	TypeAuth           = "auth"
	TypeStartGame      = "start_game"
	TypeUpdateProgress = "update_progress"
	TypeFinishGame     = "finish_game"
	TypePing           = "ping"
)

// Server message types
const (
	TypeConnected      = "connected"
	TypeGameState      = "game_state"
	TypePlayerJoined   = "player_joined"
	TypePlayerLeft     = "player_left"
	TypeGameStarted    = "game_started"
	TypePlayerProgress = "player_progress"
	TypePlayerFinished = "player_finished"
	TypeGameFinished   = "game_finished"
	TypeError          = "error"
	TypePong           = "pong"
)

// ClientMessage is the decoded envelope for all inbound commands. Only the
// fields relevant to the tagged type are populated.
type ClientMessage struct {
	Type string `json:"type"`

	// auth
	Token      string `json:"token,omitempty"`
	GameID     string `json:"game_id,omitempty"`
	GameCode   string `json:"game_code,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Text       string `json:"text,omitempty"`
	HostID     string `json:"host_id,omitempty"`

	// update_progress / finish_game
	Progress  int     `json:"progress,omitempty"`
	WPM       int     `json:"wpm,omitempty"`
	Accuracy  float64 `json:"accuracy,omitempty"`
	TimeTaken int     `json:"time_taken,omitempty"`
}

// ConnectedMsg acknowledges a successful authentication
type ConnectedMsg struct {
	Type     string   `json:"type"`
	PlayerID PlayerID `json:"player_id"`
}

// GameStateMsg carries the full current race snapshot to one client
type GameStateMsg struct {
	Type string `json:"type"`
	Game Race   `json:"game"`
}

// PlayerJoinedMsg announces a new roster member
type PlayerJoinedMsg struct {
	Type   string `json:"type"`
	Player Player `json:"player"`
}

// PlayerLeftMsg announces a roster departure
type PlayerLeftMsg struct {
	Type     string   `json:"type"`
	PlayerID PlayerID `json:"player_id"`
}

// GameStartedMsg announces the waiting -> playing transition
type GameStartedMsg struct {
	Type      string `json:"type"`
	StartedAt int64  `json:"started_at"`
}

// PlayerProgressMsg relays one player's typing progress
type PlayerProgressMsg struct {
	Type     string   `json:"type"`
	PlayerID PlayerID `json:"player_id"`
	Progress int      `json:"progress"`
	WPM      int      `json:"wpm"`
	Accuracy float64  `json:"accuracy"`
}

// PlayerFinishedMsg announces that one player has crossed the line
type PlayerFinishedMsg struct {
	Type       string   `json:"type"`
	PlayerID   PlayerID `json:"player_id"`
	WPM        int      `json:"wpm"`
	Accuracy   float64  `json:"accuracy"`
	FinishedAt int64    `json:"finished_at"`
}

// GameFinishedMsg announces race completion with the winner and standings
type GameFinishedMsg struct {
	Type           string    `json:"type"`
	WinnerID       *PlayerID `json:"winner_id"`
	FinalStandings []Player  `json:"final_standings"`
}

// ErrorMsg is a soft error reply to the originating connection
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PongMsg answers a ping
type PongMsg struct {
	Type string `json:"type"`
}

// Message constructors

func NewConnected(playerID PlayerID) ConnectedMsg {
	return ConnectedMsg{Type: TypeConnected, PlayerID: playerID}
}

func NewGameState(game Race) GameStateMsg {
	return GameStateMsg{Type: TypeGameState, Game: game}
}

func NewPlayerJoined(player Player) PlayerJoinedMsg {
	return PlayerJoinedMsg{Type: TypePlayerJoined, Player: player}
}

func NewPlayerLeft(playerID PlayerID) PlayerLeftMsg {
	return PlayerLeftMsg{Type: TypePlayerLeft, PlayerID: playerID}
}

func NewGameStarted(startedAt int64) GameStartedMsg {
	return GameStartedMsg{Type: TypeGameStarted, StartedAt: startedAt}
}

func NewPlayerProgress(playerID PlayerID, progress, wpm int, accuracy float64) PlayerProgressMsg {
	return PlayerProgressMsg{
		Type:     TypePlayerProgress,
		PlayerID: playerID,
		Progress: progress,
		WPM:      wpm,
		Accuracy: accuracy,
	}
}

func NewPlayerFinished(playerID PlayerID, wpm int, accuracy float64, finishedAt int64) PlayerFinishedMsg {
	return PlayerFinishedMsg{
		Type:       TypePlayerFinished,
		PlayerID:   playerID,
		WPM:        wpm,
		Accuracy:   accuracy,
		FinishedAt: finishedAt,
	}
}

func NewGameFinished(winnerID *PlayerID, standings []Player) GameFinishedMsg {
	return GameFinishedMsg{Type: TypeGameFinished, WinnerID: winnerID, FinalStandings: standings}
}

func NewError(message string) ErrorMsg {
	return ErrorMsg{Type: TypeError, Message: message}
}

func NewPong() PongMsg {
	return PongMsg{Type: TypePong}
}
