package server

import (
	"encoding/json"

	"github.com/gamepark/rules-server-go/internal/game"
)

// Client to server message types.
const (
	MsgCreate = "create_game"
	MsgJoin   = "join_game"
	MsgPlay   = "play_move"
	MsgUndo   = "undo_action"
	MsgSync   = "sync"
)

// Server to client message types.
const (
	MsgGameCreated = "game_created"
	MsgGameState   = "game_state"
	MsgGameAction  = "game_action"
	MsgError       = "error"
)

// ClientMessage is the envelope of every client request.
type ClientMessage struct {
	Type     string          `json:"type"`
	GameType string          `json:"gameType,omitempty"`
	GameID   string          `json:"gameId,omitempty"`
	Player   *int            `json:"player,omitempty"`
	Players  []int           `json:"players,omitempty"`
	Move     json.RawMessage `json:"move,omitempty"`
	ActionID string          `json:"actionId,omitempty"`
}

// ServerMessage is the envelope of every server response. State carries the
// recipient's view, never the full hidden state.
type ServerMessage struct {
	Type   string       `json:"type"`
	GameID string       `json:"gameId,omitempty"`
	State  *game.State  `json:"state,omitempty"`
	Action *game.Action `json:"action,omitempty"`
	Error  string       `json:"error,omitempty"`
}
