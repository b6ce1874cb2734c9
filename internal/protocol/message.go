package protocol

import (
	"encoding/json"

	"github.com/gelaws-hub/board-game/internal/shared"
)

// Message is the envelope for every WebSocket frame in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Client -> Server payloads ---

type CreateGamePayload struct {
	Username string `json:"username"`
	GameName string `json:"game_name"`
}

type JoinGamePayload struct {
	GameID   string `json:"game_id"`
	Username string `json:"username"`
}

type PlayerReadyPayload struct {
	GameID   string `json:"game_id"`
	Username string `json:"username"`
}

type StartGamePayload struct {
	GameID       string `json:"game_id"`
	Username     string `json:"username"`
	InitialCards int    `json:"initial_cards"`
}

type PlayCardPayload struct {
	GameID   string      `json:"game_id"`
	Username string      `json:"username"`
	Suit     shared.Suit `json:"suit"`
	Rank     string      `json:"rank"`
}

type DrawCardPayload struct {
	GameID   string `json:"game_id"`
	Username string `json:"username"`
}

type EndTurnPayload struct {
	GameID   string `json:"game_id"`
	Username string `json:"username"`
}

type ReconnectPayload struct {
	GameID   string `json:"game_id"`
	Username string `json:"username"`
}

// --- Server -> Client payloads ---

type GameCreatedPayload struct {
	GameID   string `json:"game_id"`
	GameName string `json:"game_name"`
	PlayerID string `json:"player_id"`
}

type PlayerJoinedPayload struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

type PlayerReadyInfoPayload struct {
	GameID   string `json:"game_id"`
	Username string `json:"username"`
}

type AllPlayersReadyPayload struct {
	GameID string `json:"game_id"`
}

type CardDrawnPayload struct {
	PlayerID string      `json:"player_id"`
	Card     shared.Card `json:"card"`
}

// GameSummary is the lobby listing entry. It never exposes hands or pile
// contents.
type GameSummary struct {
	GameID         string `json:"game_id"`
	GameName       string `json:"game_name"`
	PlayerCount    int    `json:"player_count"`
	GameState      string `json:"game_state"`
	LeaderUsername string `json:"game_leader_username"`
}

type AvailableGamesPayload struct {
	Games []GameSummary `json:"games"`
}

// TrickPlay is one face-up card of the trick in progress with the seat that
// played it. The opening lead dealt at game start has no player.
type TrickPlay struct {
	Card     shared.Card `json:"card"`
	PlayerID string      `json:"player_id,omitempty"`
	Username string      `json:"username,omitempty"`
}

// OpponentInfo is how every other player appears in a personalized view:
// identity and hand size only, never hand contents.
type OpponentInfo struct {
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
	IsConnected bool   `json:"is_connected"`
	IsReady     bool   `json:"is_ready"`
	CardCount   int    `json:"card_count"`
}

// GameViewPayload is the per-player projection of a game: public state plus
// the viewing player's own hand.
type GameViewPayload struct {
	GameID          string         `json:"game_id"`
	GameName        string         `json:"game_name"`
	GameState       string         `json:"game_state"`
	LeaderUsername  string         `json:"leader_username"`
	WinnerUsername  string         `json:"winner_username,omitempty"`
	BoardHistory    []shared.Card  `json:"board_history"`
	CurrentTrick    []TrickPlay    `json:"current_trick"`
	DrawPileCount   int            `json:"draw_pile_count"`
	CurrentPlayerID string         `json:"current_player_id,omitempty"`
	CurrentUsername string         `json:"current_username,omitempty"`
	TurnIndex       int            `json:"turn_index"`
	YourID          string         `json:"your_id"`
	YourUsername    string         `json:"your_username"`
	YourHand        []shared.Card  `json:"your_hand"`
	YourTurn        bool           `json:"your_turn"`
	Opponents       []OpponentInfo `json:"opponents"`
}

// GameStatusPayload is the public projection served to polling REST clients.
// It carries hand counts, never hand contents.
type GameStatusPayload struct {
	GameID          string         `json:"game_id"`
	GameName        string         `json:"game_name"`
	GameState       string         `json:"game_state"`
	LeaderUsername  string         `json:"leader_username"`
	WinnerUsername  string         `json:"winner_username,omitempty"`
	Players         []OpponentInfo `json:"players"`
	DrawPileCount   int            `json:"draw_pile_count"`
	BoardHistory    int            `json:"board_history_count"`
	CurrentTrick    []TrickPlay    `json:"current_trick"`
	CurrentUsername string         `json:"current_username,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewMessage wraps a payload in the message envelope and marshals it.
func NewMessage(msgType string, payload interface{}) ([]byte, error) {
	if payload == nil {
		return json.Marshal(Message{Type: msgType})
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: msgType, Payload: payloadBytes})
}
