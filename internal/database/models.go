package database

import (
	"strings"
	"time"
)

// GameResult is the persisted record of one finished game.
type GameResult struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Winner     string `json:"winner"`
	Players    string `json:"players"` // comma-joined usernames, in seat order
	FinishedAt string `json:"finished_at"`
}

// NewGameResult builds a record stamped with the current time.
func NewGameResult(id, name, winner string, players []string) GameResult {
	return GameResult{
		ID:         id,
		Name:       name,
		Winner:     winner,
		Players:    strings.Join(players, ","),
		FinishedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// PlayerList splits the stored seat list back into usernames.
func (r GameResult) PlayerList() []string {
	if r.Players == "" {
		return nil
	}
	return strings.Split(r.Players, ",")
}
