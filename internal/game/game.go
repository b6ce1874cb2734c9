package game

import (
	"github.com/gelaws-hub/board-game/internal/shared"

	"github.com/google/uuid"
)

// State represents the lifecycle state of a game session.
type State string

const (
	WaitingForPlayers State = "WaitingForPlayers" // Lobby: players may still join
	InProgress        State = "InProgress"        // Cards dealt, tricks being played
	Finished          State = "Finished"          // Winner determined
)

// Game is the aggregate for one table: players in join order (join order is
// turn order and never changes), the shared draw pile, the trick in progress
// and the history of resolved tricks. A Game is owned by the Registry and is
// only ever reached through the registry's per-game locking.
type Game struct {
	ID                 string
	Name               string
	Players            []*shared.Player
	Leader             *shared.Player
	Winner             *shared.Player
	BoardHistory       []shared.Card
	CurrentTrick       *shared.Trick
	DrawPile           *shared.Deck
	State              State
	CurrentPlayerIndex int
}

// NewGame creates a game in the lobby state with the creator seated as leader.
func NewGame(name string, creator shared.User) *Game {
	leader := shared.NewPlayer(uuid.NewString(), creator)
	return &Game{
		ID:           uuid.NewString(),
		Name:         name,
		Players:      []*shared.Player{leader},
		Leader:       leader,
		BoardHistory: []shared.Card{},
		CurrentTrick: shared.NewTrick(),
		DrawPile:     shared.NewDeck(),
		State:        WaitingForPlayers,
	}
}

// CurrentPlayer returns the player whose turn it is, or nil before any
// players are seated. Computed from CurrentPlayerIndex on every read.
func (g *Game) CurrentPlayer() *shared.Player {
	if len(g.Players) == 0 {
		return nil
	}
	return g.Players[g.CurrentPlayerIndex]
}

// CurrentBoardCard returns the most recent face-up card: the last card of the
// trick in progress, falling back to the last resolved card. Nil before any
// card has been played.
func (g *Game) CurrentBoardCard() *shared.Card {
	if n := g.CurrentTrick.Size(); n > 0 {
		card := g.CurrentTrick.Plays[n-1].Card
		return &card
	}
	if n := len(g.BoardHistory); n > 0 {
		card := g.BoardHistory[n-1]
		return &card
	}
	return nil
}

// FindPlayerByUsername resolves a seat by the stable username.
func (g *Game) FindPlayerByUsername(username string) *shared.Player {
	for _, p := range g.Players {
		if p.User.Username == username {
			return p
		}
	}
	return nil
}

// FindPlayer resolves a seat by player ID.
func (g *Game) FindPlayer(playerID string) *shared.Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// PlayerIndex returns the seat index of the player, or -1 if not seated.
func (g *Game) PlayerIndex(player *shared.Player) int {
	for i, p := range g.Players {
		if p == player {
			return i
		}
	}
	return -1
}
