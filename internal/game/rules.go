package game

import (
	"github.com/gelaws-hub/board-game/internal/shared"
)

// Rules is the capability boundary for a ruleset. The registry only talks to
// the game through this interface, so a rule variant can be swapped in
// without touching the session layer. Every operation reports failure as a
// bool/nil result and never mutates on failure.
type Rules interface {
	TryPlayCard(g *Game, player *shared.Player, card shared.Card) bool
	DrawCard(g *Game, player *shared.Player) *shared.Card
	CheckGameEnd(g *Game) (bool, *shared.Player)
	NextTurn(g *Game)
}

// MinumanRules implements the single trick-taking ruleset: follow the suit
// led, highest rank of the led suit takes the trick, first empty hand wins.
type MinumanRules struct{}

// NewMinumanRules creates the ruleset.
func NewMinumanRules() *MinumanRules {
	return &MinumanRules{}
}

// TryPlayCard moves a card from the player's hand into the current trick.
// Fails without mutation if the card is not in the hand, or if the trick has
// been led and the card does not follow the led suit.
func (r *MinumanRules) TryPlayCard(g *Game, player *shared.Player, card shared.Card) bool {
	if !player.HasCard(card) {
		return false
	}
	if ledSuit := g.CurrentTrick.LedSuit(); ledSuit != "" && card.Suit != ledSuit {
		return false
	}

	player.RemoveCard(card)
	g.CurrentTrick.AddCard(card, player)
	return true
}

// NextTurn advances the turn cursor, resolving the trick first when every
// seat has a card in it.
func (r *MinumanRules) NextTurn(g *Game) {
	if g.CurrentTrick.Size() < len(g.Players) {
		g.CurrentPlayerIndex = (g.CurrentPlayerIndex + 1) % len(g.Players)
		return
	}
	r.resolveTrick(g)
}

// resolveTrick sweeps the completed trick into the board history, in play
// order, and hands the lead to the winning seat. An unowned opening lead that
// wins its own trick hands the lead to the next seat in order instead.
func (r *MinumanRules) resolveTrick(g *Game) {
	winner, ok := g.CurrentTrick.DetermineWinner()
	if !ok {
		return
	}

	g.BoardHistory = append(g.BoardHistory, g.CurrentTrick.Cards()...)
	g.CurrentTrick.Clear()

	if winner.Player != nil {
		g.CurrentPlayerIndex = g.PlayerIndex(winner.Player)
		return
	}
	g.CurrentPlayerIndex = (g.CurrentPlayerIndex + 1) % len(g.Players)
}

// CheckGameEnd reports whether some hand has emptied; that player is the
// winner.
func (r *MinumanRules) CheckGameEnd(g *Game) (bool, *shared.Player) {
	for _, p := range g.Players {
		if len(p.Hand) == 0 {
			return true, p
		}
	}
	return false, nil
}

// DrawCard pops one card from the pile into the player's hand. An empty pile
// is first refilled by reshuffling the whole board history; when both are
// empty the draw returns nil and nothing moves. Cards in the trick in
// progress are never recycled.
func (r *MinumanRules) DrawCard(g *Game, player *shared.Player) *shared.Card {
	if g.DrawPile.IsEmpty() && len(g.BoardHistory) > 0 {
		g.DrawPile.Refill(g.BoardHistory)
		g.BoardHistory = []shared.Card{}
	}

	card := g.DrawPile.Draw()
	if card == nil {
		return nil
	}
	player.AddCard(*card)
	return card
}
