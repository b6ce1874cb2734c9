package shared

// PlayedCard stores a card along with the player who played it. The opening
// lead dealt from the pile at game start carries a nil Player.
type PlayedCard struct {
	Card   Card
	Player *Player
}

// Trick represents the sub-round in progress: every card currently face-up
// on the board, in play order.
type Trick struct {
	Plays []PlayedCard
}

// NewTrick creates a new empty trick.
func NewTrick() *Trick {
	return &Trick{Plays: []PlayedCard{}}
}

// AddCard adds a card and the player who played it to the trick.
func (t *Trick) AddCard(card Card, player *Player) {
	t.Plays = append(t.Plays, PlayedCard{Card: card, Player: player})
}

// Cards returns the trick's cards in play order.
func (t *Trick) Cards() []Card {
	cards := make([]Card, len(t.Plays))
	for i, play := range t.Plays {
		cards[i] = play.Card
	}
	return cards
}

// Size returns the number of cards played so far.
func (t *Trick) Size() int {
	return len(t.Plays)
}

// LedSuit returns the suit of the first card played, or "" for an empty trick.
func (t *Trick) LedSuit() Suit {
	if len(t.Plays) == 0 {
		return ""
	}
	return t.Plays[0].Card.Suit
}

// Clear empties the trick for the next sub-round.
func (t *Trick) Clear() {
	t.Plays = []PlayedCard{}
}

// DetermineWinner returns the play holding the highest card of the led suit.
// Each suit/rank pair exists once in the deck, so the winner is unique.
// Returns false for an empty trick.
func (t *Trick) DetermineWinner() (PlayedCard, bool) {
	if len(t.Plays) == 0 {
		return PlayedCard{}, false
	}

	ledSuit := t.LedSuit()
	winner := t.Plays[0]
	for _, play := range t.Plays[1:] {
		if play.Card.Suit == ledSuit && play.Card.Order() > winner.Card.Order() {
			winner = play
		}
	}
	return winner, true
}
