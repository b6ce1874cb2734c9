package shared

// User is the stable identity a player presents across connections.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Player represents one seat at a game table.
type Player struct {
	ID          string // Unique identifier for the player within the game
	User        User   // Stable user identity (survives reconnects)
	Hand        []Card // Cards currently held by the player
	IsConnected bool   // Whether a live connection is bound to this player
	IsReady     bool   // Whether the player has declared ready in the lobby
}

// NewPlayer creates a new player seat for the given user.
func NewPlayer(id string, user User) *Player {
	return &Player{
		ID:          id,
		User:        user,
		Hand:        []Card{},
		IsConnected: true,
	}
}

// AddCard adds a card to the player's hand.
func (p *Player) AddCard(card Card) {
	p.Hand = append(p.Hand, card)
}

// RemoveCard removes a card from the player's hand.
func (p *Player) RemoveCard(card Card) bool {
	for i, c := range p.Hand {
		if c == card {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// FindCard looks a card up in the player's hand by suit and rank.
func (p *Player) FindCard(suit Suit, rank string) (Card, bool) {
	for _, card := range p.Hand {
		if card.Suit == suit && card.Rank == rank {
			return card, true
		}
	}
	return Card{}, false
}

// HasCard reports whether the card is in the player's hand.
func (p *Player) HasCard(card Card) bool {
	for _, c := range p.Hand {
		if c == card {
			return true
		}
	}
	return false
}
