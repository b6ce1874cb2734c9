package shared

// Suit represents the suit of a card (Hearts, Diamonds, Clubs, Spades).
type Suit string

const (
	Hearts   Suit = "Hearts"
	Diamonds Suit = "Diamonds"
	Clubs    Suit = "Clubs"
	Spades   Suit = "Spades"
)

// Suits lists every suit in deck-building order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Ranks lists every rank in deck-building order, lowest first.
var Ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// Card represents a single card in the game. Cards compare by value:
// two cards are the same card iff suit and rank match.
type Card struct {
	Suit Suit   `json:"suit"`
	Rank string `json:"rank"`
}

// Rank order within a suit for trick comparison (Ace high)
var rankOrder = map[string]int{
	"2":  2,
	"3":  3,
	"4":  4,
	"5":  5,
	"6":  6,
	"7":  7,
	"8":  8,
	"9":  9,
	"10": 10,
	"J":  11,
	"Q":  12,
	"K":  13,
	"A":  14,
}

// Order returns the rank strength of the card within its suit (higher wins).
// Unknown ranks order below every real card.
func (c Card) Order() int {
	return rankOrder[c.Rank]
}

// ValidRank reports whether rank names one of the 13 ranks.
func ValidRank(rank string) bool {
	_, ok := rankOrder[rank]
	return ok
}

// ValidSuit reports whether suit names one of the 4 suits.
func ValidSuit(suit Suit) bool {
	switch suit {
	case Hearts, Diamonds, Clubs, Spades:
		return true
	}
	return false
}

func (c Card) String() string {
	return c.Rank + " of " + string(c.Suit)
}
