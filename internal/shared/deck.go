package shared

import (
	"math/rand"
)

// Deck is the shared draw pile: an ordered stack of cards owned by exactly
// one game. The top of the pile is the end of the slice.
type Deck struct {
	Cards []Card
}

// NewDeck creates a full 52-card deck, shuffled.
func NewDeck() *Deck {
	cards := make([]Card, 0, len(Suits)*len(Ranks))
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, Card{Suit: suit, Rank: rank})
		}
	}

	d := &Deck{Cards: cards}
	d.Shuffle()
	return d
}

// Shuffle randomizes the order of cards in the deck.
func (d *Deck) Shuffle() {
	rand.Shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
}

// Draw pops the top card. Returns nil when the pile is empty.
func (d *Deck) Draw() *Card {
	if len(d.Cards) == 0 {
		return nil
	}
	card := d.Cards[len(d.Cards)-1]
	d.Cards = d.Cards[:len(d.Cards)-1]
	return &card
}

// Refill shuffles a batch of cards back into the pile.
func (d *Deck) Refill(cards []Card) {
	d.Cards = append(d.Cards, cards...)
	d.Shuffle()
}

// Count returns the number of cards left in the pile.
func (d *Deck) Count() int {
	return len(d.Cards)
}

// IsEmpty reports whether the pile has no cards left.
func (d *Deck) IsEmpty() bool {
	return len(d.Cards) == 0
}
