package poker

import (
	"fmt"
	rand "math/rand/v2"
)

// Deck is the set of cards still available to deal. Cards are drawn
// uniformly at random without replacement from the supplied rng.
type Deck struct {
	base  [52]Card // cards present after known cards were removed
	nbase int
	cards [52]Card
	n     int
	rng   *rand.Rand
}

// NewDeck creates a full 52-card deck backed by rng.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	i := 0
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			d.base[i] = NewCard(rank, suit)
			i++
		}
	}
	d.nbase = i
	d.Reset()
	return d
}

// NewDeckWithout creates a deck with the known cards removed. A known card
// that is missing (invalid or listed twice) is an error.
func NewDeckWithout(rng *rand.Rand, known ...Card) (*Deck, error) {
	d := NewDeck(rng)
	for _, c := range known {
		if err := d.Remove(c); err != nil {
			return nil, err
		}
	}
	d.Seal()
	return d, nil
}

// Remove takes a specific card out of the deck. Removing a card that is not
// present is an error, never a no-op.
func (d *Deck) Remove(c Card) error {
	for i := 0; i < d.n; i++ {
		if d.cards[i] == c {
			d.n--
			d.cards[i] = d.cards[d.n]
			return nil
		}
	}
	return fmt.Errorf("%w: card %s is not in the deck", ErrInvalidInput, c)
}

// Seal records the current contents as the state Reset returns to.
func (d *Deck) Seal() {
	d.base = d.cards
	d.nbase = d.n
}

// Reset restores the deck to its sealed contents.
func (d *Deck) Reset() {
	d.cards = d.base
	d.n = d.nbase
}

// Draw removes n random cards from the deck. If fewer than n remain nothing
// is drawn and ErrDeckExhausted is returned.
func (d *Deck) Draw(n int) ([]Card, error) {
	out := make([]Card, n)
	if err := d.DrawInto(out); err != nil {
		return nil, err
	}
	return out, nil
}

// DrawInto fills dst with random cards, drawing them in order.
func (d *Deck) DrawInto(dst []Card) error {
	if len(dst) > d.n {
		return fmt.Errorf("%w: need %d cards, %d remain", ErrDeckExhausted, len(dst), d.n)
	}
	for i := range dst {
		dst[i] = d.drawOne()
	}
	return nil
}

// DrawOne removes a single random card.
func (d *Deck) DrawOne() (Card, error) {
	if d.n == 0 {
		return 0, fmt.Errorf("%w: no cards remain", ErrDeckExhausted)
	}
	return d.drawOne(), nil
}

func (d *Deck) drawOne() Card {
	idx := d.rng.IntN(d.n)
	d.n--
	card := d.cards[idx]
	d.cards[idx] = d.cards[d.n]
	d.cards[d.n] = card
	return card
}

// CardsRemaining returns the number of cards left in the deck.
func (d *Deck) CardsRemaining() int {
	return d.n
}

// Contains reports whether c is still in the deck.
func (d *Deck) Contains(c Card) bool {
	for i := 0; i < d.n; i++ {
		if d.cards[i] == c {
			return true
		}
	}
	return false
}
