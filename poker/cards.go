package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Card is a single playing card stored as one bit of a uint64.
// Layout: [13 spades][13 hearts][13 diamonds][13 clubs], bit = suit*13 + rank.
type Card uint64

// Hand is a set of cards using the same bit layout as Card.
type Hand uint64

// Suit constants
const (
	Clubs    uint8 = 0
	Diamonds uint8 = 1
	Hearts   uint8 = 2
	Spades   uint8 = 3
)

// Rank constants (0-12 for 2-A)
const (
	Two   uint8 = 0
	Three uint8 = 1
	Four  uint8 = 2
	Five  uint8 = 3
	Six   uint8 = 4
	Seven uint8 = 5
	Eight uint8 = 6
	Nine  uint8 = 7
	Ten   uint8 = 8
	Jack  uint8 = 9
	Queen uint8 = 10
	King  uint8 = 11
	Ace   uint8 = 12
)

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"

	// fullDeck has the low 52 bits set.
	fullDeck Hand = 1<<52 - 1
)

// NewCard creates a card from rank (0-12) and suit (0-3).
func NewCard(rank, suit uint8) Card {
	return Card(1) << (suit*13 + rank)
}

// Valid reports whether c is exactly one of the 52 cards.
func (c Card) Valid() bool {
	return c != 0 && Hand(c)&^fullDeck == 0 && bits.OnesCount64(uint64(c)) == 1
}

// Index returns the bit position (0-51) of the card, or 255 if invalid.
func (c Card) Index() uint8 {
	if !c.Valid() {
		return 255
	}
	return uint8(bits.TrailingZeros64(uint64(c)))
}

// Rank returns the rank of the card (0-12).
func (c Card) Rank() uint8 {
	idx := c.Index()
	if idx == 255 {
		return 255
	}
	return idx % 13
}

// Suit returns the suit of the card (0-3).
func (c Card) Suit() uint8 {
	idx := c.Index()
	if idx == 255 {
		return 255
	}
	return idx / 13
}

// String returns the two character form, e.g. "As" or "Td".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string(rankChars[c.Rank()]) + string(suitChars[c.Suit()])
}

// ParseCard parses a string like "As" into a Card.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("%w: card %q must be two characters", ErrInvalidInput, s)
	}
	rank := strings.IndexByte(rankChars, upper(s[0]))
	if rank < 0 {
		return 0, fmt.Errorf("%w: invalid rank %q in %q", ErrInvalidInput, s[0], s)
	}
	suit := strings.IndexByte(suitChars, lower(s[1]))
	if suit < 0 {
		return 0, fmt.Errorf("%w: invalid suit %q in %q", ErrInvalidInput, s[1], s)
	}
	return NewCard(uint8(rank), uint8(suit)), nil
}

// ParseCards parses a run of cards such as "AsKd7h" or "As Kd 7h".
// Duplicates are rejected.
func ParseCards(s string) ([]Card, error) {
	compact := strings.Join(strings.Fields(strings.ReplaceAll(s, ",", " ")), "")
	if len(compact)%2 != 0 {
		return nil, fmt.Errorf("%w: card list %q has odd length", ErrInvalidInput, s)
	}
	cards := make([]Card, 0, len(compact)/2)
	var seen Hand
	for i := 0; i < len(compact); i += 2 {
		card, err := ParseCard(compact[i : i+2])
		if err != nil {
			return nil, err
		}
		if seen.HasCard(card) {
			return nil, fmt.Errorf("%w: duplicate card %s", ErrInvalidInput, card)
		}
		seen.AddCard(card)
		cards = append(cards, card)
	}
	return cards, nil
}

// ParseHand parses individual card strings into a Hand.
func ParseHand(cards ...string) (Hand, error) {
	var h Hand
	for _, s := range cards {
		card, err := ParseCard(s)
		if err != nil {
			return 0, err
		}
		if h.HasCard(card) {
			return 0, fmt.Errorf("%w: duplicate card %s", ErrInvalidInput, card)
		}
		h.AddCard(card)
	}
	return h, nil
}

// FormatCards joins cards with single spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// NewHand creates a hand from multiple cards.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// AddCard adds a card to the hand.
func (h *Hand) AddCard(c Card) {
	*h |= Hand(c)
}

// HasCard checks if the hand contains a specific card.
func (h Hand) HasCard(c Card) bool {
	return h&Hand(c) != 0
}

// CountCards returns the number of cards in the hand.
func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// Cards lists the cards in ascending bit order.
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, h.CountCards())
	for rest := uint64(h & fullDeck); rest != 0; rest &= rest - 1 {
		cards = append(cards, Card(rest&-rest))
	}
	return cards
}

// GetSuitMask returns the ranks held in one suit as a 13-bit mask.
func (h Hand) GetSuitMask(suit uint8) uint16 {
	return uint16((h >> (suit * 13)) & 0x1FFF)
}

// GetRankMask returns a bitmask of which ranks are present.
func (h Hand) GetRankMask() uint16 {
	var mask uint16
	for suit := range uint8(4) {
		mask |= h.GetSuitMask(suit)
	}
	return mask
}

// String returns the cards in the hand separated by spaces.
func (h Hand) String() string {
	return FormatCards(h.Cards())
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
