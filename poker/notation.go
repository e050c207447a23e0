package poker

import "fmt"

// Notation returns the canonical starting-hand label for two hole cards:
// higher rank first, then "s" for suited or "o" for offsuit. Pairs carry no
// marker ("AA", "AKs", "72o").
func Notation(card1, card2 Card) (string, error) {
	if !card1.Valid() || !card2.Valid() {
		return "", fmt.Errorf("%w: invalid hole card", ErrInvalidInput)
	}
	if card1 == card2 {
		return "", fmt.Errorf("%w: duplicate hole card %s", ErrInvalidInput, card1)
	}

	high, low := card1, card2
	if low.Rank() > high.Rank() {
		high, low = low, high
	}

	label := string(rankChars[high.Rank()]) + string(rankChars[low.Rank()])
	switch {
	case high.Rank() == low.Rank():
		return label, nil
	case high.Suit() == low.Suit():
		return label + "s", nil
	default:
		return label + "o", nil
	}
}

// RankValue converts the 0-12 rank encoding to the 2-14 face value.
func RankValue(rank uint8) int {
	return int(rank) + 2
}
