package poker

import (
	"fmt"
	"math/bits"
)

// HandRank is the strength of a 5-7 card holding. Lower values are stronger;
// two holdings tie exactly when their ranks are equal.
type HandRank uint32

// HandType enumerates the categories of poker hands ordered from weakest to strongest.
type HandType uint8

const (
	HighCard HandType = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

const (
	// Category occupies the bits above typeShift, kickers the 20 bits below
	// as five 4-bit ranks, most significant first.
	typeShift  = 20
	kickerMask = 1<<typeShift - 1

	// WorstRank is weaker than any real holding.
	WorstRank = HandRank(uint32(StraightFlush-HighCard+1) << typeShift)

	wheelMask = 0x100F // A-2-3-4-5
)

// Type returns the type of hand (pair, flush, etc.).
func (hr HandRank) Type() HandType {
	offset := HandType(hr >> typeShift)
	if offset > StraightFlush {
		return HighCard
	}
	return StraightFlush - offset
}

// String returns a human-readable hand description.
func (hr HandRank) String() string {
	return hr.Type().String()
}

func (ht HandType) String() string {
	switch ht {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// EvaluateCards evaluates the best five-card hand from 5 to 7 cards.
func EvaluateCards(hand Hand) (HandRank, error) {
	if hand&^fullDeck != 0 {
		return WorstRank, fmt.Errorf("%w: hand contains bits outside the deck", ErrInvalidInput)
	}
	if n := hand.CountCards(); n < 5 || n > 7 {
		return WorstRank, fmt.Errorf("%w: need 5-7 cards to evaluate, got %d", ErrInvalidInput, n)
	}
	return Evaluate(hand), nil
}

// Evaluate7Cards evaluates a seven card hand, returning WorstRank for any
// other card count.
func Evaluate7Cards(hand Hand) HandRank {
	if hand.CountCards() != 7 {
		return WorstRank
	}
	return Evaluate(hand)
}

// Evaluate ranks a hand without checking its card count. Callers must supply
// between five and seven distinct cards.
func Evaluate(hand Hand) HandRank {
	var suitMasks [4]uint16
	for suit := range uint8(4) {
		suitMasks[suit] = hand.GetSuitMask(suit)
	}
	return rankFromMasks(suitMasks)
}

func rankFromMasks(suitMasks [4]uint16) HandRank {
	s0, s1, s2, s3 := suitMasks[0], suitMasks[1], suitMasks[2], suitMasks[3]
	rankMask := s0 | s1 | s2 | s3

	// With at most seven cards only one suit can reach five.
	var flushMask uint16
	for _, suitMask := range suitMasks {
		if bits.OnesCount16(suitMask) >= 5 {
			if high, ok := straightHigh(suitMask); ok {
				return makeRank(StraightFlush, high)
			}
			flushMask = suitMask
		}
	}

	quadsMask := s0 & s1 & s2 & s3
	tripCandidates := (s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)
	tripsMask := tripCandidates &^ quadsMask
	pairsMask := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ tripCandidates

	if quad, ok := highestRank(quadsMask); ok {
		kickers := topRanks(rankMask&^(1<<quad), 1)
		return makeRank(FourOfAKind, append([]uint8{quad}, kickers...)...)
	}

	if trip, ok := highestRank(tripsMask); ok {
		// A second set of trips plays as the pair.
		if pair, ok := highestRank(pairsMask | (tripsMask &^ (1 << trip))); ok {
			return makeRank(FullHouse, trip, pair)
		}
	}

	if flushMask != 0 {
		return makeRank(Flush, topRanks(flushMask, 5)...)
	}

	if high, ok := straightHigh(rankMask); ok {
		return makeRank(Straight, high)
	}

	if trip, ok := highestRank(tripsMask); ok {
		kickers := topRanks(rankMask&^(1<<trip), 2)
		return makeRank(ThreeOfAKind, append([]uint8{trip}, kickers...)...)
	}

	if high, ok := highestRank(pairsMask); ok {
		if low, ok := highestRank(pairsMask &^ (1 << high)); ok {
			kickers := topRanks(rankMask&^(1<<high|1<<low), 1)
			return makeRank(TwoPair, append([]uint8{high, low}, kickers...)...)
		}
		kickers := topRanks(rankMask&^(1<<high), 3)
		return makeRank(Pair, append([]uint8{high}, kickers...)...)
	}

	return makeRank(HighCard, topRanks(rankMask, 5)...)
}

// makeRank packs a category and up to five significant ranks, strongest
// first, into a HandRank where lower is better.
func makeRank(t HandType, ranks ...uint8) HandRank {
	var kickers uint32
	for i := 0; i < 5; i++ {
		kickers <<= 4
		if i < len(ranks) {
			kickers |= uint32(ranks[i])
		}
	}
	return HandRank(uint32(StraightFlush-t)<<typeShift | (kickerMask - kickers))
}

// highestRank returns the highest rank present in the bitmask.
func highestRank(mask uint16) (uint8, bool) {
	if mask == 0 {
		return 0, false
	}
	return uint8(bits.Len16(mask) - 1), true
}

// topRanks returns up to n ranks from mask in descending order.
func topRanks(mask uint16, n int) []uint8 {
	ranks := make([]uint8, 0, n)
	for len(ranks) < n && mask != 0 {
		top := uint8(bits.Len16(mask) - 1)
		ranks = append(ranks, top)
		mask &^= 1 << top
	}
	return ranks
}

// straightHigh returns the high card of the best straight in mask. The wheel
// (A-2-3-4-5) counts as five-high and loses to every other straight.
func straightHigh(mask uint16) (uint8, bool) {
	mask &= 0x1FFF
	if seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4); seq != 0 {
		return uint8(bits.Len16(seq)-1) + 4, true
	}
	if mask&wheelMask == wheelMask {
		return Five, true
	}
	return 0, false
}

// CompareHands compares two hands and returns 1 if a wins, -1 if b wins, 0 for tie
func CompareHands(a, b HandRank) int {
	if a < b {
		return 1
	} else if a > b {
		return -1
	}
	return 0
}
