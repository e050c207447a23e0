package classification

import (
	"fmt"
	"math/bits"

	"github.com/lox/pokerkelly/poker"
)

// Hand classes on the flop, strongest first. The made-hand names follow the
// postflop tables ("Trips", "Overpair", "TopPair"); draws are named with
// their kind in parentheses.
const (
	StraightFlush = "StraightFlush"
	Quads         = "Quads"
	FullHouse     = "FullHouse"
	Flush         = "Flush"
	Straight      = "Straight"
	Trips         = "Trips"
	TwoPair       = "TwoPair"
	Overpair      = "Overpair"
	TopPair       = "TopPair"
	MiddlePair    = "MiddlePair"
	WeakPair      = "WeakPair"
	FlushDraw     = "Draw (Flush)"
	OESD          = "Draw (OESD)"
	Gutshot       = "Draw (Gutshot)"
	Air           = "Air"
)

// HandClass names what two hole cards make on a three-card flop. Made hands
// win over draws; a pair that lives only on the board does not count.
func HandClass(hole [2]poker.Card, board []poker.Card) (string, error) {
	if len(board) != 3 {
		return "", fmt.Errorf("%w: a flop has 3 cards, got %d", poker.ErrInvalidInput, len(board))
	}
	holeHand := poker.NewHand(hole[:]...)
	boardHand := poker.NewHand(board...)
	all := holeHand | boardHand
	if all.CountCards() != 5 {
		return "", fmt.Errorf("%w: hole and flop cards must be distinct", poker.ErrInvalidInput)
	}

	rank, err := poker.EvaluateCards(all)
	if err != nil {
		return "", err
	}

	switch rank.Type() {
	case poker.StraightFlush:
		return StraightFlush, nil
	case poker.FourOfAKind:
		return Quads, nil
	case poker.FullHouse:
		return FullHouse, nil
	case poker.Flush:
		return Flush, nil
	case poker.Straight:
		return Straight, nil
	}

	boardRanks := boardHand.GetRankMask()
	holeRanks := holeHand.GetRankMask()
	boardPaired := bits.OnesCount16(boardRanks) < 3

	switch rank.Type() {
	case poker.ThreeOfAKind:
		if boardPaired && bits.OnesCount16(boardRanks) == 1 && holeRanks&boardRanks == 0 {
			// Trips on the board alone.
			break
		}
		return Trips, nil
	case poker.TwoPair:
		if !boardPaired || holeRanks&boardRanks != 0 || hole[0].Rank() == hole[1].Rank() {
			return TwoPair, nil
		}
	case poker.Pair:
		if class, ok := pairClass(hole, boardRanks); ok {
			return class, nil
		}
	}

	return drawClass(holeHand, boardHand), nil
}

func pairClass(hole [2]poker.Card, boardRanks uint16) (string, bool) {
	top := uint8(bits.Len16(boardRanks) - 1)
	bottom := uint8(bits.TrailingZeros16(boardRanks))

	if r := hole[0].Rank(); r == hole[1].Rank() {
		if boardRanks&(1<<r) != 0 {
			return "", false
		}
		if r > top {
			return Overpair, true
		}
		return WeakPair, true
	}

	for _, c := range hole {
		r := c.Rank()
		if boardRanks&(1<<r) == 0 {
			continue
		}
		switch r {
		case top:
			return TopPair, true
		case bottom:
			return WeakPair, true
		default:
			return MiddlePair, true
		}
	}
	return "", false
}

func drawClass(hole, board poker.Hand) string {
	all := hole | board
	for suit := range uint8(4) {
		if bits.OnesCount16(all.GetSuitMask(suit)) == 4 && hole.GetSuitMask(suit) != 0 {
			return FlushDraw
		}
	}

	ranks := withAceLow(all.GetRankMask())
	holeRanks := withAceLow(hole.GetRankMask())

	// Four in a row with a free rank at both ends.
	for low := 1; low <= 9; low++ {
		run := uint16(0xF) << low
		if ranks&run == run && holeRanks&run != 0 {
			return OESD
		}
	}

	// Four of five ranks in a straight window.
	for low := 0; low <= 9; low++ {
		window := uint16(0x1F) << low
		if bits.OnesCount16(ranks&window) == 4 && holeRanks&window != 0 {
			return Gutshot
		}
	}
	return Air
}
