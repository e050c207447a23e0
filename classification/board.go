// Package classification buckets flops by texture and names what the hero
// holds on them. Categories and hand classes are the keys of the postflop
// tables in package strategy.
package classification

import (
	"fmt"
	"math/bits"

	"github.com/lox/pokerkelly/poker"
)

// BoardTexture represents the "wetness" of a board from dry to very wet.
type BoardTexture int

const (
	Dry BoardTexture = iota
	SemiWet
	Wet
	VeryWet
)

func (bt BoardTexture) String() string {
	switch bt {
	case Dry:
		return "dry"
	case SemiWet:
		return "semi-wet"
	case Wet:
		return "wet"
	case VeryWet:
		return "very wet"
	default:
		return "unknown"
	}
}

// SuitPattern describes how many suits a flop shows.
type SuitPattern int

const (
	Rainbow SuitPattern = iota
	TwoTone
	Monotone
)

func (s SuitPattern) String() string {
	switch s {
	case Rainbow:
		return "Rainbow"
	case TwoTone:
		return "TwoTone"
	case Monotone:
		return "Monotone"
	default:
		return "Unknown"
	}
}

// Height buckets a flop by its top card.
type Height int

const (
	Low     Height = iota // nine or lower
	Mid                   // ten or jack
	High                  // queen or king
	AceHigh
)

func (h Height) String() string {
	switch h {
	case Low:
		return "Low"
	case Mid:
		return "Mid"
	case High:
		return "High"
	case AceHigh:
		return "AceHigh"
	default:
		return "Unknown"
	}
}

// Flop is the structural description of a three-card flop.
type Flop struct {
	Suits     SuitPattern
	Height    Height
	Paired    bool // at least two cards share a rank
	Trips     bool // all three share a rank
	Connected bool // three distinct ranks within a five-rank window
	TopRank   uint8
	Texture   BoardTexture
}

// Category names the flop the way the postflop tables key it, for example
// "PairedRainbow", "LowConnectedTwoTone" or "AceHighMonotone". Paired flops
// are named by pairing and suits alone.
func (f Flop) Category() string {
	if f.Paired {
		return "Paired" + f.Suits.String()
	}
	name := f.Height.String()
	if f.Connected {
		name += "Connected"
	}
	return name + f.Suits.String()
}

// AnalyzeFlop describes a flop. It requires exactly three distinct cards.
func AnalyzeFlop(board []poker.Card) (Flop, error) {
	if len(board) != 3 {
		return Flop{}, fmt.Errorf("%w: a flop has 3 cards, got %d", poker.ErrInvalidInput, len(board))
	}
	h := poker.NewHand(board...)
	if h.CountCards() != 3 {
		return Flop{}, fmt.Errorf("%w: flop cards must be distinct", poker.ErrInvalidInput)
	}

	ranks := h.GetRankMask()
	distinct := bits.OnesCount16(ranks)
	top := uint8(bits.Len16(ranks) - 1)

	f := Flop{
		Paired:  distinct < 3,
		Trips:   distinct == 1,
		TopRank: top,
		Texture: AnalyzeBoardTexture(h),
	}

	switch maxSuitCount(h) {
	case 3:
		f.Suits = Monotone
	case 2:
		f.Suits = TwoTone
	default:
		f.Suits = Rainbow
	}

	switch {
	case top == poker.Ace:
		f.Height = AceHigh
	case top >= poker.Queen:
		f.Height = High
	case top >= poker.Ten:
		f.Height = Mid
	default:
		f.Height = Low
	}

	if distinct == 3 {
		f.Connected = withinWindow(ranks)
	}
	return f, nil
}

// FlopCategory is AnalyzeFlop(board).Category().
func FlopCategory(board []poker.Card) (string, error) {
	f, err := AnalyzeFlop(board)
	if err != nil {
		return "", err
	}
	return f.Category(), nil
}

// AnalyzeBoardTexture scores how coordinated a board of three or more cards
// is. Flush and straight potential dominate; pairs and high cards add a
// point each.
func AnalyzeBoardTexture(board poker.Hand) BoardTexture {
	if board.CountCards() < 3 {
		return Dry
	}

	var wetness int
	switch n := maxSuitCount(board); {
	case n >= 3:
		wetness += 4
	case n == 2:
		wetness++
	}

	switch run := longestRun(board.GetRankMask()); {
	case run >= 4:
		wetness += 4
	case run == 3:
		wetness += 3
	case run == 2:
		wetness++
	}

	if bits.OnesCount16(board.GetRankMask()) < board.CountCards() {
		wetness++
	}
	if bits.OnesCount16(board.GetRankMask()&0x1F00) >= 3 {
		wetness++
	}

	switch {
	case wetness <= 0:
		return Dry
	case wetness <= 3:
		return SemiWet
	case wetness <= 5:
		return Wet
	default:
		return VeryWet
	}
}

func maxSuitCount(h poker.Hand) int {
	var best int
	for suit := range uint8(4) {
		best = max(best, bits.OnesCount16(h.GetSuitMask(suit)))
	}
	return best
}

// withAceLow adds bit -1 for the ace so A-2-3 style runs are visible. The
// returned mask is shifted up by one.
func withAceLow(ranks uint16) uint16 {
	m := ranks << 1
	if ranks&(1<<poker.Ace) != 0 {
		m |= 1
	}
	return m
}

// longestRun returns the longest sequence of consecutive ranks, counting
// the ace as both high and low.
func longestRun(ranks uint16) int {
	m := withAceLow(ranks)
	var best int
	for run := 0; m != 0; run++ {
		m &= m << 1
		best = run + 1
	}
	return best
}

// withinWindow reports whether every rank fits inside some five-rank straight
// window, with the ace played high or low.
func withinWindow(ranks uint16) bool {
	high := ranks << 1
	masks := []uint16{high}
	if ranks&(1<<poker.Ace) != 0 {
		masks = append(masks, high&^(1<<13)|1)
	}
	for _, m := range masks {
		for low := 0; low <= 9; low++ {
			if m&^(uint16(0x1F)<<low) == 0 {
				return true
			}
		}
	}
	return false
}
