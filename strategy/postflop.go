package strategy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBoard is returned for a flop category with no table.
var ErrUnknownBoard = errors.New("unknown board")

// Street is a betting round.
type Street uint8

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

func (s Street) String() string {
	switch s {
	case Preflop:
		return "Preflop"
	case Flop:
		return "Flop"
	case Turn:
		return "Turn"
	case River:
		return "River"
	default:
		return fmt.Sprintf("Street(%d)", s)
	}
}

// StreetForBoard maps a board size (0, 3, 4 or 5 cards) to its street.
func StreetForBoard(n int) (Street, error) {
	switch n {
	case 0:
		return Preflop, nil
	case 3:
		return Flop, nil
	case 4:
		return Turn, nil
	case 5:
		return River, nil
	}
	return 0, fmt.Errorf("%w: a board of %d cards is not a street", ErrUnknownBoard, n)
}

// ParseStreet matches a street name case-insensitively.
func ParseStreet(s string) (Street, error) {
	for st := Preflop; st <= River; st++ {
		if strings.EqualFold(strings.TrimSpace(s), st.String()) {
			return st, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown street %q", ErrUnknownBoard, s)
}

var flopTable = map[string]map[string]Action{
	"PairedRainbow": {
		"Quads":    MustParseAction("Check"),
		"Trips":    MustParseAction("Bet 66%"),
		"Overpair": MustParseAction("Bet 50%"),
		"Air":      MustParseAction("Check"),
	},
	"LowConnectedTwoTone": {
		"TopPair":     MustParseAction("Bet 50%"),
		"Draw (OESD)": MustParseAction("Bet 33%"),
		"Air":         MustParseAction("Check/Fold"),
	},
	"AceHighMonotone": {
		"Flush":   MustParseAction("Bet 66%"),
		"TopPair": MustParseAction("Check"),
		"Air":     MustParseAction("Check"),
	},
}

var checkAction = MustParseAction("Check")

// Postflop returns the tabled action for a hand class on a board category.
// Only the flop is tabled: every other street checks. A hand class missing
// from a known board also checks.
func Postflop(street Street, boardCategory, handClass string) (Action, error) {
	if street != Flop {
		return checkAction, nil
	}
	actions, ok := flopTable[boardCategory]
	if !ok {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownBoard, boardCategory)
	}
	if a, ok := actions[handClass]; ok {
		return a, nil
	}
	return checkAction, nil
}

// TabledBoards lists the flop categories that have actions.
func TabledBoards() []string {
	return []string{"PairedRainbow", "LowConnectedTwoTone", "AceHighMonotone"}
}
