package strategy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/pokerkelly/poker"
)

// Kind is the type of a strategy action.
type Kind uint8

const (
	Fold Kind = iota
	Check
	CheckFold
	Call
	Bet
	Raise
	AllIn
)

var kindLabels = [...]string{
	Fold:      "Fold",
	Check:     "Check",
	CheckFold: "Check/Fold",
	Call:      "Call",
	Bet:       "Bet",
	Raise:     "Raise",
	AllIn:     "All-in",
}

func (k Kind) String() string {
	if int(k) < len(kindLabels) {
		return kindLabels[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Action is a parsed strategy label such as "Raise 2.5x" or "Bet 66%".
type Action struct {
	Kind Kind
	// Multiplier is the raise size as a multiple of the amount to call.
	Multiplier float64
	// PotFraction is the bet size as a fraction of the pot.
	PotFraction float64

	label string
}

// ParseAction parses a strategy label. Accepted forms are "Fold", "Check",
// "Check/Fold", "Call", "All-in", "Raise <n>x" and "Bet <n>%".
func ParseAction(label string) (Action, error) {
	s := strings.TrimSpace(label)
	for k, name := range kindLabels {
		if k == int(Bet) || k == int(Raise) {
			continue
		}
		if strings.EqualFold(s, name) {
			return Action{Kind: Kind(k), label: name}, nil
		}
	}

	verb, size, ok := strings.Cut(s, " ")
	if ok {
		size = strings.TrimSpace(size)
		switch {
		case strings.EqualFold(verb, "Raise") && strings.HasSuffix(size, "x"):
			m, err := strconv.ParseFloat(strings.TrimSuffix(size, "x"), 64)
			if err == nil && m > 0 {
				return Action{Kind: Raise, Multiplier: m, label: "Raise " + size}, nil
			}
		case strings.EqualFold(verb, "Bet") && strings.HasSuffix(size, "%"):
			pct, err := strconv.ParseFloat(strings.TrimSuffix(size, "%"), 64)
			if err == nil && pct > 0 {
				return Action{Kind: Bet, PotFraction: pct / 100, label: "Bet " + size}, nil
			}
		}
	}
	return Action{}, fmt.Errorf("%w: unrecognised action %q", poker.ErrInvalidInput, label)
}

// MustParseAction is ParseAction for labels compiled into the binary.
func MustParseAction(label string) Action {
	a, err := ParseAction(label)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the label the action was parsed from.
func (a Action) String() string {
	if a.label != "" {
		return a.label
	}
	switch a.Kind {
	case Raise:
		return "Raise " + strconv.FormatFloat(a.Multiplier, 'f', -1, 64) + "x"
	case Bet:
		return "Bet " + strconv.FormatFloat(a.PotFraction*100, 'f', -1, 64) + "%"
	}
	return a.Kind.String()
}

// Passive reports whether the action puts no chips in the pot.
func (a Action) Passive() bool {
	return a.Kind == Fold || a.Kind == Check || a.Kind == CheckFold
}
