// Package evaluator provides the hand evaluators the equity estimator can be
// configured with, selected by name.
package evaluator

import (
	"fmt"
	"sort"

	"github.com/lox/pokerkelly/equity"
	"github.com/lox/pokerkelly/poker"
	hankin "github.com/paulhankin/poker"
)

const (
	Native = "native"
	Hankin = "hankin"
)

var registry = map[string]func() equity.Evaluator{
	Native: func() equity.Evaluator { return equity.NativeEvaluator{} },
	Hankin: func() equity.Evaluator { return NewHankin() },
}

// ByName returns the evaluator registered under name. An empty name selects
// the native evaluator.
func ByName(name string) (equity.Evaluator, error) {
	if name == "" {
		name = Native
	}
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown evaluator %q (have %v)", poker.ErrInvalidInput, name, Names())
	}
	return ctor(), nil
}

// Names lists the registered evaluators.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HankinEvaluator scores hands with github.com/paulhankin/poker's 7-card
// table evaluator. That library scores higher as stronger, so scores are
// negated.
type HankinEvaluator struct {
	cards [52]hankin.Card
}

// NewHankin builds the card translation table.
func NewHankin() *HankinEvaluator {
	h := &HankinEvaluator{}
	suits := [4]hankin.Suit{hankin.Club, hankin.Diamond, hankin.Heart, hankin.Spade}
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			c := poker.NewCard(rank, suit)
			hc, err := hankin.MakeCard(suits[suit], hankinRank(rank))
			if err != nil {
				panic(fmt.Sprintf("translating %s: %v", c, err))
			}
			h.cards[c.Index()] = hc
		}
	}
	return h
}

// hankinRank maps rank 0 (deuce) .. 12 (ace) onto Ace=1, 2..13=King.
func hankinRank(rank uint8) hankin.Rank {
	if rank == poker.Ace {
		return hankin.Rank(1)
	}
	return hankin.Rank(rank + 2)
}

// Evaluate implements equity.Evaluator.
func (h *HankinEvaluator) Evaluate(board [5]poker.Card, hole [2]poker.Card) int {
	var cards [7]hankin.Card
	for i, c := range board {
		cards[i] = h.cards[c.Index()]
	}
	cards[5] = h.cards[hole[0].Index()]
	cards[6] = h.cards[hole[1].Index()]
	return -int(hankin.Eval7(&cards))
}

// Describe names the best hand in hankin's words, e.g. "pair of kings".
func (h *HankinEvaluator) Describe(board [5]poker.Card, hole [2]poker.Card) (string, error) {
	cards := make([]hankin.Card, 0, 7)
	for _, c := range board {
		cards = append(cards, h.cards[c.Index()])
	}
	cards = append(cards, h.cards[hole[0].Index()], h.cards[hole[1].Index()])
	return hankin.Describe(cards)
}
