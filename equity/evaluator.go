package equity

import "github.com/lox/pokerkelly/poker"

// Evaluator scores a two-card holding against a complete five-card board.
// Scores form a total order where lower is stronger and equal scores tie.
// Implementations must be pure and safe for concurrent use.
type Evaluator interface {
	Evaluate(board [5]poker.Card, hole [2]poker.Card) int
}

// NativeEvaluator scores hands with the bitmask evaluator in package poker.
type NativeEvaluator struct{}

// Evaluate implements Evaluator.
func (NativeEvaluator) Evaluate(board [5]poker.Card, hole [2]poker.Card) int {
	h := poker.Hand(hole[0]) | poker.Hand(hole[1])
	for _, c := range board {
		h |= poker.Hand(c)
	}
	return int(poker.Evaluate(h))
}
