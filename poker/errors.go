package poker

import "errors"

var (
	// ErrInvalidInput marks malformed, duplicate or overlapping cards and
	// other caller-side precondition violations.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDeckExhausted is returned when more cards are requested than remain.
	ErrDeckExhausted = errors.New("deck exhausted")
)
