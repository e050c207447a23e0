// Package session tracks a player's bankroll across hands.
//
// State is a plain value owned by the caller. Operations take a State and
// return a new one; the argument is never modified, so a front end can keep
// the previous state around for undo or comparison.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lox/pokerkelly/poker"
)

// ErrInsufficientBankroll is returned when a bet exceeds the bankroll.
var ErrInsufficientBankroll = errors.New("insufficient bankroll")

// DefaultBankroll is the bankroll a new session starts with.
const DefaultBankroll = 100.0

// StartingBankrolls are the bankrolls offered when resetting a session.
var StartingBankrolls = []float64{50, 100, 250, 500}

// Record is one applied bet.
type Record struct {
	SessionID string    `json:"session_id" toml:"session_id"`
	Hand      int       `json:"hand" toml:"hand"`
	Bet       float64   `json:"bet" toml:"bet"`
	Equity    float64   `json:"equity" toml:"equity"` // percent, 0-100
	Bankroll  float64   `json:"bankroll" toml:"bankroll"`
	CreatedAt time.Time `json:"created_at" toml:"created_at"`
}

// Sink persists records as bets are applied.
type Sink interface {
	Save(ctx context.Context, rec Record) error
}

// State is a session snapshot.
type State struct {
	ID          string
	Bankroll    float64
	Pot         float64
	HandsPlayed int
	History     []Record
}

// New starts a session with a fresh ID.
func New(bankroll float64) (State, error) {
	if err := validAmount("bankroll", bankroll); err != nil {
		return State{}, err
	}
	return State{ID: uuid.NewString(), Bankroll: bankroll}, nil
}

// Reset returns s with the bankroll replaced and the pot, hand count and
// history cleared. The session ID is kept.
func (s State) Reset(bankroll float64) (State, error) {
	if err := validAmount("bankroll", bankroll); err != nil {
		return s, err
	}
	return State{ID: s.ID, Bankroll: bankroll}, nil
}

// Apply moves bet from the bankroll into the pot and records the hand.
// equity is a fraction in [0, 1]; the record stores it as a percentage.
func (s State) Apply(bet, equity float64, now time.Time) (State, Record, error) {
	if err := validAmount("bet", bet); err != nil {
		return s, Record{}, err
	}
	if math.IsNaN(equity) || equity < 0 || equity > 1 {
		return s, Record{}, fmt.Errorf("%w: equity %v outside [0, 1]", poker.ErrInvalidInput, equity)
	}
	if bet > s.Bankroll {
		return s, Record{}, fmt.Errorf("%w: bet %.2f with bankroll %.2f", ErrInsufficientBankroll, bet, s.Bankroll)
	}

	next := State{
		ID:          s.ID,
		Bankroll:    roundCents(s.Bankroll - bet),
		Pot:         roundCents(s.Pot + bet),
		HandsPlayed: s.HandsPlayed + 1,
	}
	rec := Record{
		SessionID: s.ID,
		Hand:      next.HandsPlayed,
		Bet:       bet,
		Equity:    math.Round(equity*100*100) / 100,
		Bankroll:  next.Bankroll,
		CreatedAt: now.UTC(),
	}
	next.History = append(slices.Clone(s.History), rec)
	return next, rec, nil
}

// Resume rebuilds a session from its stored records in the order they were
// saved. A reset restarts hand numbering, so only the records since the
// last hand 1 count.
func Resume(id string, history []Record) (State, error) {
	if len(history) == 0 {
		return State{}, fmt.Errorf("%w: session %s has no history", poker.ErrInvalidInput, id)
	}
	start := 0
	for i, rec := range history {
		if rec.SessionID != id {
			return State{}, fmt.Errorf("%w: record %d belongs to session %s", poker.ErrInvalidInput, i, rec.SessionID)
		}
		if rec.Hand == 1 {
			start = i
		}
	}

	s := State{ID: id, History: slices.Clone(history[start:])}
	for _, rec := range s.History {
		s.Pot += rec.Bet
	}
	last := s.History[len(s.History)-1]
	s.Pot = roundCents(s.Pot)
	s.Bankroll = last.Bankroll
	s.HandsPlayed = last.Hand
	return s, nil
}

// Recent returns up to n of the latest records, newest first.
func (s State) Recent(n int) []Record {
	n = max(0, min(n, len(s.History)))
	out := make([]Record, 0, n)
	for i := len(s.History) - 1; i >= len(s.History)-n; i-- {
		out = append(out, s.History[i])
	}
	return out
}

func validAmount(what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %s %v must be a non-negative amount", poker.ErrInvalidInput, what, v)
	}
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
