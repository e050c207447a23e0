// Package kelly converts an equity estimate and pot odds into a stake using
// the Kelly criterion.
//
// The functions here trust their callers on one point: a recommended bet is
// not capped at anything but the bankroll it was computed from. Applying a
// bet (and refusing one larger than the live bankroll) is the caller's job.
package kelly

import (
	"fmt"
	"math"

	"github.com/lox/pokerkelly/poker"
)

// ErrInvalidInput is returned for equities outside [0, 1], non-positive pot
// or call sizes, and negative bankrolls. It is the same sentinel as
// poker.ErrInvalidInput.
var ErrInvalidInput = poker.ErrInvalidInput

// Mode names the Kelly scaling in use.
type Mode string

const (
	Full Mode = "Full Kelly"
	Half Mode = "Half Kelly"
)

// Recommendation is a full breakdown of one sizing decision.
type Recommendation struct {
	Equity   float64
	NetOdds  float64 // pot / call
	PotOdds  float64 // call / (pot + call), the breakeven equity
	Fraction float64 // bankroll fraction after clamping and scaling
	Bet      float64 // Fraction * bankroll, rounded to cents
	Mode     Mode
}

// Fold reports whether the edge is too small to bet.
func (r Recommendation) Fold() bool {
	return r.Fraction == 0
}

// Bet returns the suggested stake for equity given the pot, the amount to
// call and the bankroll. It returns exactly zero when the edge does not
// cover the pot odds.
func Bet(equity, pot, call, bankroll float64, halfKelly bool) (float64, error) {
	rec, err := Recommend(equity, pot, call, bankroll, halfKelly)
	if err != nil {
		return 0, err
	}
	return rec.Bet, nil
}

// Recommend computes the Kelly fraction
//
//	f* = (b*p - (1-p)) / b,  b = pot/call
//
// rounds it to four decimals, clamps it at zero, halves it for half-Kelly and
// sizes the bet from bankroll.
func Recommend(equity, pot, call, bankroll float64, halfKelly bool) (Recommendation, error) {
	if err := validate(equity, pot, call, bankroll); err != nil {
		return Recommendation{}, err
	}

	netOdds := pot / call
	f := (netOdds*equity - (1 - equity)) / netOdds
	f = math.Max(0, roundTo(f, 4))

	mode := Full
	if halfKelly {
		f /= 2
		mode = Half
	}

	return Recommendation{
		Equity:   equity,
		NetOdds:  netOdds,
		PotOdds:  call / (pot + call),
		Fraction: f,
		Bet:      roundTo(f*bankroll, 2),
		Mode:     mode,
	}, nil
}

// PotOdds returns the share of the final pot the caller contributes.
func PotOdds(pot, call float64) (float64, error) {
	if err := validateSizes(pot, call); err != nil {
		return 0, err
	}
	return call / (pot + call), nil
}

// BreakevenEquity is the equity at which a call neither wins nor loses in
// expectation; it equals PotOdds.
func BreakevenEquity(pot, call float64) (float64, error) {
	return PotOdds(pot, call)
}

func validate(equity, pot, call, bankroll float64) error {
	if math.IsNaN(equity) || equity < 0 || equity > 1 {
		return fmt.Errorf("%w: equity %v outside [0, 1]", ErrInvalidInput, equity)
	}
	if err := validateSizes(pot, call); err != nil {
		return err
	}
	if math.IsNaN(bankroll) || math.IsInf(bankroll, 0) || bankroll < 0 {
		return fmt.Errorf("%w: bankroll %v must be a non-negative amount", ErrInvalidInput, bankroll)
	}
	return nil
}

func validateSizes(pot, call float64) error {
	if math.IsNaN(pot) || math.IsInf(pot, 0) || pot <= 0 {
		return fmt.Errorf("%w: pot %v must be positive", ErrInvalidInput, pot)
	}
	if math.IsNaN(call) || math.IsInf(call, 0) || call <= 0 {
		return fmt.Errorf("%w: call %v must be positive", ErrInvalidInput, call)
	}
	return nil
}

// roundTo rounds half to even at the given number of decimals.
func roundTo(x float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.RoundToEven(x*scale) / scale
}
