// Package advisor turns a spot (hero cards, board, opponents, pot and call)
// into a bet recommendation and applies chosen bets to a session.
//
// The equity and kelly packages only compute. This is where the policy
// lives: which strategy chart overrides the Kelly stake, and which sink
// applied bets are written to.
package advisor

import (
	"context"
	"fmt"
	"math"

	"github.com/coder/quartz"
	"github.com/lox/pokerkelly/classification"
	"github.com/lox/pokerkelly/equity"
	"github.com/lox/pokerkelly/kelly"
	"github.com/lox/pokerkelly/poker"
	"github.com/lox/pokerkelly/session"
	"github.com/lox/pokerkelly/strategy"
	"github.com/rs/zerolog"
)

// DefaultTrials is used when a spot does not name a trial count.
const DefaultTrials = 10_000

// Spot is one decision point.
type Spot struct {
	Hero      [2]poker.Card
	Board     []poker.Card
	Opponents int
	Trials    int // zero uses DefaultTrials
	Pot       float64
	Call      float64
	HalfKelly bool

	// Profile names a preflop chart ("Tight", "GTO", ...). Empty means
	// the Kelly stake stands on its own.
	Profile string

	OpponentRanges []string
}

// Advice is the outcome of Advise.
type Advice struct {
	Result equity.Result
	Kelly  kelly.Recommendation

	// Bet is the stake to apply: the Kelly bet, or the chart's sizing when
	// a preflop chart overrode it.
	Bet        float64
	Overridden bool

	Street   strategy.Street
	Notation string

	// Preflop is the chart action, set when a profile was selected and
	// the board is empty.
	Preflop *strategy.Action

	// BoardCategory, HandClass and Postflop are filled on the flop.
	BoardCategory string
	HandClass     string
	Postflop      *strategy.Action
}

// Equity is shorthand for Result.Equity().
func (a Advice) Equity() float64 {
	return a.Result.Equity()
}

// Advisor combines an estimator, a strategy catalog and an optional sink.
// It holds no session state; callers pass the session they own.
type Advisor struct {
	estimator *equity.Estimator
	budget    equity.Budget
	catalog   *strategy.Catalog
	sink      session.Sink
	clock     quartz.Clock
	logger    zerolog.Logger
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithBudget bounds each estimate. MaxTrials caps Spot.Trials (or
// DefaultTrials) and never raises it.
func WithBudget(b equity.Budget) Option {
	return func(a *Advisor) { a.budget = b }
}

// WithCatalog sets the preflop charts. The default has the built-in
// profiles only.
func WithCatalog(c *strategy.Catalog) Option {
	return func(a *Advisor) {
		if c != nil {
			a.catalog = c
		}
	}
}

// WithSink persists every applied record.
func WithSink(s session.Sink) Option {
	return func(a *Advisor) { a.sink = s }
}

// WithClock sets the clock used for record timestamps and, unless the
// budget names its own, estimation deadlines.
func WithClock(c quartz.Clock) Option {
	return func(a *Advisor) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Advisor) { a.logger = logger }
}

// New returns an Advisor around est.
func New(est *equity.Estimator, opts ...Option) *Advisor {
	a := &Advisor{
		estimator: est,
		catalog:   strategy.NewCatalog(nil),
		clock:     quartz.NewReal(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.budget.Clock == nil {
		a.budget.Clock = a.clock
	}
	return a
}

// Catalog returns the charts the advisor resolves profiles against.
func (a *Advisor) Catalog() *strategy.Catalog {
	return a.catalog
}

// Advise estimates equity for spot and sizes a bet against the session's
// bankroll. The session is not modified.
func (a *Advisor) Advise(ctx context.Context, s session.State, spot Spot) (Advice, error) {
	street, err := strategy.StreetForBoard(len(spot.Board))
	if err != nil {
		return Advice{}, fmt.Errorf("%w: %w", poker.ErrInvalidInput, err)
	}

	var chart *strategy.Chart
	if spot.Profile != "" {
		p, err := strategy.ParseProfile(spot.Profile)
		if err != nil {
			return Advice{}, err
		}
		if chart, err = a.catalog.Chart(p); err != nil {
			return Advice{}, err
		}
	}

	trials := spot.Trials
	if trials == 0 {
		trials = DefaultTrials
	}
	res, err := a.estimator.EstimateWithBudget(ctx, equity.Request{
		Hero:           spot.Hero,
		Board:          spot.Board,
		Opponents:      spot.Opponents,
		Trials:         trials,
		OpponentRanges: spot.OpponentRanges,
	}, a.budget)
	if err != nil {
		return Advice{}, fmt.Errorf("failed to estimate equity: %w", err)
	}

	rec, err := kelly.Recommend(res.Equity(), spot.Pot, spot.Call, s.Bankroll, spot.HalfKelly)
	if err != nil {
		return Advice{}, err
	}

	adv := Advice{
		Result: res,
		Kelly:  rec,
		Bet:    rec.Bet,
		Street: street,
	}
	if adv.Notation, err = poker.Notation(spot.Hero[0], spot.Hero[1]); err != nil {
		return Advice{}, err
	}

	if chart != nil && street == strategy.Preflop {
		action := chart.Action(adv.Notation)
		adv.Preflop = &action
		adv.Bet = chartBet(action, spot.Pot, spot.Call, s.Bankroll)
		adv.Overridden = true
	}

	if street == strategy.Flop {
		if err := a.describeFlop(&adv, spot); err != nil {
			return Advice{}, err
		}
	}

	a.logger.Debug().
		Str("hand", adv.Notation).
		Str("street", street.String()).
		Float64("equity", res.Equity()).
		Float64("kelly_bet", rec.Bet).
		Float64("bet", adv.Bet).
		Bool("overridden", adv.Overridden).
		Msg("Advice")

	return adv, nil
}

// describeFlop fills the board category, hand class and, for tabled
// boards, the postflop action. Untabled boards leave Postflop nil.
func (a *Advisor) describeFlop(adv *Advice, spot Spot) error {
	category, err := classification.FlopCategory(spot.Board)
	if err != nil {
		return err
	}
	class, err := classification.HandClass(spot.Hero, spot.Board)
	if err != nil {
		return err
	}
	adv.BoardCategory = category
	adv.HandClass = class

	action, err := strategy.Postflop(strategy.Flop, category, class)
	if err != nil {
		a.logger.Debug().Str("board", category).Msg("No postflop table for board")
		return nil
	}
	adv.Postflop = &action
	return nil
}

// chartBet sizes a chart action. Raises are multiples of the call, bets are
// fractions of the pot, and nothing exceeds the bankroll.
func chartBet(action strategy.Action, pot, call, bankroll float64) float64 {
	var bet float64
	switch action.Kind {
	case strategy.AllIn:
		bet = bankroll
	case strategy.Raise:
		bet = action.Multiplier * call
	case strategy.Call:
		bet = call
	case strategy.Bet:
		bet = action.PotFraction * pot
	}
	return math.Round(min(bet, bankroll)*100) / 100
}

// Apply moves adv.Bet from the session's bankroll into its pot and writes
// the record to the sink. On any error the original state is returned.
func (a *Advisor) Apply(ctx context.Context, s session.State, adv Advice) (session.State, session.Record, error) {
	return a.ApplyBet(ctx, s, adv.Bet, adv.Equity())
}

// ApplyBet is Apply for a stake the caller chose.
func (a *Advisor) ApplyBet(ctx context.Context, s session.State, bet, eq float64) (session.State, session.Record, error) {
	next, rec, err := s.Apply(bet, eq, a.clock.Now())
	if err != nil {
		return s, session.Record{}, err
	}
	if a.sink != nil {
		if err := a.sink.Save(ctx, rec); err != nil {
			return s, session.Record{}, fmt.Errorf("failed to persist hand %d: %w", rec.Hand, err)
		}
	}
	a.logger.Debug().
		Str("session", rec.SessionID).
		Int("hand", rec.Hand).
		Float64("bet", rec.Bet).
		Float64("bankroll", rec.Bankroll).
		Msg("Bet applied")
	return next, rec, nil
}
