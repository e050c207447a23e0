// Package equity estimates a hero's share of the pot against anonymous
// opponents by Monte Carlo simulation.
//
// Each trial deals two cards to every opponent and completes the board from
// the cards nobody has seen. Trials are split into a fixed number of shards
// with their own random sub-streams, so a seed reproduces the same result no
// matter how many goroutines run them.
package equity

import (
	"context"
	"fmt"
	"runtime"

	"github.com/lox/pokerkelly/internal/randutil"
	"github.com/lox/pokerkelly/poker"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// TiePolicy decides how much equity a tied trial is worth.
type TiePolicy int

const (
	// TieHalf credits 0.5 for any tie, whatever the number of players tied.
	TieHalf TiePolicy = iota
	// TieSplit credits 1/k when k players share the best hand.
	TieSplit
)

func (p TiePolicy) String() string {
	switch p {
	case TieHalf:
		return "half"
	case TieSplit:
		return "split"
	default:
		return fmt.Sprintf("TiePolicy(%d)", int(p))
	}
}

// ParseTiePolicy maps "half" or "split" to a TiePolicy.
func ParseTiePolicy(s string) (TiePolicy, error) {
	switch s {
	case "half", "":
		return TieHalf, nil
	case "split":
		return TieSplit, nil
	}
	return TieHalf, fmt.Errorf("%w: unknown tie policy %q", poker.ErrInvalidInput, s)
}

const (
	DefaultShards = 8

	// ctxCheckInterval is how many trials a shard runs between context checks.
	ctxCheckInterval = 256
)

// Request describes one estimation.
type Request struct {
	Hero      [2]poker.Card
	Board     []poker.Card // 0-5 known community cards
	Opponents int
	Trials    int

	// OpponentRanges are descriptive labels such as "Tight". They are
	// validated and logged but opponents are always dealt uniformly at random.
	OpponentRanges []string
}

// Estimator runs equity simulations. It is safe for concurrent use.
type Estimator struct {
	evaluator Evaluator
	shards    int
	workers   int
	tiePolicy TiePolicy
	seed      *int64
	logger    zerolog.Logger
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithSeed fixes the seed used by Estimate. Without it each call draws a
// fresh seed, reported back in Result.Seed.
func WithSeed(seed int64) Option {
	return func(e *Estimator) {
		e.seed = &seed
	}
}

// WithShards sets how many independent random sub-streams trials are split
// across. Values below one are ignored.
func WithShards(n int) Option {
	return func(e *Estimator) {
		if n > 0 {
			e.shards = n
		}
	}
}

// WithWorkers limits how many shards run at once. Values below one are ignored.
func WithWorkers(n int) Option {
	return func(e *Estimator) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithTiePolicy selects how ties are credited.
func WithTiePolicy(p TiePolicy) Option {
	return func(e *Estimator) {
		e.tiePolicy = p
	}
}

// WithEvaluator swaps the hand evaluator.
func WithEvaluator(ev Evaluator) Option {
	return func(e *Estimator) {
		if ev != nil {
			e.evaluator = ev
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Estimator) {
		e.logger = logger
	}
}

// New creates an Estimator using the native evaluator, DefaultShards shards
// and one worker per CPU.
func New(opts ...Option) *Estimator {
	e := &Estimator{
		evaluator: NativeEvaluator{},
		shards:    DefaultShards,
		workers:   runtime.GOMAXPROCS(0),
		tiePolicy: TieHalf,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EstimateEquity runs a single estimation with default settings.
func EstimateEquity(ctx context.Context, hero [2]poker.Card, board []poker.Card, opponents, trials int, opts ...Option) (float64, error) {
	res, err := New(opts...).Estimate(ctx, Request{
		Hero:      hero,
		Board:     board,
		Opponents: opponents,
		Trials:    trials,
	})
	if err != nil {
		return 0, err
	}
	return res.Equity(), nil
}

// Estimate runs req.Trials trials and returns the aggregated outcome.
func (e *Estimator) Estimate(ctx context.Context, req Request) (Result, error) {
	return e.estimate(ctx, req, randutil.Seed(e.seed))
}

func (e *Estimator) estimate(ctx context.Context, req Request, seed int64) (Result, error) {
	known, err := validate(req)
	if err != nil {
		return Result{}, err
	}
	if req.Trials < 1 {
		return Result{}, fmt.Errorf("%w: trials must be at least 1, got %d", poker.ErrInvalidInput, req.Trials)
	}

	shards := min(e.shards, req.Trials)
	perShard := req.Trials / shards
	remainder := req.Trials % shards

	e.logger.Debug().
		Int64("seed", seed).
		Int("trials", req.Trials).
		Int("opponents", req.Opponents).
		Int("board", len(req.Board)).
		Int("shards", shards).
		Strs("ranges", req.OpponentRanges).
		Str("ties", e.tiePolicy.String()).
		Msg("Estimating equity")

	results := make([]Result, shards)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, e.workers))
	for i := 0; i < shards; i++ {
		trials := perShard
		if i < remainder {
			trials++
		}
		g.Go(func() error {
			rng := randutil.Derive(seed, uint64(i))
			res, err := e.runShard(gctx, req, known, poker.NewDeck(rng), trials)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	total := Result{Seed: seed, Stopped: StopTrials}
	for _, r := range results {
		total.add(r)
	}

	e.logger.Debug().
		Int64("seed", seed).
		Int("trials", total.Trials).
		Float64("equity", total.Equity()).
		Float64("stderr", total.StdError()).
		Msg("Equity estimated")

	return total, nil
}

// runShard plays trials on deck, which already holds every card. Known cards
// are removed here so the deck's rng is owned by this shard alone.
func (e *Estimator) runShard(ctx context.Context, req Request, known []poker.Card, deck *poker.Deck, trials int) (Result, error) {
	var res Result
	for _, c := range known {
		if err := deck.Remove(c); err != nil {
			return res, err
		}
	}
	deck.Seal()

	var board [5]poker.Card
	copy(board[:], req.Board)
	missing := board[len(req.Board):]
	opponents := make([][2]poker.Card, req.Opponents)

	for t := 0; t < trials; t++ {
		if t%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, fmt.Errorf("estimating equity: %w", err)
			}
		}

		deck.Reset()
		for o := range opponents {
			if err := deck.DrawInto(opponents[o][:]); err != nil {
				return res, err
			}
		}
		if err := deck.DrawInto(missing); err != nil {
			return res, err
		}

		hero := e.evaluator.Evaluate(board, req.Hero)
		best, tied := hero, 1
		for o := range opponents {
			score := e.evaluator.Evaluate(board, opponents[o])
			switch {
			case score < best:
				best, tied = score, 1
			case score == best:
				tied++
			}
		}

		res.Trials++
		switch {
		case hero > best:
			res.Losses++
		case tied == 1:
			res.Wins++
			res.sumSquares++
		default:
			res.Ties++
			credit := e.tieCredit(tied)
			res.TieCredit += credit
			res.sumSquares += credit * credit
		}
	}
	return res, nil
}

func (e *Estimator) tieCredit(tied int) float64 {
	if e.tiePolicy == TieSplit {
		return 1 / float64(tied)
	}
	return 0.5
}

// validate checks the request's cards and returns every known card, hero
// first, in the order they are removed from the deck.
func validate(req Request) ([]poker.Card, error) {
	if req.Opponents < 1 {
		return nil, fmt.Errorf("%w: need at least one opponent, got %d", poker.ErrInvalidInput, req.Opponents)
	}
	if len(req.Board) > 5 {
		return nil, fmt.Errorf("%w: board has %d cards, at most 5 allowed", poker.ErrInvalidInput, len(req.Board))
	}
	if n := len(req.OpponentRanges); n != 0 && n != req.Opponents {
		return nil, fmt.Errorf("%w: %d range labels for %d opponents", poker.ErrInvalidInput, n, req.Opponents)
	}

	known := make([]poker.Card, 0, 2+len(req.Board))
	known = append(known, req.Hero[:]...)
	known = append(known, req.Board...)

	var seen poker.Hand
	for _, c := range known {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: invalid card value %#x", poker.ErrInvalidInput, uint64(c))
		}
		if seen.HasCard(c) {
			return nil, fmt.Errorf("%w: card %s appears more than once", poker.ErrInvalidInput, c)
		}
		seen.AddCard(c)
	}

	need := 2*req.Opponents + 5 - len(req.Board)
	if remaining := 52 - len(known); need > remaining {
		return nil, fmt.Errorf("%w: %d opponents need %d cards, %d remain", poker.ErrDeckExhausted, req.Opponents, need, remaining)
	}
	return known, nil
}
