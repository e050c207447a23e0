package equity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/pokerkelly/internal/randutil"
	"github.com/lox/pokerkelly/poker"
)

const (
	DefaultBatchSize = 1000

	// batchStream offsets batch seed derivation away from the shard streams.
	batchStream = 1 << 32
)

// Budget bounds an estimation that runs inside an interactive request.
// Trials run in batches; the run stops at the first of MaxTrials, Timeout
// or TargetStdErr. The first batch always runs to completion unless the
// context is cancelled.
type Budget struct {
	MaxTrials    int           // upper bound on Request.Trials, or the count when Request.Trials is zero; zero means none
	BatchSize    int           // trials per batch; zero uses DefaultBatchSize
	Timeout      time.Duration // wall-clock limit measured on the Clock; zero means none
	TargetStdErr float64       // stop once StdError is at or below this; zero means none
	MinTrials    int           // precision stopping only applies after this many trials
	Clock        quartz.Clock  // nil uses the real clock
}

// EstimateWithBudget runs deterministic batches under b. Batch k uses a seed
// derived from the estimator seed, so a given seed and budget that stops on
// trial count or precision always produces the same result.
//
// A deadline or cancellation after at least one batch returns the partial
// result with Truncated set. Cancellation before any batch completes
// returns the context error.
func (e *Estimator) EstimateWithBudget(ctx context.Context, req Request, b Budget) (Result, error) {
	if b.MaxTrials < 0 {
		return Result{}, fmt.Errorf("%w: trial cap must not be negative, got %d", poker.ErrInvalidInput, b.MaxTrials)
	}
	maxTrials := req.Trials
	switch {
	case maxTrials == 0:
		maxTrials = b.MaxTrials
	case b.MaxTrials > 0:
		maxTrials = min(maxTrials, b.MaxTrials)
	}
	if maxTrials < 1 {
		return Result{}, fmt.Errorf("%w: trial cap must be at least 1, got %d", poker.ErrInvalidInput, maxTrials)
	}
	if b.BatchSize < 0 || b.MinTrials < 0 || b.Timeout < 0 || b.TargetStdErr < 0 {
		return Result{}, fmt.Errorf("%w: budget limits must not be negative", poker.ErrInvalidInput)
	}
	batchSize := b.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	clock := b.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}

	seed := randutil.Seed(e.seed)
	var deadline time.Time
	if b.Timeout > 0 {
		deadline = clock.Now().Add(b.Timeout)
	}

	total := Result{Seed: seed}
	for batch := uint64(0); total.Trials < maxTrials; batch++ {
		if batch > 0 && !deadline.IsZero() && !clock.Now().Before(deadline) {
			total.Stopped = StopDeadline
			total.Truncated = true
			break
		}

		batchReq := req
		batchReq.Trials = min(batchSize, maxTrials-total.Trials)
		batchSeed := randutil.Derive(seed, batchStream+batch).Int64()

		res, err := e.estimate(ctx, batchReq, batchSeed)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) && total.Trials > 0 {
				total.Stopped = StopCanceled
				total.Truncated = true
				break
			}
			return Result{}, err
		}
		total.add(res)

		if b.TargetStdErr > 0 && total.Trials >= b.MinTrials && total.StdError() <= b.TargetStdErr {
			total.Stopped = StopPrecision
			break
		}
	}
	if total.Stopped == "" {
		total.Stopped = StopTrials
	}

	e.logger.Debug().
		Int64("seed", seed).
		Int("trials", total.Trials).
		Str("stopped", string(total.Stopped)).
		Bool("truncated", total.Truncated).
		Msg("Budgeted estimate finished")

	return total, nil
}
