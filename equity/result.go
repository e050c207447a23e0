package equity

import "math"

// StopReason records why an estimation finished.
type StopReason string

const (
	StopTrials    StopReason = "trials"    // requested trial count reached
	StopPrecision StopReason = "precision" // standard error target reached
	StopDeadline  StopReason = "deadline"  // time budget spent
	StopCanceled  StopReason = "canceled"  // context cancelled after partial progress
)

// Result aggregates trial outcomes for the hero.
//
// Equity is a point estimate. Its sampling error shrinks with 1/sqrt(Trials),
// so small differences between two estimates are usually noise.
type Result struct {
	Wins   int
	Ties   int
	Losses int
	Trials int

	// TieCredit is the equity credited for tied trials. Under TieHalf it is
	// exactly Ties/2.
	TieCredit float64

	// Seed reproduces this result when passed back through WithSeed with
	// the same request and shard count.
	Seed int64

	// Truncated is set when a deadline or cancellation ended the run before
	// the requested trial count.
	Truncated bool
	Stopped   StopReason

	// sumSquares is the sum of squared per-trial outcomes.
	sumSquares float64
}

// Equity returns (wins + tie credit) / trials, in [0, 1].
func (r Result) Equity() float64 {
	if r.Trials == 0 {
		return 0.0
	}
	return (float64(r.Wins) + r.TieCredit) / float64(r.Trials)
}

// WinRate returns the fraction of trials the hero won outright.
func (r Result) WinRate() float64 {
	if r.Trials == 0 {
		return 0.0
	}
	return float64(r.Wins) / float64(r.Trials)
}

// TieRate returns the fraction of trials the hero tied for best.
func (r Result) TieRate() float64 {
	if r.Trials == 0 {
		return 0.0
	}
	return float64(r.Ties) / float64(r.Trials)
}

// LossRate returns the fraction of trials the hero lost.
func (r Result) LossRate() float64 {
	if r.Trials == 0 {
		return 0.0
	}
	return float64(r.Losses) / float64(r.Trials)
}

// Variance returns the sample variance of per-trial outcomes.
func (r Result) Variance() float64 {
	if r.Trials < 2 {
		return 0
	}
	n := float64(r.Trials)
	mean := r.Equity()
	v := (r.sumSquares - n*mean*mean) / (n - 1)
	return math.Max(0, v)
}

// StdError returns the standard error of the equity estimate.
func (r Result) StdError() float64 {
	if r.Trials == 0 {
		return 0
	}
	return math.Sqrt(r.Variance() / float64(r.Trials))
}

// ConfidenceInterval returns the 95% confidence interval for equity.
func (r Result) ConfidenceInterval() (lower, upper float64) {
	if r.Trials == 0 {
		return 0.0, 0.0
	}
	equity := r.Equity()
	margin := 1.96 * r.StdError()
	return math.Max(0.0, equity-margin), math.Min(1.0, equity+margin)
}

// add folds other's counts into r. Seed and stop metadata are left alone.
func (r *Result) add(other Result) {
	r.Wins += other.Wins
	r.Ties += other.Ties
	r.Losses += other.Losses
	r.Trials += other.Trials
	r.TieCredit += other.TieCredit
	r.sumSquares += other.sumSquares
}
