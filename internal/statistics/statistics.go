// Package statistics summarises recorded bets.
package statistics

import (
	"fmt"
	"math"
	"slices"

	"github.com/lox/pokerkelly/session"
)

// Summary tracks one run of hands: bet sizes, equities and how the
// bankroll moved.
type Summary struct {
	SessionID string
	Hands     int
	SumBet    float64
	SumBet2   float64   // sum of squares for variance
	Bets      []float64 // kept for median and percentiles
	SumEquity float64   // percent

	Start       float64 // bankroll before the first hand
	Final       float64
	Peak        float64
	MaxDrawdown float64 // largest fall from a peak
}

// Add incorporates one record. Records must arrive in the order they were
// saved. A record for hand 1 after the first starts a new run, since
// sessions restart numbering on reset; the bankroll figures then follow the
// new run while the bet figures keep accumulating.
func (s *Summary) Add(rec session.Record) {
	before := rec.Bankroll + rec.Bet
	if s.Hands == 0 || rec.Hand == 1 {
		if s.Hands == 0 {
			s.SessionID = rec.SessionID
			s.Start = before
		}
		s.Peak = before
	}

	s.Hands++
	s.SumBet += rec.Bet
	s.SumBet2 += rec.Bet * rec.Bet
	s.Bets = append(s.Bets, rec.Bet)
	s.SumEquity += rec.Equity

	s.Final = rec.Bankroll
	s.Peak = max(s.Peak, rec.Bankroll)
	s.MaxDrawdown = max(s.MaxDrawdown, s.Peak-rec.Bankroll)
}

// Summarize folds records into a single summary.
func Summarize(recs []session.Record) Summary {
	var s Summary
	for _, rec := range recs {
		s.Add(rec)
	}
	return s
}

// BySession summarises each session separately, in order of first
// appearance.
func BySession(recs []session.Record) []Summary {
	index := make(map[string]int)
	var out []Summary
	for _, rec := range recs {
		i, ok := index[rec.SessionID]
		if !ok {
			i = len(out)
			index[rec.SessionID] = i
			out = append(out, Summary{})
		}
		out[i].Add(rec)
	}
	return out
}

// Wagered is the total of all bets.
func (s *Summary) Wagered() float64 {
	return s.SumBet
}

// MeanBet returns the average bet.
func (s *Summary) MeanBet() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBet / float64(s.Hands)
}

// MeanEquity returns the average recorded equity, in percent.
func (s *Summary) MeanEquity() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumEquity / float64(s.Hands)
}

// Variance returns the sample variance of bet sizes
func (s *Summary) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.MeanBet()
	return max(0, (s.SumBet2-float64(s.Hands)*mean*mean)/float64(s.Hands-1))
}

// StdDev returns the sample standard deviation of bet sizes
func (s *Summary) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean bet
func (s *Summary) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean bet
func (s *Summary) ConfidenceInterval95() (float64, float64) {
	mean := s.MeanBet()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median bet
func (s *Summary) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the bet at the given percentile (0.0 to 1.0),
// interpolating between neighbours.
func (s *Summary) Percentile(p float64) float64 {
	if len(s.Bets) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Bets)
	slices.Sort(sorted)

	index := min(max(p, 0), 1) * float64(len(sorted)-1)
	lower := int(index)
	if lower+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[lower+1]*weight
}

// Validate checks that the accumulated figures agree with each other.
func (s *Summary) Validate() error {
	if s.Hands <= 0 {
		return fmt.Errorf("invalid hands count: %d", s.Hands)
	}
	if len(s.Bets) != s.Hands {
		return fmt.Errorf("bets length (%d) does not match hands count (%d)", len(s.Bets), s.Hands)
	}
	if s.MaxDrawdown < 0 || s.Final > s.Peak+1e-9 {
		return fmt.Errorf("bankroll figures inconsistent: peak %.2f, final %.2f, drawdown %.2f", s.Peak, s.Final, s.MaxDrawdown)
	}
	return nil
}
