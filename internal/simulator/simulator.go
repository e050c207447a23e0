// Package simulator deals complete showdowns between named players.
//
// A player's profile ("tight-aggressive", "maniac", ...) is carried for
// display only: every hand is dealt at random and goes straight to
// showdown.
package simulator

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/lox/pokerkelly/equity"
	"github.com/lox/pokerkelly/internal/randutil"
	"github.com/lox/pokerkelly/poker"
	"github.com/rs/zerolog"
)

// Profiles lists the player styles offered by front ends.
var Profiles = []string{"tight-aggressive", "loose-aggressive", "loose-passive", "maniac", "nit"}

// MaxPlayers is the most players a single deck can deal to with a full board.
const MaxPlayers = (52 - 5) / 2

// Player is a seat at the table.
type Player struct {
	Name    string
	Profile string
}

// Seat is one player's dealt hand and showdown score. Lower scores are
// stronger.
type Seat struct {
	Player
	Hole  [2]poker.Card
	Score int
}

// Hand is the outcome of one showdown.
type Hand struct {
	Board   [5]poker.Card
	Seats   []Seat
	Winners []string // every player sharing the best score, in seat order
}

// Showdown deals two cards to each player in order, then five board cards,
// and scores every hand with the native evaluator.
func Showdown(rng *rand.Rand, players []Player) (Hand, error) {
	return showdown(rng, players, equity.NativeEvaluator{})
}

func showdown(rng *rand.Rand, players []Player, ev equity.Evaluator) (Hand, error) {
	if err := validatePlayers(players); err != nil {
		return Hand{}, err
	}

	deck := poker.NewDeck(rng)
	hand := Hand{Seats: make([]Seat, len(players))}
	for i, p := range players {
		hand.Seats[i].Player = p
		if err := deck.DrawInto(hand.Seats[i].Hole[:]); err != nil {
			return Hand{}, err
		}
	}
	if err := deck.DrawInto(hand.Board[:]); err != nil {
		return Hand{}, err
	}

	best := int(^uint(0) >> 1)
	for i := range hand.Seats {
		s := &hand.Seats[i]
		s.Score = ev.Evaluate(hand.Board, s.Hole)
		best = min(best, s.Score)
	}
	for _, s := range hand.Seats {
		if s.Score == best {
			hand.Winners = append(hand.Winners, s.Name)
		}
	}
	return hand, nil
}

// Describe names the made hand of a seat, for example "Two Pair".
func (h Hand) Describe(seat int) (string, error) {
	if seat < 0 || seat >= len(h.Seats) {
		return "", fmt.Errorf("%w: seat %d out of range", poker.ErrInvalidInput, seat)
	}
	cards := poker.NewHand(h.Board[:]...) | poker.NewHand(h.Seats[seat].Hole[:]...)
	rank, err := poker.EvaluateCards(cards)
	if err != nil {
		return "", err
	}
	return rank.Type().String(), nil
}

func validatePlayers(players []Player) error {
	if len(players) < 2 || len(players) > MaxPlayers {
		return fmt.Errorf("%w: need 2-%d players, got %d", poker.ErrInvalidInput, MaxPlayers, len(players))
	}
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if p.Name == "" {
			return fmt.Errorf("%w: player name is required", poker.ErrInvalidInput)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate player %q", poker.ErrInvalidInput, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Config holds configuration for a run of showdowns.
type Config struct {
	Players   []Player
	Hands     int
	Seed      int64
	Evaluator equity.Evaluator // nil uses the native evaluator
	Logger    zerolog.Logger
}

// Simulator runs many showdowns.
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration.
func New(config Config) *Simulator {
	if config.Evaluator == nil {
		config.Evaluator = equity.NativeEvaluator{}
	}
	return &Simulator{config: config}
}

// Statistics tallies a run. Ties split the win between the players
// sharing the pot.
type Statistics struct {
	Hands   int
	Seed    int64
	Players []Player
	Wins    map[string]float64
	Ties    int // hands with more than one winner
}

// Share returns the fraction of hands the named player won.
func (s Statistics) Share(name string) float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.Wins[name] / float64(s.Hands)
}

// Run plays the configured number of hands. Hand i uses sub-stream i of the
// seed, so a run is reproducible and any single hand can be replayed with
// Replay.
func (s *Simulator) Run(ctx context.Context) (Statistics, error) {
	if s.config.Hands < 1 {
		return Statistics{}, fmt.Errorf("%w: hands must be at least 1, got %d", poker.ErrInvalidInput, s.config.Hands)
	}
	if err := validatePlayers(s.config.Players); err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		Seed:    s.config.Seed,
		Players: slices.Clone(s.config.Players),
		Wins:    make(map[string]float64, len(s.config.Players)),
	}
	for _, p := range s.config.Players {
		stats.Wins[p.Name] = 0
	}

	for i := range s.config.Hands {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return Statistics{}, fmt.Errorf("simulation stopped after %d hands: %w", i, err)
			}
		}
		hand, err := s.Replay(i)
		if err != nil {
			return Statistics{}, fmt.Errorf("hand %d: %w", i+1, err)
		}
		share := 1 / float64(len(hand.Winners))
		for _, w := range hand.Winners {
			stats.Wins[w] += share
		}
		if len(hand.Winners) > 1 {
			stats.Ties++
		}
		stats.Hands++
	}

	s.config.Logger.Debug().
		Int("hands", stats.Hands).
		Int("ties", stats.Ties).
		Int64("seed", stats.Seed).
		Msg("Simulation finished")
	return stats, nil
}

// Replay deals hand i of the run again.
func (s *Simulator) Replay(i int) (Hand, error) {
	return showdown(randutil.Derive(s.config.Seed, uint64(i)), s.config.Players, s.config.Evaluator)
}
