package simulator

import (
	"context"
	"testing"

	"github.com/lox/pokerkelly/internal/randutil"
	"github.com/lox/pokerkelly/poker"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table() []Player {
	return []Player{
		{Name: "Hero", Profile: "tight-aggressive"},
		{Name: "Villain1", Profile: "loose-aggressive"},
		{Name: "Villain2", Profile: "loose-passive"},
		{Name: "Villain3", Profile: "maniac"},
	}
}

type constEvaluator struct{}

func (constEvaluator) Evaluate([5]poker.Card, [2]poker.Card) int { return 7 }

func TestShowdown(t *testing.T) {
	t.Parallel()
	hand, err := Showdown(randutil.New(42), table())
	require.NoError(t, err)
	require.Len(t, hand.Seats, 4)

	var all poker.Hand
	for _, c := range hand.Board {
		all.AddCard(c)
	}
	best := hand.Seats[0].Score
	for i, s := range hand.Seats {
		assert.Equal(t, table()[i], s.Player, "seats keep player order")
		all.AddCard(s.Hole[0])
		all.AddCard(s.Hole[1])

		cards := poker.NewHand(hand.Board[:]...) | poker.NewHand(s.Hole[:]...)
		assert.Equal(t, int(poker.Evaluate(cards)), s.Score)
		best = min(best, s.Score)
	}
	assert.Equal(t, 13, all.CountCards(), "every dealt card is distinct")

	require.NotEmpty(t, hand.Winners)
	for _, s := range hand.Seats {
		if s.Score == best {
			assert.Contains(t, hand.Winners, s.Name)
		} else {
			assert.NotContains(t, hand.Winners, s.Name)
		}
	}

	again, err := Showdown(randutil.New(42), table())
	require.NoError(t, err)
	assert.Equal(t, hand, again)
}

func TestShowdownDealOrder(t *testing.T) {
	t.Parallel()
	rng := randutil.New(3)
	hand, err := Showdown(rng, table()[:2])
	require.NoError(t, err)

	deck := poker.NewDeck(randutil.New(3))
	dealt, err := deck.Draw(9)
	require.NoError(t, err)
	assert.Equal(t, [2]poker.Card{dealt[0], dealt[1]}, hand.Seats[0].Hole)
	assert.Equal(t, [2]poker.Card{dealt[2], dealt[3]}, hand.Seats[1].Hole)
	assert.Equal(t, [5]poker.Card(dealt[4:9]), hand.Board)
}

func TestShowdownRejectsBadTables(t *testing.T) {
	t.Parallel()
	rng := randutil.New(1)
	tests := map[string][]Player{
		"one player": {{Name: "Hero"}},
		"unnamed":    {{Name: "Hero"}, {Name: ""}},
		"duplicate":  {{Name: "Hero"}, {Name: "Hero"}},
		"too many":   make([]Player, MaxPlayers+1),
	}
	for name, players := range tests {
		_, err := Showdown(rng, players)
		assert.ErrorIs(t, err, poker.ErrInvalidInput, name)
	}
}

func TestMaxPlayers(t *testing.T) {
	t.Parallel()
	players := make([]Player, MaxPlayers)
	for i := range players {
		players[i] = Player{Name: string(rune('A' + i))}
	}
	hand, err := Showdown(randutil.New(9), players)
	require.NoError(t, err)
	assert.Len(t, hand.Seats, MaxPlayers)
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	hand, err := Showdown(randutil.New(5), table())
	require.NoError(t, err)
	for i := range hand.Seats {
		name, err := hand.Describe(i)
		require.NoError(t, err)
		assert.NotEmpty(t, name)
	}
	_, err = hand.Describe(4)
	assert.ErrorIs(t, err, poker.ErrInvalidInput)
}

func TestRun(t *testing.T) {
	t.Parallel()
	sim := New(Config{Players: table(), Hands: 2000, Seed: 77, Logger: zerolog.Nop()})
	stats, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2000, stats.Hands)
	assert.Equal(t, int64(77), stats.Seed)
	var total float64
	for _, p := range table() {
		total += stats.Wins[p.Name]
		// Four random hands: each wins about a quarter of the time.
		assert.InDelta(t, 0.25, stats.Share(p.Name), 0.05, p.Name)
	}
	assert.InDelta(t, 2000.0, total, 1e-6)

	again, err := New(Config{Players: table(), Hands: 2000, Seed: 77}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats, again)

	first, err := sim.Replay(0)
	require.NoError(t, err)
	replayed, err := sim.Replay(0)
	require.NoError(t, err)
	assert.Equal(t, first, replayed)
}

func TestRunSplitsTies(t *testing.T) {
	t.Parallel()
	stats, err := New(Config{Players: table()[:2], Hands: 10, Evaluator: constEvaluator{}}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Ties)
	assert.InDelta(t, 5.0, stats.Wins["Hero"], 1e-9)
	assert.InDelta(t, 0.5, stats.Share("Villain1"), 1e-9)
}

func TestRunErrors(t *testing.T) {
	t.Parallel()
	_, err := New(Config{Players: table(), Hands: 0}).Run(context.Background())
	assert.ErrorIs(t, err, poker.ErrInvalidInput)

	_, err = New(Config{Players: table()[:1], Hands: 5}).Run(context.Background())
	assert.ErrorIs(t, err, poker.ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(Config{Players: table(), Hands: 5}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Zero(t, Statistics{}.Share("Hero"))
}
