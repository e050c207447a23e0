package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/pokerkelly/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), DefaultConfig(InMemory), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig("history.db")
	assert.Equal(t, "history.db", cfg.Path)
	assert.Equal(t, 5*time.Second, cfg.BusyTimeout)
	assert.Equal(t, "WAL", cfg.JournalMode)
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()
	_, err := Open(context.Background(), Config{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSaveAndHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)

	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	state, err := session.New(100)
	require.NoError(t, err)

	var recs []session.Record
	for i, bet := range []float64{10, 5.5, 0} {
		var rec session.Record
		state, rec, err = state.Apply(bet, 0.6, now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		recs = append(recs, rec)
	}
	// Insert out of order to check the ordering of History.
	require.NoError(t, store.Save(ctx, recs[2]))
	require.NoError(t, store.Save(ctx, recs[0]))
	require.NoError(t, store.Save(ctx, recs[1]))

	got, err := store.History(ctx, "")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, recs, got)
	assert.InDelta(t, 84.5, got[2].Bankroll, 1e-9)
	assert.InDelta(t, 60.0, got[0].Equity, 1e-9)
}

func TestHistoryFiltersBySession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, store.SaveAll(ctx, []session.Record{
		{SessionID: "a", Hand: 1, Bet: 1, Equity: 50, Bankroll: 99, CreatedAt: now},
		{SessionID: "b", Hand: 1, Bet: 2, Equity: 40, Bankroll: 98, CreatedAt: now},
		{SessionID: "a", Hand: 2, Bet: 3, Equity: 30, Bankroll: 96, CreatedAt: now},
	}))

	a, err := store.History(ctx, "a")
	require.NoError(t, err)
	require.Len(t, a, 2)
	assert.Equal(t, 1, a[0].Hand)
	assert.Equal(t, 2, a[1].Hand)

	all, err := store.History(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Equal hand numbers keep insertion order.
	assert.Equal(t, "a", all[0].SessionID)
	assert.Equal(t, "b", all[1].SessionID)
}

func TestClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Save(ctx, session.Record{SessionID: "x", Hand: 1, CreatedAt: time.Now()}))
	require.NoError(t, store.Save(ctx, session.Record{SessionID: "x", Hand: 2, CreatedAt: time.Now()}))

	n, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := store.History(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReopenFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := Open(ctx, DefaultConfig(path), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, session.Record{SessionID: "s", Hand: 1, Bet: 4, Bankroll: 96, CreatedAt: time.Now()}))
	require.NoError(t, store.Close())

	store, err = Open(ctx, DefaultConfig(path), zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	got, err := store.History(ctx, "s")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 4.0, got[0].Bet, 1e-9)
}

func TestSaveHonoursContext(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, store.Save(ctx, session.Record{Hand: 1, CreatedAt: time.Now()}))
}

func TestReplayAcrossReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	state, err := session.New(100)
	require.NoError(t, err)
	apply := func(bet float64) {
		t.Helper()
		var rec session.Record
		state, rec, err = state.Apply(bet, 0.5, now)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, rec))
		now = now.Add(time.Minute)
	}
	apply(10)
	apply(10)
	apply(10)
	state, err = state.Reset(50)
	require.NoError(t, err)
	apply(1)
	apply(1)

	replay, err := store.Replay(ctx, state.ID)
	require.NoError(t, err)
	hands := make([]int, len(replay))
	for i, rec := range replay {
		hands[i] = rec.Hand
	}
	assert.Equal(t, []int{1, 2, 3, 1, 2}, hands)

	resumed, err := session.Resume(state.ID, replay)
	require.NoError(t, err)
	assert.InDelta(t, 48.0, resumed.Bankroll, 1e-9)
	assert.InDelta(t, 2.0, resumed.Pot, 1e-9)
	assert.Equal(t, 2, resumed.HandsPlayed)
	assert.Equal(t, state.History, resumed.History)

	// History keeps the hand-number view used for display.
	byHand, err := store.History(ctx, state.ID)
	require.NoError(t, err)
	require.Len(t, byHand, 5)
	assert.Equal(t, 1, byHand[1].Hand)
	assert.InDelta(t, 49.0, byHand[1].Bankroll, 1e-9)
}
