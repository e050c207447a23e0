package client

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/pokerkelly/equity"
	"github.com/lox/pokerkelly/internal/advisor"
	"github.com/lox/pokerkelly/internal/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *server.Server) {
	t.Helper()
	est := equity.New(equity.WithSeed(9), equity.WithWorkers(2))
	adv := advisor.New(est, advisor.WithBudget(equity.Budget{BatchSize: 500}))
	srv := server.NewServer(adv, server.Settings{StartingBankroll: 100, HalfKelly: true, Trials: 1000}, zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())

	c := New(ts.URL, log.New(io.Discard))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))

	t.Cleanup(func() {
		_ = c.Close()
		srv.Stop()
		ts.Close()
	})
	return c, srv
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestEndpoint(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"http://localhost:8080":     "ws://localhost:8080/ws",
		"https://example.com/":      "wss://example.com/ws",
		"ws://127.0.0.1:9000/ws":    "ws://127.0.0.1:9000/ws",
		"wss://example.com/advisor": "wss://example.com/advisor",
	}
	for in, want := range tests {
		got, err := endpoint(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := endpoint("ftp://example.com")
	assert.Error(t, err)
	_, err = endpoint("://nope")
	assert.Error(t, err)
}

func TestAdviseApplyReset(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t)
	ctx := testContext(t)

	state, err := c.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100.0, state.Bankroll)
	assert.Zero(t, state.HandsPlayed)

	adv, err := c.Advise(ctx, server.AdviseData{Hero: "AhKh", Opponents: 1, Pot: 100, Call: 10, Profile: "Tight"})
	require.NoError(t, err)
	assert.Equal(t, "AKs", adv.Notation)
	assert.Equal(t, "Raise 2.5x", adv.Preflop)
	assert.Equal(t, 25.0, adv.Bet)
	assert.Equal(t, 1000, adv.Trials)

	state, err = c.Apply(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 75.0, state.Bankroll)
	assert.Equal(t, 1, state.HandsPlayed)
	require.NotNil(t, state.Last)
	assert.Equal(t, 25.0, state.Last.Bet)

	state, err = c.Reset(ctx, 250)
	require.NoError(t, err)
	assert.Equal(t, 250.0, state.Bankroll)
	assert.Zero(t, state.HandsPlayed)
}

func TestApplyBetOverride(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t)
	ctx := testContext(t)

	_, err := c.Advise(ctx, server.AdviseData{Hero: "7c2d", Opponents: 2, Pot: 50, Call: 10})
	require.NoError(t, err)

	bet := 12.34
	state, err := c.Apply(ctx, &bet)
	require.NoError(t, err)
	assert.Equal(t, 87.66, state.Bankroll)
}

func TestServerErrors(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t)
	ctx := testContext(t)

	_, err := c.Apply(ctx, nil)
	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "no_advice", serr.Code)

	_, err = c.Advise(ctx, server.AdviseData{Hero: "As", Opponents: 1, Pot: 10, Call: 1})
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "invalid_spot", serr.Code)

	_, err = c.Advise(ctx, server.AdviseData{Hero: "AsKd", Opponents: 1, Pot: 0, Call: 1})
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "invalid_input", serr.Code)
	assert.Contains(t, serr.Error(), "invalid_input: ")
}

func TestConcurrentCalls(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t)
	ctx := testContext(t)

	errs := make(chan error, 8)
	for range 8 {
		go func() {
			state, err := c.State(ctx)
			if err == nil && state.Bankroll != 100 {
				err = errors.New("unexpected bankroll")
			}
			errs <- err
		}()
	}
	for range 8 {
		require.NoError(t, <-errs)
	}
}

func TestServerGoneAway(t *testing.T) {
	t.Parallel()
	c, srv := newTestClient(t)
	ctx := testContext(t)
	_, err := c.State(ctx) // the server has registered the connection once it replies
	require.NoError(t, err)
	srv.Stop()

	_, err = c.State(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	require.NoError(t, c.Close())
}

func TestCloseBeforeConnect(t *testing.T) {
	t.Parallel()
	c := New("http://localhost:1", log.New(io.Discard))
	assert.NoError(t, c.Close())
}
