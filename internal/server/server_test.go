package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lox/pokerkelly/equity"
	"github.com/lox/pokerkelly/internal/advisor"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	est := equity.New(equity.WithSeed(5), equity.WithWorkers(2))
	adv := advisor.New(est, advisor.WithBudget(equity.Budget{BatchSize: 500}))
	srv := NewServer(adv, Settings{StartingBankroll: 100, HalfKelly: true, Trials: 1000}, zerolog.Nop())

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Stop()
		ts.Close()
	})
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, typ MessageType, requestID string, data any) {
	t.Helper()
	msg := Message{Type: typ, RequestID: requestID, Timestamp: time.Now()}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		msg.Data = raw
	}
	require.NoError(t, ws.WriteJSON(msg))
}

func receive[T any](t *testing.T, ws *websocket.Conn, want MessageType) (T, Message) {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(10*time.Second)))
	var msg Message
	require.NoError(t, ws.ReadJSON(&msg))
	require.Equal(t, want, msg.Type, "payload: %s", msg.Data)
	var data T
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data, msg
}

func TestHealth(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}

func TestAdviseApplyReset(t *testing.T) {
	t.Parallel()
	_, url := newTestServer(t)
	ws := dial(t, url)

	send(t, ws, MessageTypeAdvise, "r1", AdviseData{Hero: "As Ad", Opponents: 1, Pot: 100, Call: 10})
	advice, msg := receive[AdviceData](t, ws, MessageTypeAdvice)
	assert.Equal(t, "r1", msg.RequestID)
	assert.Equal(t, 1000, advice.Trials)
	assert.InDelta(t, 0.85, advice.Equity, 0.05)
	assert.Equal(t, "AA", advice.Notation)
	assert.Equal(t, "Preflop", advice.Street)
	assert.Equal(t, "Half Kelly", advice.Mode)
	assert.InDelta(t, 100.0, advice.Bankroll, 1e-9)
	assert.Greater(t, advice.Bet, 0.0)

	send(t, ws, MessageTypeApply, "r2", nil)
	state, msg := receive[SessionData](t, ws, MessageTypeSession)
	assert.Equal(t, "r2", msg.RequestID)
	assert.Equal(t, 1, state.HandsPlayed)
	assert.InDelta(t, 100-advice.Bet, state.Bankroll, 1e-9)
	assert.InDelta(t, advice.Bet, state.Pot, 1e-9)
	require.NotNil(t, state.Last)
	assert.Equal(t, 1, state.Last.Hand)

	send(t, ws, MessageTypeApply, "r3", nil)
	errData, _ := receive[ErrorData](t, ws, MessageTypeError)
	assert.Equal(t, "no_advice", errData.Code)

	send(t, ws, MessageTypeReset, "r4", ResetData{Bankroll: 250})
	state, _ = receive[SessionData](t, ws, MessageTypeSession)
	assert.InDelta(t, 250.0, state.Bankroll, 1e-9)
	assert.Zero(t, state.HandsPlayed)
	assert.Nil(t, state.Last)

	send(t, ws, MessageTypeReset, "r5", nil)
	state, _ = receive[SessionData](t, ws, MessageTypeSession)
	assert.InDelta(t, 100.0, state.Bankroll, 1e-9, "empty reset uses the starting bankroll")
}

func TestApplyOverrideBet(t *testing.T) {
	t.Parallel()
	_, url := newTestServer(t)
	ws := dial(t, url)

	send(t, ws, MessageTypeAdvise, "", AdviseData{Hero: "7c 2d", Opponents: 3, Pot: 10, Call: 10, Profile: "Tight"})
	advice, _ := receive[AdviceData](t, ws, MessageTypeAdvice)
	assert.True(t, advice.Overridden)
	assert.Equal(t, "Fold", advice.Preflop)
	assert.Zero(t, advice.Bet)

	bet := 500.0
	send(t, ws, MessageTypeApply, "", ApplyData{Bet: &bet})
	errData, _ := receive[ErrorData](t, ws, MessageTypeError)
	assert.Equal(t, "insufficient_bankroll", errData.Code)

	bet = 12.34
	send(t, ws, MessageTypeApply, "", ApplyData{Bet: &bet})
	state, _ := receive[SessionData](t, ws, MessageTypeSession)
	assert.InDelta(t, 87.66, state.Bankroll, 1e-9)
}

func TestAdviseFlop(t *testing.T) {
	t.Parallel()
	_, url := newTestServer(t)
	ws := dial(t, url)

	half := false
	send(t, ws, MessageTypeAdvise, "", AdviseData{
		Hero: "Kc Th", Board: "Ks Kd 2c", Opponents: 2, Trials: 600, Pot: 20, Call: 5, HalfKelly: &half,
	})
	advice, _ := receive[AdviceData](t, ws, MessageTypeAdvice)
	assert.Equal(t, 600, advice.Trials)
	assert.Equal(t, "Flop", advice.Street)
	assert.Equal(t, "Full Kelly", advice.Mode)
	assert.Equal(t, "PairedRainbow", advice.BoardCategory)
	assert.Equal(t, "Trips", advice.HandClass)
	assert.Equal(t, "Bet 66%", advice.Postflop)
}

func TestErrors(t *testing.T) {
	t.Parallel()
	_, url := newTestServer(t)
	ws := dial(t, url)

	tests := []struct {
		typ  MessageType
		data any
		code string
	}{
		{typ: MessageTypeAdvise, data: AdviseData{Hero: "Zz", Opponents: 1, Pot: 1, Call: 1}, code: "invalid_spot"},
		{typ: MessageTypeAdvise, data: AdviseData{Hero: "As", Opponents: 1, Pot: 1, Call: 1}, code: "invalid_spot"},
		{typ: MessageTypeAdvise, data: AdviseData{Hero: "As Ad", Opponents: 0, Pot: 1, Call: 1}, code: "invalid_input"},
		{typ: MessageTypeAdvise, data: AdviseData{Hero: "As Ad", Opponents: 23, Pot: 1, Call: 1}, code: "deck_exhausted"},
		{typ: MessageTypeAdvise, data: AdviseData{Hero: "As Ad", Board: "Kh", Opponents: 1, Pot: 1, Call: 1}, code: "unknown_board"},
		{typ: MessageTypeAdvise, data: "not an object", code: "invalid_message"},
		{typ: MessageTypeReset, data: ResetData{Bankroll: -5}, code: "invalid_input"},
		{typ: "shove", data: nil, code: "unknown_message_type"},
	}
	for _, tc := range tests {
		send(t, ws, tc.typ, "", tc.data)
		errData, _ := receive[ErrorData](t, ws, MessageTypeError)
		assert.Equal(t, tc.code, errData.Code, "%s %v: %s", tc.typ, tc.data, errData.Error)
		assert.NotEmpty(t, errData.Error)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	t.Parallel()
	srv, url := newTestServer(t)
	a := dial(t, url)
	b := dial(t, url)

	send(t, a, MessageTypeState, "", nil)
	stateA, _ := receive[SessionData](t, a, MessageTypeSession)
	send(t, b, MessageTypeReset, "", ResetData{Bankroll: 50})
	stateB, _ := receive[SessionData](t, b, MessageTypeSession)

	assert.NotEqual(t, stateA.ID, stateB.ID)
	send(t, a, MessageTypeState, "", nil)
	stateA, _ = receive[SessionData](t, a, MessageTypeSession)
	assert.InDelta(t, 100.0, stateA.Bankroll, 1e-9)
	assert.InDelta(t, 50.0, stateB.Bankroll, 1e-9)

	require.Eventually(t, func() bool { return srv.ConnectionCount() == 2 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, b.Close())
	require.Eventually(t, func() bool { return srv.ConnectionCount() == 1 }, 5*time.Second, 10*time.Millisecond)
}
