package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/pokerkelly/equity"
	"github.com/lox/pokerkelly/internal/advisor"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	est := equity.New(equity.WithSeed(21), equity.WithWorkers(2))
	adv := advisor.New(est, advisor.WithBudget(equity.Budget{BatchSize: 500}))
	m, err := NewModel(context.Background(), adv, Options{StartingBankroll: 100, HalfKelly: true, Trials: 1000}, zerolog.Nop())
	require.NoError(t, err)
	return m
}

func fill(m *Model, values map[Field]string) {
	for f, v := range values {
		m.inputs[f].SetValue(v)
	}
}

func press(t *testing.T, m *Model, key tea.KeyMsg) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(key)
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// settle runs cmd and feeds its message back into the model.
func settle(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	_, next := m.Update(cmd())
	assert.Nil(t, next)
}

func TestNewModelDefaults(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	assert.True(t, m.editing)
	assert.Equal(t, FieldHero, m.focus)
	assert.Equal(t, "2", m.inputs[FieldVillains].Value())
	assert.Equal(t, "y", m.inputs[FieldHalfKelly].Value())
	assert.InDelta(t, 100.0, m.State().Bankroll, 1e-9)
	assert.Contains(t, m.View(), "Bankroll $100.00")
}

func TestFocusCycles(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FieldBoard, m.focus)
	press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, FieldProfile, m.focus)
	assert.True(t, m.inputs[FieldProfile].Focused())
	assert.False(t, m.inputs[FieldHero].Focused())
}

func TestTypingInForm(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	press(t, m, runes("As"))
	assert.Equal(t, "As", m.inputs[FieldHero].Value())
	assert.Equal(t, FieldHero, m.focus, "letters are text while editing")
}

func TestAdviseApplyReset(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	fill(m, map[Field]string{FieldHero: "As Ad", FieldVillains: "1", FieldPot: "100", FieldCall: "10"})

	cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.busy)
	assert.False(t, m.editing)
	settle(t, m, cmd)

	require.NotNil(t, m.advice)
	assert.False(t, m.busy)
	assert.NoError(t, m.err)
	assert.InDelta(t, 0.85, m.advice.Equity(), 0.05)
	assert.Equal(t, 1000, m.advice.Result.Trials)
	bet := m.advice.Bet
	assert.Greater(t, bet, 0.0)
	assert.Contains(t, m.View(), "Half Kelly  ($")

	cmd = press(t, m, runes("a"))
	settle(t, m, cmd)
	assert.Nil(t, m.advice)
	assert.Equal(t, 1, m.State().HandsPlayed)
	assert.InDelta(t, 100-bet, m.State().Bankroll, 1e-9)
	assert.Contains(t, m.View(), "#1")

	press(t, m, runes("a"))
	assert.Equal(t, "Nothing to apply", m.status)

	press(t, m, runes("r"))
	assert.InDelta(t, 100.0, m.State().Bankroll, 1e-9)
	assert.Zero(t, m.State().HandsPlayed)

	press(t, m, runes("e"))
	assert.True(t, m.editing)
}

func TestPreflopChart(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	fill(m, map[Field]string{FieldHero: "Ah Kh", FieldVillains: "2", FieldPot: "30", FieldCall: "10", FieldProfile: "Tight"})
	settle(t, m, press(t, m, tea.KeyMsg{Type: tea.KeyEnter}))

	require.NotNil(t, m.advice)
	assert.True(t, m.advice.Overridden)
	assert.InDelta(t, 25.0, m.advice.Bet, 1e-9)
	assert.Contains(t, m.View(), "Raise 2.5x")
}

func TestFormErrors(t *testing.T) {
	t.Parallel()
	tests := map[string]map[Field]string{
		"hero":       {FieldHero: "As", FieldPot: "1", FieldCall: "1"},
		"bad card":   {FieldHero: "Zz Ad", FieldPot: "1", FieldCall: "1"},
		"board":      {FieldHero: "As Ad", FieldBoard: "Kx", FieldPot: "1", FieldCall: "1"},
		"villains":   {FieldHero: "As Ad", FieldVillains: "two", FieldPot: "1", FieldCall: "1"},
		"pot":        {FieldHero: "As Ad", FieldPot: "lots", FieldCall: "1"},
		"call":       {FieldHero: "As Ad", FieldPot: "1", FieldCall: ""},
		"half kelly": {FieldHero: "As Ad", FieldPot: "1", FieldCall: "1", FieldHalfKelly: "maybe"},
	}
	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			m := newTestModel(t)
			fill(m, values)
			cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
			assert.Nil(t, cmd)
			assert.Error(t, m.err)
			assert.True(t, m.editing)
			assert.Contains(t, m.View(), "Error:")
		})
	}
}

func TestAdvisorErrorShown(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	fill(m, map[Field]string{FieldHero: "As Ad", FieldBoard: "As Kd 2c", FieldPot: "10", FieldCall: "5"})
	settle(t, m, press(t, m, tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Error(t, m.err)
	assert.Nil(t, m.advice)
}

func TestQuit(t *testing.T) {
	t.Parallel()
	for _, key := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		m := newTestModel(t)
		cmd := press(t, m, key)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Empty(t, m.View())
	}
}
