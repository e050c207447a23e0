// Package tui is a terminal front end for the advisor: a small form for the
// spot, the advice for it, and the session's bankroll.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/pokerkelly/internal/advisor"
	"github.com/lox/pokerkelly/poker"
	"github.com/lox/pokerkelly/session"
	"github.com/rs/zerolog"
)

// Field identifies a form input.
type Field int

const (
	FieldHero Field = iota
	FieldBoard
	FieldVillains
	FieldPot
	FieldCall
	FieldHalfKelly
	FieldProfile
	fieldCount
)

var fieldLabels = [fieldCount]string{"Hero", "Board", "Villains", "Pot", "Call", "Half Kelly", "Profile"}

// Options seed the form and the session.
type Options struct {
	StartingBankroll float64
	HalfKelly        bool
	Trials           int
	Profile          string
}

type adviceMsg struct {
	advice advisor.Advice
	err    error
}

type appliedMsg struct {
	state  session.State
	record session.Record
	err    error
}

// Model is the Bubble Tea model.
//
// The form is either being edited or showing advice. Enter computes advice
// and leaves edit mode; in the result view a applies the bet, r resets the
// bankroll and e (or tab) returns to the form.
type Model struct {
	ctx      context.Context
	advisor  *advisor.Advisor
	opts     Options
	inputs   [fieldCount]textinput.Model
	focus    Field
	editing  bool
	busy     bool
	state    session.State
	advice   *advisor.Advice
	status   string
	err      error
	quitting bool
	logger   zerolog.Logger
}

// NewModel creates the form around adv with a fresh session.
func NewModel(ctx context.Context, adv *advisor.Advisor, opts Options, logger zerolog.Logger) (*Model, error) {
	if opts.StartingBankroll == 0 {
		opts.StartingBankroll = session.DefaultBankroll
	}
	state, err := session.New(opts.StartingBankroll)
	if err != nil {
		return nil, err
	}

	m := &Model{
		ctx:     ctx,
		advisor: adv,
		opts:    opts,
		editing: true,
		state:   state,
		logger:  logger.With().Str("component", "tui").Logger(),
	}

	placeholders := [fieldCount]string{"As Kd", "Qh Jh 2c (optional)", "2", "100", "10", "y/n", "Tight (optional)"}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 24
		ti.Width = 24
		ti.Prompt = "> "
		ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
		m.inputs[i] = ti
	}
	m.inputs[FieldVillains].SetValue("2")
	if opts.HalfKelly {
		m.inputs[FieldHalfKelly].SetValue("y")
	} else {
		m.inputs[FieldHalfKelly].SetValue("n")
	}
	m.inputs[FieldProfile].SetValue(opts.Profile)
	m.inputs[FieldHero].Focus()
	return m, nil
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, m *Model) error {
	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// State returns the current session.
func (m *Model) State() session.State {
	return m.state
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case adviceMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.advice = &msg.advice
		m.logger.Debug().Str("hand", msg.advice.Notation).Float64("bet", msg.advice.Bet).Msg("Advice received")
		m.status = fmt.Sprintf("Advice ready: bet $%.2f (a to apply)", msg.advice.Bet)
		return m, nil

	case appliedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.state = msg.state
		m.advice = nil
		m.status = fmt.Sprintf("Applied $%.2f on hand %d", msg.record.Bet, msg.record.Hand)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		if m.editing {
			return m.updateForm(msg)
		}
		return m.updateResult(msg)
	}

	if m.editing {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil
	case "enter":
		if m.busy {
			return m, nil
		}
		spot, err := m.spot()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.busy = true
		m.editing = false
		m.inputs[m.focus].Blur()
		m.status = "Estimating..."
		return m, m.adviseCmd(spot)
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch msg.String() {
	case "a":
		if m.advice == nil {
			m.status = "Nothing to apply"
			return m, nil
		}
		m.busy = true
		return m, m.applyCmd(*m.advice)
	case "r":
		next, err := m.state.Reset(m.opts.StartingBankroll)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.state = next
		m.advice = nil
		m.err = nil
		m.status = fmt.Sprintf("Bankroll reset to $%.2f", next.Bankroll)
	case "e", "tab", "enter":
		m.editing = true
		m.setFocus(m.focus)
	}
	return m, nil
}

func (m *Model) setFocus(f Field) {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = f
	m.inputs[f].Focus()
}

func (m *Model) adviseCmd(spot advisor.Spot) tea.Cmd {
	state := m.state
	return func() tea.Msg {
		adv, err := m.advisor.Advise(m.ctx, state, spot)
		return adviceMsg{advice: adv, err: err}
	}
}

func (m *Model) applyCmd(adv advisor.Advice) tea.Cmd {
	state := m.state
	return func() tea.Msg {
		next, rec, err := m.advisor.Apply(m.ctx, state, adv)
		return appliedMsg{state: next, record: rec, err: err}
	}
}

// spot reads the form.
func (m *Model) spot() (advisor.Spot, error) {
	value := func(f Field) string { return strings.TrimSpace(m.inputs[f].Value()) }

	hero, err := poker.ParseCards(value(FieldHero))
	if err != nil {
		return advisor.Spot{}, fmt.Errorf("hero: %w", err)
	}
	if len(hero) != 2 {
		return advisor.Spot{}, fmt.Errorf("hero: need two cards, got %d", len(hero))
	}

	var board []poker.Card
	if s := value(FieldBoard); s != "" {
		if board, err = poker.ParseCards(s); err != nil {
			return advisor.Spot{}, fmt.Errorf("board: %w", err)
		}
	}

	villains, err := strconv.Atoi(value(FieldVillains))
	if err != nil {
		return advisor.Spot{}, fmt.Errorf("villains: %q is not a number", value(FieldVillains))
	}
	pot, err := strconv.ParseFloat(value(FieldPot), 64)
	if err != nil {
		return advisor.Spot{}, fmt.Errorf("pot: %q is not a number", value(FieldPot))
	}
	call, err := strconv.ParseFloat(value(FieldCall), 64)
	if err != nil {
		return advisor.Spot{}, fmt.Errorf("call: %q is not a number", value(FieldCall))
	}

	var half bool
	switch strings.ToLower(value(FieldHalfKelly)) {
	case "y", "yes", "true":
		half = true
	case "n", "no", "false":
	default:
		return advisor.Spot{}, fmt.Errorf("half kelly: answer y or n")
	}

	return advisor.Spot{
		Hero:      [2]poker.Card{hero[0], hero[1]},
		Board:     board,
		Opponents: villains,
		Trials:    m.opts.Trials,
		Pot:       pot,
		Call:      call,
		HalfKelly: half,
		Profile:   value(FieldProfile),
	}, nil
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Poker equity & Kelly sizing"))
	b.WriteString("\n\n")

	for i := range m.inputs {
		label := LabelStyle
		if m.editing && Field(i) == m.focus {
			label = FocusedLabelStyle
		}
		b.WriteString(label.Render(fieldLabels[i]))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.advice != nil {
		b.WriteString(PaneStyle.Render(m.renderAdvice(*m.advice)))
		b.WriteString("\n")
	}
	b.WriteString(PaneStyle.Render(m.renderSession()))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(ErrorStyle.Render("Error: " + m.err.Error()))
	case m.status != "":
		b.WriteString(SuccessStyle.Render(m.status))
	}
	b.WriteString("\n")

	if m.editing {
		b.WriteString(InfoStyle.Render("tab/↑↓ move • enter advise • esc quit"))
	} else {
		b.WriteString(InfoStyle.Render("a apply • r reset bankroll • e edit • esc quit"))
	}
	return b.String()
}

func (m *Model) renderAdvice(adv advisor.Advice) string {
	low, high := adv.Result.ConfidenceInterval()
	lines := []string{
		fmt.Sprintf("Hand      %s %s", formatCards(m.heroCards()), adv.Notation),
		fmt.Sprintf("Equity    %.2f%%  (95%% CI %.2f%% - %.2f%%, %d trials)", adv.Equity()*100, low*100, high*100, adv.Result.Trials),
		fmt.Sprintf("Pot odds  %.2f%%  net odds %.2f:1", adv.Kelly.PotOdds*100, adv.Kelly.NetOdds),
		fmt.Sprintf("Kelly     %.2f%% %s  ($%.2f)", adv.Kelly.Fraction*100, adv.Kelly.Mode, adv.Kelly.Bet),
	}
	if adv.Preflop != nil {
		lines = append(lines, fmt.Sprintf("Chart     %s", adv.Preflop))
	}
	if adv.BoardCategory != "" {
		line := fmt.Sprintf("Flop      %s, %s", adv.BoardCategory, adv.HandClass)
		if adv.Postflop != nil {
			line += " → " + adv.Postflop.String()
		}
		lines = append(lines, line)
	}
	lines = append(lines, BetStyle.Render(fmt.Sprintf("Bet       $%.2f", adv.Bet)))
	return strings.Join(lines, "\n")
}

func (m *Model) renderSession() string {
	lines := []string{fmt.Sprintf("Bankroll $%.2f   Pot $%.2f   Hands %d", m.state.Bankroll, m.state.Pot, m.state.HandsPlayed)}
	for _, rec := range m.state.Recent(5) {
		lines = append(lines, InfoStyle.Render(fmt.Sprintf("#%d  bet $%.2f  equity %.2f%%  bankroll $%.2f", rec.Hand, rec.Bet, rec.Equity, rec.Bankroll)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) heroCards() []poker.Card {
	cards, err := poker.ParseCards(m.inputs[FieldHero].Value())
	if err != nil {
		return nil
	}
	return cards
}

func formatCards(cards []poker.Card) string {
	if len(cards) == 0 {
		return ""
	}

	var formatted []string
	for _, card := range cards {
		if s := card.Suit(); s == poker.Hearts || s == poker.Diamonds {
			formatted = append(formatted, RedCardStyle.Render(card.String()))
		} else {
			formatted = append(formatted, BlackCardStyle.Render(card.String()))
		}
	}

	return "[" + strings.Join(formatted, " ") + "]"
}
