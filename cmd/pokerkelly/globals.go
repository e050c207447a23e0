package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/pokerkelly/cmd/pokerkelly/shared"
	"github.com/lox/pokerkelly/equity"
	"github.com/lox/pokerkelly/internal/advisor"
	"github.com/lox/pokerkelly/internal/config"
	"github.com/lox/pokerkelly/internal/storage"
	"github.com/lox/pokerkelly/poker"
	"github.com/lox/pokerkelly/session"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config  string `kong:"default='pokerkelly.hcl',help='Configuration file (defaults apply when it does not exist)'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
	JSON    bool   `kong:"name='json',help='Log as JSON instead of console output'"`
	NoColor bool   `kong:"help='Disable colored output'"`
	Seed    *int64 `kong:"help='Deterministic RNG seed (optional)'"`

	stdout io.Writer
	stderr io.Writer
}

// env is what a command needs once flags and configuration are resolved.
type env struct {
	cfg    *config.Config
	logger zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	seed   *int64
	out    io.Writer
}

func (g *Globals) setup() (*env, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", g.Config, err)
	}

	level := shared.Level(cfg.LogLevel, g.Debug)
	var logger zerolog.Logger
	if g.JSON {
		logger = shared.SetupStructuredLogger(g.stderr, level)
	} else {
		logger = shared.SetupLogger(g.stderr, level, g.NoColor)
	}
	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	ctx, cancel := shared.SetupSignalHandlerWithLogger(logger)
	return &env{
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		seed:   g.Seed,
		out:    g.stdout,
	}, nil
}

func (e *env) Close() {
	e.cancel()
}

// charmLevel maps the zerolog level onto charmbracelet/log for the client.
func (e *env) charmLevel() log.Level {
	switch e.logger.GetLevel() {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return log.DebugLevel
	case zerolog.WarnLevel:
		return log.WarnLevel
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func (e *env) estimator() (*equity.Estimator, error) {
	opts, err := e.cfg.EstimatorOptions(e.logger)
	if err != nil {
		return nil, err
	}
	if e.seed != nil {
		e.logger.Info().Int64("seed", *e.seed).Msg("Using deterministic seed")
		opts = append(opts, equity.WithSeed(*e.seed))
	}
	return equity.New(opts...), nil
}

// advisor builds an advisor from configuration. sink may be nil.
func (e *env) advisor(sink session.Sink) (*advisor.Advisor, error) {
	budget, err := e.cfg.Budget()
	if err != nil {
		return nil, err
	}
	return e.newAdvisor(sink, budget)
}

// serveAdvisor is advisor with the server's request limits applied.
func (e *env) serveAdvisor(sink session.Sink) (*advisor.Advisor, error) {
	budget, err := e.cfg.ServeBudget()
	if err != nil {
		return nil, err
	}
	return e.newAdvisor(sink, budget)
}

func (e *env) newAdvisor(sink session.Sink, budget equity.Budget) (*advisor.Advisor, error) {
	est, err := e.estimator()
	if err != nil {
		return nil, err
	}
	catalog, err := e.cfg.Catalog()
	if err != nil {
		return nil, err
	}
	opts := []advisor.Option{
		advisor.WithBudget(budget),
		advisor.WithCatalog(catalog),
		advisor.WithLogger(e.logger),
	}
	if sink != nil {
		opts = append(opts, advisor.WithSink(sink))
	}
	return advisor.New(est, opts...), nil
}

func (e *env) openStore() (*storage.Store, error) {
	return storage.Open(e.ctx, e.cfg.StorageConfig(), e.logger)
}

// bankroll returns v, or the configured starting bankroll when v is zero.
func (e *env) bankroll(v float64) float64 {
	if v == 0 {
		return e.cfg.Kelly.StartingBankroll
	}
	return v
}

// halfKelly resolves the sizing mode: --full wins over configuration.
func (e *env) halfKelly(full bool) bool {
	return !full && e.cfg.HalfKelly()
}

func (e *env) trials(v int) int {
	if v == 0 {
		return e.cfg.Estimator.Trials
	}
	return v
}

func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}

func parseHole(s string) ([2]poker.Card, error) {
	cards, err := poker.ParseCards(s)
	if err != nil {
		return [2]poker.Card{}, fmt.Errorf("hero: %w", err)
	}
	if len(cards) != 2 {
		return [2]poker.Card{}, fmt.Errorf("hero: %w: need exactly 2 cards, got %d", poker.ErrInvalidInput, len(cards))
	}
	return [2]poker.Card{cards[0], cards[1]}, nil
}

func parseBoard(s string) ([]poker.Card, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	cards, err := poker.ParseCards(s)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	return cards, nil
}
