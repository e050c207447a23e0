package main

import (
	"github.com/lox/pokerkelly/internal/server"
	"github.com/lox/pokerkelly/session"
)

// ServeCmd runs the WebSocket advisor until interrupted.
type ServeCmd struct {
	Addr      string `help:"Server address (empty uses server.address)"`
	NoHistory bool   `help:"Do not record applied bets in the history database"`
}

func (c *ServeCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.Close()

	var sink session.Sink
	if !c.NoHistory {
		store, err := e.openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		sink = store
	}

	adv, err := e.serveAdvisor(sink)
	if err != nil {
		return err
	}

	addr := c.Addr
	if addr == "" {
		addr = e.cfg.Server.Address
	}
	srv := server.NewServer(adv, server.Settings{
		StartingBankroll: e.cfg.Kelly.StartingBankroll,
		HalfKelly:        e.cfg.HalfKelly(),
		Trials:           e.cfg.Estimator.Trials,
		Profile:          e.cfg.Strategy.Profile,
	}, e.logger)

	e.logger.Info().
		Str("address", addr).
		Float64("starting_bankroll", e.cfg.Kelly.StartingBankroll).
		Bool("half_kelly", e.cfg.HalfKelly()).
		Int("trials", e.cfg.Estimator.Trials).
		Int("max_trials", e.cfg.Server.MaxTrials).
		Str("timeout", e.cfg.Server.Timeout).
		Bool("history", sink != nil).
		Msg("Starting pokerkelly server")

	return srv.Serve(e.ctx, addr)
}
