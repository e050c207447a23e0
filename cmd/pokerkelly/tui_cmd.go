package main

import (
	"github.com/lox/pokerkelly/internal/tui"
	"github.com/lox/pokerkelly/session"
)

// TUICmd runs the interactive advisor.
type TUICmd struct {
	Bankroll  float64 `short:"r" help:"Starting bankroll (0 uses kelly.starting_bankroll)"`
	NoHistory bool    `help:"Do not record applied bets in the history database"`
}

func (c *TUICmd) Run(g *Globals) error {
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

	adv, err := e.advisor(sink)
	if err != nil {
		return err
	}
	m, err := tui.NewModel(e.ctx, adv, tui.Options{
		StartingBankroll: e.bankroll(c.Bankroll),
		HalfKelly:        e.cfg.HalfKelly(),
		Trials:           e.cfg.Estimator.Trials,
		Profile:          e.cfg.Strategy.Profile,
	}, e.logger)
	if err != nil {
		return err
	}
	return tui.Run(e.ctx, m)
}
