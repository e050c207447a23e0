package main

import (
	"cmp"
	"fmt"
	"text/tabwriter"

	"github.com/lox/pokerkelly/internal/advisor"
	"github.com/lox/pokerkelly/poker"
	"github.com/lox/pokerkelly/session"
)

// AdviseCmd runs the full advisor for one spot.
type AdviseCmd struct {
	Hero      string   `arg:"" help:"Hero hole cards, e.g. 'AsKd'"`
	Board     string   `short:"b" help:"Community cards, e.g. 'Qh Jh 2c'"`
	Opponents int      `short:"o" default:"1" help:"Number of opponents"`
	Trials    int      `short:"t" help:"Monte Carlo trials (0 uses estimator.trials)"`
	Pot       float64  `short:"p" required:"" help:"Pot before the call"`
	Call      float64  `short:"c" required:"" help:"Amount to call"`
	Bankroll  float64  `short:"r" help:"Starting bankroll for a new session (0 uses kelly.starting_bankroll)"`
	Profile   string   `help:"Preflop chart to apply (empty uses strategy.profile)"`
	Ranges    []string `help:"Opponent range labels, one per opponent"`
	Full      bool     `help:"Use full Kelly regardless of configuration"`
	Apply     bool     `help:"Apply the recommended bet and record it in the history database"`
	Session   string   `help:"Continue a stored session instead of starting a new one (implies --apply)"`
}

func (c *AdviseCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.Close()

	hero, err := parseHole(c.Hero)
	if err != nil {
		return err
	}
	cards, err := parseBoard(c.Board)
	if err != nil {
		return err
	}

	var sink session.Sink
	state, err := session.New(e.bankroll(c.Bankroll))
	if err != nil {
		return err
	}
	if c.Apply || c.Session != "" {
		store, err := e.openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		sink = store

		if c.Session != "" {
			history, err := store.Replay(e.ctx, c.Session)
			if err != nil {
				return err
			}
			if state, err = session.Resume(c.Session, history); err != nil {
				return err
			}
		}
	}

	adv, err := e.advisor(sink)
	if err != nil {
		return err
	}
	advice, err := adv.Advise(e.ctx, state, advisor.Spot{
		Hero:           hero,
		Board:          cards,
		Opponents:      c.Opponents,
		Trials:         e.trials(c.Trials),
		Pot:            c.Pot,
		Call:           c.Call,
		HalfKelly:      e.halfKelly(c.Full),
		Profile:        cmp.Or(c.Profile, e.cfg.Strategy.Profile),
		OpponentRanges: c.Ranges,
	})
	if err != nil {
		return err
	}

	if err := c.print(e, state, cards, advice); err != nil {
		return err
	}
	if sink == nil {
		return nil
	}

	next, rec, err := adv.Apply(e.ctx, state, advice)
	if err != nil {
		return err
	}
	e.printf("\nApplied %s on hand %d, bankroll %s -> %s (session %s)\n",
		money(rec.Bet), rec.Hand, money(state.Bankroll), money(next.Bankroll), next.ID)
	return nil
}

func (c *AdviseCmd) print(e *env, state session.State, cards []poker.Card, adv advisor.Advice) error {
	e.printf("%s %s  %s  vs %d  (%s)\n\n",
		handStyle.Render(c.Hero), categoryStyle.Render(adv.Notation), board(cards), c.Opponents, adv.Street)

	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s (%d trials)\n", headerStyle.Render("Equity"), percentStyle.Render(percent(adv.Equity())), adv.Result.Trials)
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Pot odds"), percent(adv.Kelly.PotOdds))
	fmt.Fprintf(w, "%s\t%s %s (%s)\n", headerStyle.Render("Kelly"), percent(adv.Kelly.Fraction), adv.Kelly.Mode, money(adv.Kelly.Bet))
	if adv.Preflop != nil {
		fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Chart"), adv.Preflop)
	}
	if adv.BoardCategory != "" {
		fmt.Fprintf(w, "%s\t%s / %s\n", headerStyle.Render("Flop"), adv.BoardCategory, adv.HandClass)
	}
	if adv.Postflop != nil {
		fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Postflop"), adv.Postflop)
	}
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Bankroll"), money(state.Bankroll))
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Bet"), winStyle.Render(money(adv.Bet)))
	return w.Flush()
}
