package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/lox/pokerkelly/kelly"
)

// KellyCmd sizes a bet without running a simulation.
type KellyCmd struct {
	Equity   float64 `arg:"" help:"Probability of winning, 0 to 1"`
	Pot      float64 `arg:"" help:"Pot before the call"`
	Call     float64 `arg:"" help:"Amount to call"`
	Bankroll float64 `short:"r" help:"Bankroll (0 uses kelly.starting_bankroll)"`
	Full     bool    `help:"Use full Kelly regardless of configuration"`
}

func (c *KellyCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.Close()

	rec, err := kelly.Recommend(c.Equity, c.Pot, c.Call, e.bankroll(c.Bankroll), e.halfKelly(c.Full))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Equity"), percent(rec.Equity))
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Pot odds"), percent(rec.PotOdds))
	fmt.Fprintf(w, "%s\t%.2f:1\n", headerStyle.Render("Net odds"), rec.NetOdds)
	fmt.Fprintf(w, "%s\t%s of bankroll (%s)\n", headerStyle.Render("Fraction"), percent(rec.Fraction), categoryStyle.Render(string(rec.Mode)))
	if rec.Fold() {
		fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Bet"), percentStyle.Render("Fold (no edge)"))
	} else {
		fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Bet"), winStyle.Render(money(rec.Bet)))
	}
	return w.Flush()
}
