package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/lox/pokerkelly/equity"
	"github.com/lox/pokerkelly/poker"
)

// EquityCmd estimates the hero's share of the pot at showdown.
type EquityCmd struct {
	Hero      string   `arg:"" help:"Hero hole cards, e.g. 'AsKd'"`
	Board     string   `short:"b" help:"Community cards, e.g. 'Qh Jh 2c'"`
	Opponents int      `short:"o" default:"1" help:"Number of opponents"`
	Trials    int      `short:"t" help:"Monte Carlo trials (0 uses estimator.trials)"`
	Ranges    []string `help:"Opponent range labels, one per opponent"`
}

func (c *EquityCmd) Run(g *Globals) error {
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
	est, err := e.estimator()
	if err != nil {
		return err
	}
	budget, err := e.cfg.Budget()
	if err != nil {
		return err
	}

	res, err := est.EstimateWithBudget(e.ctx, equity.Request{
		Hero:           hero,
		Board:          cards,
		Opponents:      c.Opponents,
		Trials:         e.trials(c.Trials),
		OpponentRanges: c.Ranges,
	}, budget)
	if err != nil {
		return err
	}

	e.printf("%s  %s  vs %d\n\n", handStyle.Render(poker.FormatCards(hero[:])), board(cards), c.Opponents)

	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	lower, upper := res.ConfidenceInterval()
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Equity"), percentStyle.Render(percent(res.Equity())))
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Win"), winStyle.Render(percent(res.WinRate())))
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Tie"), tieStyle.Render(percent(res.TieRate())))
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Loss"), percent(res.LossRate()))
	fmt.Fprintf(w, "%s\t%s - %s\n", headerStyle.Render("95% CI"), percent(lower), percent(upper))
	fmt.Fprintf(w, "%s\t%d (%s)\n", headerStyle.Render("Trials"), res.Trials, categoryStyle.Render(string(res.Stopped)))
	fmt.Fprintf(w, "%s\t%d\n", headerStyle.Render("Seed"), res.Seed)
	return w.Flush()
}
