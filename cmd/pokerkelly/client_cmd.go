package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/lox/pokerkelly/internal/client"
	"github.com/lox/pokerkelly/internal/server"
)

// ClientCmd asks a running server for advice.
type ClientCmd struct {
	Server    string   `default:"http://localhost:8080" help:"Server URL"`
	Hero      string   `arg:"" help:"Hero hole cards, e.g. 'AsKd'"`
	Board     string   `short:"b" help:"Community cards, e.g. 'Qh Jh 2c'"`
	Opponents int      `short:"o" default:"1" help:"Number of opponents"`
	Trials    int      `short:"t" help:"Monte Carlo trials (0 uses the server default)"`
	Pot       float64  `short:"p" required:"" help:"Pot before the call"`
	Call      float64  `short:"c" required:"" help:"Amount to call"`
	Profile   string   `help:"Preflop chart to apply"`
	Ranges    []string `help:"Opponent range labels, one per opponent"`
	Full      bool     `help:"Use full Kelly instead of the server default"`
	Apply     bool     `help:"Apply the advised bet on the server session"`
	Bet       *float64 `help:"Stake to apply instead of the advised bet (implies --apply)"`
}

func (c *ClientCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.Close()

	logger := log.NewWithOptions(g.stderr, log.Options{Level: e.charmLevel()})
	cl := client.New(c.Server, logger)
	if err := cl.Connect(e.ctx); err != nil {
		return err
	}
	defer cl.Close()

	spot := server.AdviseData{
		Hero:      c.Hero,
		Board:     c.Board,
		Opponents: c.Opponents,
		Trials:    c.Trials,
		Pot:       c.Pot,
		Call:      c.Call,
		Profile:   c.Profile,
		Ranges:    c.Ranges,
	}
	if c.Full {
		half := false
		spot.HalfKelly = &half
	}
	adv, err := cl.Advise(e.ctx, spot)
	if err != nil {
		return err
	}

	e.printf("%s %s  %s  (%s)\n\n", handStyle.Render(c.Hero), categoryStyle.Render(adv.Notation), orDash(c.Board), adv.Street)
	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s (%d trials)\n", headerStyle.Render("Equity"), percentStyle.Render(percent(adv.Equity)), adv.Trials)
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Pot odds"), percent(adv.PotOdds))
	fmt.Fprintf(w, "%s\t%s %s (%s)\n", headerStyle.Render("Kelly"), percent(adv.Fraction), adv.Mode, money(adv.KellyBet))
	if adv.Preflop != "" {
		fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Chart"), adv.Preflop)
	}
	if adv.BoardCategory != "" {
		fmt.Fprintf(w, "%s\t%s / %s\n", headerStyle.Render("Flop"), adv.BoardCategory, adv.HandClass)
	}
	if adv.Postflop != "" {
		fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Postflop"), adv.Postflop)
	}
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Bankroll"), money(adv.Bankroll))
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Bet"), winStyle.Render(money(adv.Bet)))
	if err := w.Flush(); err != nil {
		return err
	}

	if !c.Apply && c.Bet == nil {
		return nil
	}
	state, err := cl.Apply(e.ctx, c.Bet)
	if err != nil {
		return err
	}
	bet := adv.Bet
	if state.Last != nil {
		bet = state.Last.Bet
	}
	e.printf("\nApplied %s on hand %d, bankroll %s -> %s (session %s)\n",
		money(bet), state.HandsPlayed, money(adv.Bankroll), money(state.Bankroll), state.ID)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
