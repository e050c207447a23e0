package main

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/lox/pokerkelly/internal/evaluator"
	"github.com/lox/pokerkelly/internal/randutil"
	"github.com/lox/pokerkelly/internal/simulator"
	"github.com/lox/pokerkelly/poker"
)

var defaultPlayers = []string{"Alice:tight-aggressive", "Bob:loose-aggressive", "Carol:loose-passive", "Dave:nit"}

// SimulateCmd deals random showdowns and reports how often each player won.
type SimulateCmd struct {
	Players []string `arg:"" optional:"" help:"Players as name or name:profile (default: four players)"`
	Hands   int      `short:"n" default:"1000" help:"Number of hands to deal"`
	Show    int      `help:"Print the first N hands in full"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.Close()

	args := c.Players
	if len(args) == 0 {
		args = defaultPlayers
	}
	players, err := parsePlayers(args)
	if err != nil {
		return err
	}
	ev, err := evaluator.ByName(e.cfg.Estimator.Evaluator)
	if err != nil {
		return err
	}

	seed := randutil.Seed(e.seed)
	sim := simulator.New(simulator.Config{
		Players:   players,
		Hands:     c.Hands,
		Seed:      seed,
		Evaluator: ev,
		Logger:    e.logger,
	})
	stats, err := sim.Run(e.ctx)
	if err != nil {
		return err
	}

	for i := range min(c.Show, stats.Hands) {
		hand, err := sim.Replay(i)
		if err != nil {
			return err
		}
		if err := printHand(e, i+1, hand); err != nil {
			return err
		}
	}

	e.printf("%s  %d hands, seed %d, %d split pots\n\n", headerStyle.Render("Showdowns"), stats.Hands, stats.Seed, stats.Ties)
	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", headerStyle.Render("Player"), headerStyle.Render("Profile"), headerStyle.Render("Wins"), headerStyle.Render("Share"))
	for _, p := range stats.Players {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%s\n", handStyle.Render(p.Name), categoryStyle.Render(p.Profile), stats.Wins[p.Name], winStyle.Render(percent(stats.Share(p.Name))))
	}
	return w.Flush()
}

func printHand(e *env, n int, hand simulator.Hand) error {
	e.printf("%s %d  %s\n", headerStyle.Render("Hand"), n, poker.FormatCards(hand.Board[:]))
	for i, seat := range hand.Seats {
		made, err := hand.Describe(i)
		if err != nil {
			return err
		}
		marker := ""
		if slices.Contains(hand.Winners, seat.Name) {
			marker = winStyle.Render(" *")
			if len(hand.Winners) > 1 {
				marker = tieStyle.Render(" =")
			}
		}
		e.printf("  %-8s %s  %s%s\n", seat.Name, poker.FormatCards(seat.Hole[:]), made, marker)
	}
	e.printf("\n")
	return nil
}

// parsePlayers reads "name" or "name:profile". Profiles must be one of
// simulator.Profiles; a bare name gets the first.
func parsePlayers(args []string) ([]simulator.Player, error) {
	players := make([]simulator.Player, 0, len(args))
	for _, arg := range args {
		name, profile, found := strings.Cut(arg, ":")
		if !found {
			profile = simulator.Profiles[0]
		}
		if !slices.Contains(simulator.Profiles, profile) {
			return nil, fmt.Errorf("%w: player %s has unknown profile %q (want one of %s)",
				poker.ErrInvalidInput, name, profile, strings.Join(simulator.Profiles, ", "))
		}
		players = append(players, simulator.Player{Name: name, Profile: profile})
	}
	return players, nil
}
