package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	rand "math/rand/v2"
	"text/tabwriter"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/lox/pokerkelly/internal/fileutil"
	"github.com/lox/pokerkelly/internal/randutil"
	"github.com/lox/pokerkelly/internal/statistics"
	"github.com/lox/pokerkelly/session"
)

// HistoryCmd groups the bankroll history commands.
type HistoryCmd struct {
	List   HistoryListCmd   `cmd:"" default:"1" help:"Show recorded hands"`
	Clear  HistoryClearCmd  `cmd:"" help:"Delete every recorded hand"`
	Export HistoryExportCmd `cmd:"" help:"Write the history as TOML or JSON"`
	Stats  HistoryStatsCmd  `cmd:"" help:"Summarise bets and bankroll movement per session"`
	Seed   HistorySeedCmd   `cmd:"" help:"Fill the history with sample hands"`
}

// HistoryListCmd prints the history as a table.
type HistoryListCmd struct {
	Session string `help:"Only show this session"`
}

func (c *HistoryListCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.Close()

	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.History(e.ctx, c.Session)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		e.printf("No hands recorded\n")
		return nil
	}

	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("Session"), headerStyle.Render("Hand"), headerStyle.Render("Bet"),
		headerStyle.Render("Equity"), headerStyle.Render("Bankroll"), headerStyle.Render("Time"))
	for _, rec := range recs {
		fmt.Fprintf(w, "%s\t%d\t%s\t%.2f%%\t%s\t%s\n",
			shortID(rec.SessionID), rec.Hand, money(rec.Bet), rec.Equity, money(rec.Bankroll),
			rec.CreatedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// HistoryClearCmd empties the history table.
type HistoryClearCmd struct{}

func (c *HistoryClearCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.Close()

	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Clear(e.ctx)
	if err != nil {
		return err
	}
	e.printf("Deleted %d records\n", n)
	return nil
}

// HistoryExportCmd writes the stored records.
type HistoryExportCmd struct {
	Format  string `short:"f" enum:"toml,json" default:"toml" help:"Output format (toml, json)"`
	Output  string `short:"o" type:"path" help:"Write to this file instead of stdout"`
	Session string `help:"Only export this session"`
}

type historyDocument struct {
	Records []session.Record `json:"records" toml:"records"`
}

func (c *HistoryExportCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.Close()

	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.History(e.ctx, c.Session)
	if err != nil {
		return err
	}

	if c.Output == "" {
		err = writeHistory(e.out, c.Format, recs)
	} else {
		err = fileutil.WriteAtomic(c.Output, 0o644, func(w io.Writer) error {
			return writeHistory(w, c.Format, recs)
		})
	}
	if err != nil {
		return err
	}
	e.logger.Info().Int("records", len(recs)).Str("format", c.Format).Msg("History exported")
	return nil
}

func writeHistory(w io.Writer, format string, recs []session.Record) error {
	doc := historyDocument{Records: recs}
	if doc.Records == nil {
		doc.Records = []session.Record{}
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "toml":
		return toml.NewEncoder(w).Encode(doc)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// HistoryStatsCmd prints one summary row per session.
type HistoryStatsCmd struct {
	Session string `help:"Only summarise this session"`
}

func (c *HistoryStatsCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.Close()

	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.Replay(e.ctx, c.Session)
	if err != nil {
		return err
	}
	summaries := statistics.BySession(recs)
	if len(summaries) == 0 {
		e.printf("No hands recorded\n")
		return nil
	}

	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("Session"), headerStyle.Render("Hands"), headerStyle.Render("Wagered"),
		headerStyle.Render("Mean bet"), headerStyle.Render("Median"), headerStyle.Render("Equity"),
		headerStyle.Render("Bankroll"), headerStyle.Render("Drawdown"))
	for _, s := range summaries {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("session %s: %w", s.SessionID, err)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%.2f%%\t%s -> %s\t%s\n",
			shortID(s.SessionID), s.Hands, money(s.Wagered()), money(s.MeanBet()), money(s.Median()),
			s.MeanEquity(), money(s.Start), money(s.Final), percentStyle.Render(money(s.MaxDrawdown)))
	}
	return w.Flush()
}

// HistorySeedCmd writes sample hands so the history views have data.
type HistorySeedCmd struct {
	Hands int `short:"n" default:"20" help:"Number of hands to generate"`
}

func (c *HistorySeedCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	defer e.Close()

	if c.Hands < 1 {
		return fmt.Errorf("hands must be at least 1, got %d", c.Hands)
	}

	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	seed := randutil.Seed(e.seed)
	recs := sampleHistory(randutil.New(seed), uuid.NewString(), c.Hands, time.Now())
	if err := store.SaveAll(e.ctx, recs); err != nil {
		return err
	}
	e.logger.Info().Int64("seed", seed).Int("hands", len(recs)).Msg("History seeded")
	e.printf("Seeded %d hands into session %s\n", len(recs), recs[0].SessionID)
	return nil
}

// sampleHistory draws n hands with bets of $1-5, equities of 30-80% and a
// bankroll that drifts down from the default by $1-2 a hand. Hands are one
// minute apart and end at now.
func sampleHistory(rng *rand.Rand, sessionID string, n int, now time.Time) []session.Record {
	recs := make([]session.Record, n)
	for i := range recs {
		recs[i] = session.Record{
			SessionID: sessionID,
			Hand:      i + 1,
			Bet:       cents(uniform(rng, 1, 5)),
			Equity:    cents(uniform(rng, 0.3, 0.8) * 100),
			Bankroll:  cents(session.DefaultBankroll - float64(i)*uniform(rng, 1, 2)),
			CreatedAt: now.Add(time.Duration(i-n+1) * time.Minute).UTC(),
		}
	}
	return recs
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func cents(v float64) float64 {
	return math.Round(v*100) / 100
}
