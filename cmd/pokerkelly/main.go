// Command pokerkelly estimates hold'em equity by simulation and sizes bets
// with the Kelly criterion.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Equity   EquityCmd        `cmd:"" help:"Estimate hero equity against random opponents"`
	Kelly    KellyCmd         `cmd:"" help:"Size a bet from a known equity"`
	Advise   AdviseCmd        `cmd:"" help:"Estimate equity and recommend a bet for a spot"`
	History  HistoryCmd       `cmd:"" help:"Inspect and manage the bankroll history"`
	Simulate SimulateCmd      `cmd:"" help:"Deal showdowns between named players"`
	Serve    ServeCmd         `cmd:"" help:"Serve the advisor over WebSocket"`
	Client   ClientCmd        `cmd:"" help:"Ask a running server for advice"`
	TUI      TUICmd           `cmd:"tui" help:"Run the interactive advisor"`
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		os.Exit(1)
	}
}

// run parses args and runs the selected command. Errors are reported on
// stderr before being returned.
func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	cli.stdout, cli.stderr = stdout, stderr

	exited := false
	parser, err := kong.New(&cli,
		kong.Name("pokerkelly"),
		kong.Description("Monte Carlo hold'em equity with Kelly bet sizing"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) { exited = true }),
	)
	if err != nil {
		return err
	}

	ctx, err := parser.Parse(args)
	if exited {
		return nil
	}
	if err != nil {
		parser.Errorf("%s", err)
		return err
	}

	if err := ctx.Run(&cli.Globals); err != nil {
		parser.Errorf("%s", err)
		return err
	}
	return nil
}
