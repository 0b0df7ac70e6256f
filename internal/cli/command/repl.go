package command

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/connection"
	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/cli/repl"
)

// REPLCommand returns the repl command.
func REPLCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Start interactive mode",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "History file (default ~/.respkv/history)",
			},
		},
		Action: runREPL,
	}
}

func runREPL(c *cli.Context) error {
	if c.NArg() != 0 {
		return cli.ShowAppHelp(c)
	}
	client := GetClient(c)
	if client == nil {
		return connection.ErrNotConnected
	}

	history := repl.NewHistory(c.String("history"))
	if err := history.Load(); err != nil {
		PrintError("load history: %v", err)
	}
	defer func() {
		if err := history.Save(); err != nil {
			PrintError("save history: %v", err)
		}
	}()

	in := c.App.Reader
	if in == nil {
		in = os.Stdin
	}
	r := repl.New(client.Do, client.Addr(),
		repl.WithIO(in, writer(c)),
		repl.WithHistory(history),
		repl.WithFormatter(output.NewFormatter(output.Format(ParseGlobalFlags(c).Output))),
	)
	return r.Run(c.Context)
}
