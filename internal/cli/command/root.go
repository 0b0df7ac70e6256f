package command

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/connection"
	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/pkg/resp"
)

const clientKey = "client"

// App creates the CLI application. Without a subcommand it starts the REPL.
func App() *cli.App {
	return &cli.App{
		Name:    "respkv-cli",
		Usage:   "respkv command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
			RPushCommand(),
			ExecCommand(),
			REPLCommand(),
		},
		Before: func(c *cli.Context) error {
			flags := ParseGlobalFlags(c)
			switch output.Format(flags.Output) {
			case output.FormatText, output.FormatJSON, output.FormatYAML:
			default:
				return fmt.Errorf("invalid output format %q (want text, json or yaml)", flags.Output)
			}
			c.App.Metadata[clientKey] = connection.NewClient(flags.Server, flags.Timeout)
			return nil
		},
		After: func(c *cli.Context) error {
			if client := GetClient(c); client != nil {
				return client.Close()
			}
			return nil
		},
		Action: runREPL,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "respkv server address",
			EnvVars: []string{"RESPKV_SERVER"},
			Value:   "127.0.0.1:6379",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Dial and request timeout",
			EnvVars: []string{"RESPKV_TIMEOUT"},
			Value:   connection.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, json, yaml",
			Value:   string(output.FormatText),
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Timeout time.Duration
	Output  string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Timeout: c.Duration("timeout"),
		Output:  c.String("output"),
	}
}

// GetClient retrieves the RESP client created by the Before hook.
func GetClient(c *cli.Context) *connection.Client {
	if client, ok := c.App.Metadata[clientKey].(*connection.Client); ok {
		return client
	}
	return nil
}

// do sends args and prints the reply.
func do(c *cli.Context, args ...string) error {
	client := GetClient(c)
	if client == nil {
		return connection.ErrNotConnected
	}
	v, err := client.Do(c.Context, args...)
	if err != nil {
		return err
	}
	return printReply(c, v)
}

func printReply(c *cli.Context, v resp.Value) error {
	f := output.NewFormatter(output.Format(ParseGlobalFlags(c).Output))
	return f.Format(writer(c), v)
}

func writer(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
