package command

import (
	"errors"
	"strconv"

	"github.com/urfave/cli/v2"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the server answers",
		Action: func(c *cli.Context) error {
			if c.NArg() != 0 {
				return errors.New("ping takes no arguments")
			}
			return do(c, "PING")
		},
	}
}

// EchoCommand returns the echo command.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Echo a message",
		ArgsUsage: "<message>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("echo takes exactly one message")
			}
			return do(c, "ECHO", c.Args().First())
		},
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("get takes exactly one key")
			}
			return do(c, "GET", c.Args().First())
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a key to a value",
		ArgsUsage: "<key> <value>",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "px",
				Usage: "Expire after this many milliseconds",
			},
			&cli.Int64Flag{
				Name:  "ex",
				Usage: "Expire after this many seconds",
			},
		},
		Action: setAction,
	}
}

func setAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("set takes a key and a value")
	}
	if c.IsSet("px") && c.IsSet("ex") {
		return errors.New("--px and --ex are mutually exclusive")
	}

	args := []string{"SET", c.Args().Get(0), c.Args().Get(1)}
	switch {
	case c.IsSet("px"):
		args = append(args, "PX", strconv.FormatInt(c.Int64("px"), 10))
	case c.IsSet("ex"):
		args = append(args, "EX", strconv.FormatInt(c.Int64("ex"), 10))
	}
	return do(c, args...)
}

// RPushCommand returns the rpush command.
func RPushCommand() *cli.Command {
	return &cli.Command{
		Name:      "rpush",
		Usage:     "Append values to a list",
		ArgsUsage: "<key> <value> [value ...]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return errors.New("rpush takes a key and at least one value")
			}
			return do(c, append([]string{"RPUSH"}, c.Args().Slice()...)...)
		},
	}
}

// ExecCommand returns the exec command, which sends its arguments as-is.
func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Send a raw command",
		ArgsUsage: "<command> [arg ...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("exec needs a command")
			}
			return do(c, c.Args().Slice()...)
		},
	}
}
