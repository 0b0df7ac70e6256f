package repl

import (
	"fmt"
	"io"
	"strings"
)

type commandInfo struct {
	name    string
	args    string
	summary string
}

var commandTable = []commandInfo{
	{"PING", "", "check the connection"},
	{"ECHO", "message", "return message"},
	{"SET", "key value [PX milliseconds | EX seconds]", "store a string, optionally expiring"},
	{"GET", "key", "fetch a string"},
	{"RPUSH", "key value [value ...]", "append to a list"},
	{"help", "[prefix]", "list commands"},
	{"exit", "", "leave the shell"},
	{"quit", "", "leave the shell"},
}

// Complete returns the command names that start with prefix, ignoring
// case. The server itself only accepts upper-case names.
func Complete(prefix string) []string {
	var names []string
	for _, c := range matching(prefix) {
		names = append(names, c.name)
	}
	return names
}

func matching(prefix string) []commandInfo {
	var out []commandInfo
	for _, c := range commandTable {
		if len(prefix) <= len(c.name) && strings.EqualFold(c.name[:len(prefix)], prefix) {
			out = append(out, c)
		}
	}
	return out
}

func printCommands(w io.Writer, prefix string) {
	cmds := matching(prefix)
	if len(cmds) == 0 {
		fmt.Fprintf(w, "No commands match %q\n", prefix)
		return
	}
	for _, c := range cmds {
		usage := strings.TrimSpace(c.name + " " + c.args)
		fmt.Fprintf(w, "  %-50s %s\n", usage, c.summary)
	}
}
