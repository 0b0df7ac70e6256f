package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/pkg/resp"
)

// Executor sends one command and returns its reply.
type Executor func(ctx context.Context, args ...string) (resp.Value, error)

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	formatter output.Formatter
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input, r.output = in, out
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithFormatter sets the reply formatter.
func WithFormatter(f output.Formatter) Option {
	return func(r *REPL) {
		r.formatter = f
	}
}

// New creates a new REPL that runs commands through exec. prompt is
// usually the server address.
func New(exec Executor, prompt string, opts ...Option) *REPL {
	r := &REPL{
		prompt:    prompt + "> ",
		exec:      exec,
		formatter: &output.TextFormatter{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.history == nil {
		r.history = NewHistory("")
	}
	return r
}

// Run reads commands until EOF, exit or quit, or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	reader := bufio.NewReader(r.input)

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				fmt.Fprintln(r.output)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		name, rest, _ := strings.Cut(line, " ")
		switch strings.ToLower(name) {
		case "exit", "quit":
			return nil
		case "help":
			printCommands(r.output, strings.TrimSpace(rest))
			continue
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
	}
}

func (r *REPL) execute(ctx context.Context, line string) error {
	args, err := SplitArgs(line)
	if err != nil {
		return err
	}
	v, err := r.exec(ctx, args...)
	if err != nil {
		return err
	}
	return r.formatter.Format(r.output, v)
}

// SplitArgs splits a command line into arguments. Double-quoted arguments
// may contain spaces and Go escape sequences; single-quoted arguments are
// taken literally.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		i       int
		lineLen = len(line)
	)

	for i < lineLen {
		c := line[i]
		switch {
		case c == ' ' || c == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
			i++
		case c == '"':
			end := closingQuote(line, i+1)
			if end < 0 {
				return nil, fmt.Errorf("unbalanced quotes in %q", line)
			}
			s, err := strconv.Unquote(line[i : end+1])
			if err != nil {
				return nil, fmt.Errorf("invalid quoted argument %s: %w", line[i:end+1], err)
			}
			cur.WriteString(s)
			inArg = true
			i = end + 1
		case c == '\'':
			end := strings.IndexByte(line[i+1:], '\'')
			if end < 0 {
				return nil, fmt.Errorf("unbalanced quotes in %q", line)
			}
			cur.WriteString(line[i+1 : i+1+end])
			inArg = true
			i += end + 2
		default:
			cur.WriteByte(c)
			inArg = true
			i++
		}
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}

// closingQuote returns the index of the double quote ending the quoted
// string that starts at from, or -1.
func closingQuote(s string, from int) int {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
