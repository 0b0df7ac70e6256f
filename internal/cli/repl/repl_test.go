package repl

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/yndnr/respkv/pkg/resp"
)

type recorder struct {
	calls [][]string
	reply resp.Value
	err   error
}

func (r *recorder) exec(_ context.Context, args ...string) (resp.Value, error) {
	r.calls = append(r.calls, args)
	return r.reply, r.err
}

func newTestREPL(t *testing.T, input string, rec *recorder) (*REPL, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	r := New(rec.exec, "127.0.0.1:6379",
		WithIO(strings.NewReader(input), out),
		WithHistory(NewHistory(filepath.Join(t.TempDir(), "history"))),
	)
	return r, out
}

func TestNew(t *testing.T) {
	r := New((&recorder{}).exec, "addr")
	if r.completer == nil {
		t.Error("completer should be initialized")
	}
	if r.history == nil {
		t.Error("history should be initialized")
	}
	if r.formatter == nil {
		t.Error("formatter should be initialized")
	}
	if r.prompt != "addr> " {
		t.Errorf("prompt = %q, want %q", r.prompt, "addr> ")
	}
}

func TestREPL_Run_Exit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"exit command", "exit\n"},
		{"quit command", "quit\n"},
		{"upper case", "QUIT\n"},
		{"EOF", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			r, _ := newTestREPL(t, tt.input, rec)
			if err := r.Run(context.Background()); err != nil {
				t.Errorf("Run() returned error: %v", err)
			}
			if len(rec.calls) != 0 {
				t.Errorf("executor called %d times, want 0", len(rec.calls))
			}
		})
	}
}

func TestREPL_Run_EmptyLines(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL(t, "\n\n\nexit\n", rec)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if got := strings.Count(out.String(), "127.0.0.1:6379> "); got != 4 {
		t.Errorf("prompt count = %d, want 4", got)
	}
	if r.history.Len() != 1 {
		t.Errorf("history len = %d, want 1", r.history.Len())
	}
}

func TestREPL_Run_Command(t *testing.T) {
	rec := &recorder{reply: resp.SimpleString("PONG")}
	r, out := newTestREPL(t, "PING\nSET k \"a b\"\nexit\n", rec)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	want := [][]string{{"PING"}, {"SET", "k", "a b"}}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if !strings.Contains(out.String(), "PONG\n") {
		t.Errorf("output = %q, want PONG reply", out.String())
	}
	if r.history.Get(0) != "exit" || r.history.Get(1) != `SET k "a b"` {
		t.Errorf("history = %q, %q", r.history.Get(0), r.history.Get(1))
	}
}

func TestREPL_Run_LastLineWithoutNewline(t *testing.T) {
	rec := &recorder{reply: resp.SimpleString("PONG")}
	r, _ := newTestREPL(t, "PING", rec)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if len(rec.calls) != 1 {
		t.Errorf("executor called %d times, want 1", len(rec.calls))
	}
}

func TestREPL_Run_ExecutorError(t *testing.T) {
	rec := &recorder{err: errors.New("connection refused")}
	r, out := newTestREPL(t, "GET k\nexit\n", rec)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if !strings.Contains(out.String(), "Error: connection refused") {
		t.Errorf("output = %q, want executor error", out.String())
	}
}

func TestREPL_Run_ErrorReply(t *testing.T) {
	rec := &recorder{reply: resp.Error("ERR unknown command 'NOPE'")}
	r, out := newTestREPL(t, "NOPE\nexit\n", rec)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if !strings.Contains(out.String(), "(error) ERR unknown command 'NOPE'") {
		t.Errorf("output = %q, want error reply", out.String())
	}
}

func TestREPL_Run_UnbalancedQuotes(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL(t, "ECHO \"oops\nexit\n", rec)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("executor called %d times, want 0", len(rec.calls))
	}
	if !strings.Contains(out.String(), "unbalanced quotes") {
		t.Errorf("output = %q, want quote error", out.String())
	}
}

func TestREPL_Run_Help(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL(t, "help\nexit\n", rec)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	for _, cmd := range []string{"PING", "SET key value", "RPUSH key"} {
		if !strings.Contains(out.String(), cmd) {
			t.Errorf("help output missing %q", cmd)
		}
	}
}

func TestREPL_Run_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	r, _ := newTestREPL(t, "PING\n", rec)
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("executor called %d times, want 0", len(rec.calls))
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr bool
	}{
		{"single", "PING", []string{"PING"}, false},
		{"spaces and tabs", "SET  k\tv", []string{"SET", "k", "v"}, false},
		{"double quoted", `SET k "hello world"`, []string{"SET", "k", "hello world"}, false},
		{"escapes", `ECHO "a\r\nb"`, []string{"ECHO", "a\r\nb"}, false},
		{"escaped quote", `ECHO "say \"hi\""`, []string{"ECHO", `say "hi"`}, false},
		{"single quoted", `ECHO 'a \n b'`, []string{"ECHO", `a \n b`}, false},
		{"empty quoted", `SET k ""`, []string{"SET", "k", ""}, false},
		{"adjacent", `ECHO a"b c"`, []string{"ECHO", "ab c"}, false},
		{"unbalanced double", `ECHO "abc`, nil, true},
		{"unbalanced single", `ECHO 'abc`, nil, true},
		{"bad escape", `ECHO "\q"`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitArgs(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestREPL_Run_HelpPrefix(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL(t, "help rp\nexit\n", rec)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if !strings.Contains(out.String(), "RPUSH key value") {
		t.Errorf("output = %q, want RPUSH usage", out.String())
	}
	if strings.Contains(out.String(), "PING") {
		t.Errorf("output = %q, want only RPUSH listed", out.String())
	}
	if len(rec.calls) != 0 {
		t.Errorf("executor called %d times, want 0", len(rec.calls))
	}
}
