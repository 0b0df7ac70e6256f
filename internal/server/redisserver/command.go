package redisserver

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/yndnr/respkv/internal/telemetry/metric"
	"github.com/yndnr/respkv/pkg/resp"
)

// Store is the keyspace the command handler reads and mutates.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, expireAt time.Time)
	RPush(key string, values ...[]byte) int
	Now() time.Time
}

// CommandError is a request-level failure. It is answered with an Error
// reply and never closes the connection.
type CommandError struct {
	Msg string
}

func (e *CommandError) Error() string {
	return e.Msg
}

var (
	errSyntax        = &CommandError{Msg: "ERR syntax error"}
	errNotInteger    = &CommandError{Msg: "ERR value is not an integer or out of range"}
	errInvalidExpire = &CommandError{Msg: "ERR invalid expire time in 'SET' command"}
)

func errWrongArgs(cmd string) error {
	return &CommandError{Msg: "ERR wrong number of arguments for '" + cmd + "' command"}
}

func errProtocol(format string, args ...any) error {
	return &CommandError{Msg: "ERR protocol error: " + fmt.Sprintf(format, args...)}
}

// formatRedisError converts an error to a Redis error string.
// CommandErrors carry their full text; anything else gets an "ERR " prefix.
func formatRedisError(err error) string {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Msg
	}
	return "ERR " + err.Error()
}

const (
	statusOK    = "ok"
	statusError = "error"

	// unknownLabel keeps the command label bounded for unrecognized names.
	unknownLabel = "unknown"
)

type commandFunc func(h *CommandHandler, args [][]byte) (resp.Value, error)

var commands = map[string]commandFunc{
	"PING":  (*CommandHandler).handlePing,
	"ECHO":  (*CommandHandler).handleEcho,
	"SET":   (*CommandHandler).handleSet,
	"GET":   (*CommandHandler).handleGet,
	"RPUSH": (*CommandHandler).handleRPush,
}

// CommandHandler maps decoded requests to store operations.
type CommandHandler struct {
	store   Store
	metrics *metric.Registry
	logger  *slog.Logger
}

// NewCommandHandler creates a CommandHandler. metrics may be nil.
func NewCommandHandler(store Store, metrics *metric.Registry, logger *slog.Logger) *CommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandHandler{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle executes one request and returns its reply. Failures are reported
// as Error replies.
func (h *CommandHandler) Handle(req resp.Value) resp.Value {
	start := time.Now()

	label := unknownLabel
	reply, err := func() (resp.Value, error) {
		args, err := commandArgs(req)
		if err != nil {
			return resp.Value{}, err
		}
		name := string(args[0])
		fn, ok := commands[name]
		if !ok {
			return resp.Value{}, &CommandError{Msg: "ERR unknown command '" + name + "'"}
		}
		label = name
		return fn(h, args)
	}()

	status := statusOK
	if err != nil {
		status = statusError
		reply = resp.Error(formatRedisError(err))
		h.logger.Debug("command failed", "command", label, "error", err)
	}
	if h.metrics != nil {
		h.metrics.RecordCommand(label, status, time.Since(start).Seconds())
	}
	return reply
}

// commandArgs checks that req is a non-empty array of bulk strings and
// returns their payloads.
func commandArgs(req resp.Value) ([][]byte, error) {
	if req.Kind != resp.KindArray {
		return nil, errProtocol("expected array, got %s", req.Kind)
	}
	if req.Null || len(req.Elems) == 0 {
		return nil, errProtocol("empty command")
	}
	args := make([][]byte, len(req.Elems))
	for i, e := range req.Elems {
		if e.Kind != resp.KindBulkString {
			return nil, errProtocol("expected bulk string at argument %d, got %s", i, e.Kind)
		}
		if e.Null {
			return nil, errProtocol("null bulk string at argument %d", i)
		}
		args[i] = e.Data
	}
	return args, nil
}

func (h *CommandHandler) handlePing(args [][]byte) (resp.Value, error) {
	if len(args) != 1 {
		return resp.Value{}, errWrongArgs("PING")
	}
	return resp.SimpleString("PONG"), nil
}

// ECHO <message>
func (h *CommandHandler) handleEcho(args [][]byte) (resp.Value, error) {
	if len(args) != 2 {
		return resp.Value{}, errWrongArgs("ECHO")
	}
	return resp.Bulk(args[1]), nil
}

// SET <key> <value> [PX milliseconds | EX seconds]
func (h *CommandHandler) handleSet(args [][]byte) (resp.Value, error) {
	if len(args) != 3 && len(args) != 5 {
		if len(args) == 4 {
			return resp.Value{}, errSyntax
		}
		return resp.Value{}, errWrongArgs("SET")
	}

	key := string(args[1])
	var expireAt time.Time
	if len(args) == 5 {
		var unit time.Duration
		switch string(args[3]) {
		case "PX":
			unit = time.Millisecond
		case "EX":
			unit = time.Second
		default:
			return resp.Value{}, errSyntax
		}
		ttl, err := parseExpire(args[4], unit)
		if err != nil {
			return resp.Value{}, err
		}
		expireAt = h.store.Now().Add(ttl)
	}

	h.store.Set(key, args[2], expireAt)
	h.logger.Debug("key set", "key", key, "expire_at", expireAt)
	return resp.SimpleString("OK"), nil
}

// parseExpire converts a PX/EX argument into a positive duration.
func parseExpire(arg []byte, unit time.Duration) (time.Duration, error) {
	n, err := strconv.ParseInt(string(arg), 10, 64)
	if err != nil {
		return 0, errNotInteger
	}
	if n <= 0 || n > math.MaxInt64/int64(unit) {
		return 0, errInvalidExpire
	}
	return time.Duration(n) * unit, nil
}

// GET <key>
func (h *CommandHandler) handleGet(args [][]byte) (resp.Value, error) {
	if len(args) != 2 {
		return resp.Value{}, errWrongArgs("GET")
	}
	value, ok := h.store.Get(string(args[1]))
	if !ok {
		return resp.NullBulk(), nil
	}
	return resp.Bulk(value), nil
}

// RPUSH <key> <value> [value ...]
func (h *CommandHandler) handleRPush(args [][]byte) (resp.Value, error) {
	if len(args) < 3 {
		return resp.Value{}, errWrongArgs("RPUSH")
	}
	n := h.store.RPush(string(args[1]), args[2:]...)
	return resp.Integer(int64(n)), nil
}
