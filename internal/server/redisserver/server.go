package redisserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/respkv/internal/telemetry/metric"
	"github.com/yndnr/respkv/pkg/resp"
)

// Config holds the Redis server configuration.
type Config struct {
	// Address is the TCP listen address.
	Address string
	// ReadTimeout bounds how long the rest of a request may take once its
	// first byte has arrived (default: 30s).
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing a response (default: 30s).
	WriteTimeout time.Duration
	// IdleTimeout is how long a connection may wait between requests
	// (default: 5m).
	IdleTimeout time.Duration
	// RateLimit is the maximum number of commands per second per
	// connection. 0 disables rate limiting.
	RateLimit int
	// MaxConnections caps concurrent clients. 0 means unlimited.
	MaxConnections int
	// Decoder holds the frame limits applied to requests.
	Decoder resp.Decoder
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:      "127.0.0.1:6379",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
		Decoder:      resp.DefaultDecoder,
	}
}

// Server represents the Redis protocol server.
type Server struct {
	cfg     *Config
	handler *CommandHandler
	logger  *slog.Logger
	metrics *metric.Registry

	mu    sync.Mutex
	ln    net.Listener
	conns map[net.Conn]struct{}

	running atomic.Bool
	active  atomic.Int64
	wg      sync.WaitGroup
}

// New creates a new Redis protocol server. metrics may be nil.
func New(cfg *Config, handler *CommandHandler, metrics *metric.Registry, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		metrics: metrics,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Start binds the listener and serves connections in the background.
// Addr is valid once Start returns without error.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.running.Store(true)

	s.logger.Info("redis server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
			s.logger.Error("redis server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Running reports whether the server is accepting connections.
func (s *Server) Running() bool {
	return s.running.Load()
}

// Shutdown closes the listener and all open connections, then waits for
// connection goroutines to exit or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var err error
	s.mu.Lock()
	if s.ln != nil {
		if cerr := s.ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	}
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		if ok, full := s.track(c); !ok {
			if full {
				s.reject(c)
			} else {
				_ = c.Close()
			}
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(c)
			s.serveConn(ctx, c)
		}()
	}
}

// track registers c unless the server is shutting down or full.
func (s *Server) track(c net.Conn) (ok, full bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		return false, false
	}
	if s.cfg.MaxConnections > 0 && len(s.conns) >= s.cfg.MaxConnections {
		return false, true
	}
	s.conns[c] = struct{}{}
	s.active.Add(1)
	if s.metrics != nil {
		s.metrics.ConnOpened()
	}
	return true, false
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.active.Add(-1)
	if s.metrics != nil {
		s.metrics.ConnClosed()
	}
}

func (s *Server) reject(c net.Conn) {
	defer c.Close()
	if s.metrics != nil {
		s.metrics.ConnRejected()
	}
	s.logger.Warn("connection rejected", "remote", c.RemoteAddr().String(), "active", s.active.Load())
	_ = c.SetWriteDeadline(time.Now().Add(s.writeTimeout()))
	_, _ = c.Write(resp.Encode(resp.Error("ERR max number of clients reached")))
}

// ActiveConnections returns the number of connections being served.
func (s *Server) ActiveConnections() int {
	return int(s.active.Load())
}

func (s *Server) serveConn(ctx context.Context, c net.Conn) {
	defer c.Close()

	log := s.logger.With("conn_id", ulid.Make().String(), "remote", c.RemoteAddr().String())
	log.Debug("connection opened")
	defer log.Debug("connection closed")

	var limiter *rate.Limiter
	if s.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateLimit)
	}

	r := resp.NewReaderWithDecoder(c, s.cfg.Decoder)
	var out []byte

	// Set once per request, when its first byte is buffered, so trickling
	// bytes cannot extend it.
	requestDeadline := false

	for {
		if ctx.Err() != nil {
			return
		}

		req, err := r.Next()
		if errors.Is(err, resp.ErrIncomplete) {
			// Nothing buffered means we are between requests.
			var deadline time.Time
			switch {
			case r.Buffered() == 0:
				deadline = time.Now().Add(s.idleTimeout())
			case !requestDeadline:
				deadline = time.Now().Add(s.readTimeout())
				requestDeadline = true
			}
			if !deadline.IsZero() {
				if err := c.SetReadDeadline(deadline); err != nil {
					return
				}
			}
			if err := r.Fill(); err != nil {
				if errors.Is(err, resp.ErrLimitExceeded) {
					s.protocolError(c, log, err)
					return
				}
				s.logReadError(log, err)
				return
			}
			continue
		}
		if err != nil {
			s.protocolError(c, log, err)
			return
		}
		requestDeadline = false

		var reply resp.Value
		if limiter != nil && !limiter.Allow() {
			if s.metrics != nil {
				s.metrics.IncRateLimited()
			}
			reply = resp.Error("ERR rate limit exceeded")
		} else {
			reply = s.handler.Handle(req)
		}

		// Replies may alias the read buffer, so encode before the next Fill.
		out = resp.AppendValue(out[:0], reply)
		if err := s.write(c, out); err != nil {
			log.Debug("connection write error", "error", err)
			return
		}
	}
}

func (s *Server) write(c net.Conn, b []byte) error {
	if err := c.SetWriteDeadline(time.Now().Add(s.writeTimeout())); err != nil {
		return err
	}
	_, err := c.Write(b)
	return err
}

// protocolError answers a malformed frame and leaves the caller to close
// the connection.
func (s *Server) protocolError(c net.Conn, log *slog.Logger, err error) {
	if s.metrics != nil {
		s.metrics.IncProtocolErrors()
	}
	log.Warn("protocol error", "error", err)
	_ = s.write(c, resp.Encode(protocolErrorReply(err)))
}

func protocolErrorReply(err error) resp.Value {
	detail := strings.TrimPrefix(err.Error(), resp.ErrProtocol.Error()+": ")
	detail = strings.TrimPrefix(detail, "resp: ")
	return resp.Error("ERR protocol error: " + detail)
}

func (s *Server) logReadError(log *slog.Logger, err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		log.Debug("connection timed out")
		return
	}
	log.Debug("connection read error", "error", err)
}

func (s *Server) readTimeout() time.Duration {
	if s.cfg.ReadTimeout > 0 {
		return s.cfg.ReadTimeout
	}
	return 30 * time.Second
}

func (s *Server) writeTimeout() time.Duration {
	if s.cfg.WriteTimeout > 0 {
		return s.cfg.WriteTimeout
	}
	return 30 * time.Second
}

func (s *Server) idleTimeout() time.Duration {
	if s.cfg.IdleTimeout > 0 {
		return s.cfg.IdleTimeout
	}
	return 5 * time.Minute
}
