package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/internal/infra/confloader"
	"github.com/yndnr/respkv/internal/infra/shutdown"
	"github.com/yndnr/respkv/internal/server/config"
	"github.com/yndnr/respkv/internal/server/httpserver"
	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
	"github.com/yndnr/respkv/pkg/resp"
)

const shutdownTimeout = 30 * time.Second

var errServe = errors.New("metrics server stopped")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "respkv-server",
		Usage:   "In-memory key-value server speaking RESP2",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"RESPKV_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "RESP listen address (server.redis.addr)",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Metrics and health listen address (server.metrics.addr)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (log.level)",
			},
		},
		Action: func(c *cli.Context) error {
			configFile := c.String("config")
			overrides := flagOverrides(c)

			cfg, err := loadConfig(configFile, overrides)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			srv, err := newServer(cfg, configFile, overrides, os.Stderr)
			if err != nil {
				return err
			}
			return srv.run(c.Context)
		},
	}
}

// flagOverrides maps the flags set on the command line to config keys.
func flagOverrides(c *cli.Context) map[string]any {
	keys := map[string]string{
		"addr":         "server.redis.addr",
		"metrics-addr": "server.metrics.addr",
		"log-level":    "log.level",
	}
	overrides := make(map[string]any)
	for flag, key := range keys {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}
	return overrides
}

// loadConfig layers defaults, the config file, the environment and
// overrides, in that order, then verifies the result.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{
		confloader.WithKnownKeys(config.Keys()),
		confloader.WithOverrides(overrides),
	}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// server holds the running components of one respkv-server process.
type server struct {
	cfg        *config.ServerConfig
	configFile string
	overrides  map[string]any

	log      *slog.Logger
	store    *memory.Store
	metrics  *metric.Registry
	redis    *redisserver.Server
	http     *httpserver.Server
	watcher  *confloader.Watcher
	shutdown *shutdown.Handler
	errc     chan error
}

func newServer(cfg *config.ServerConfig, configFile string, overrides map[string]any, logOutput io.Writer) (*server, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: logOutput,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(log)

	store := memory.New(memory.WithShardCount(cfg.Storage.Shards))

	metrics := metric.NewRegistry()
	if err := metrics.Register(metric.NewCollector(func() metric.KeyspaceStats {
		s := store.Stats()
		return metric.KeyspaceStats{
			Strings:      s.Strings,
			Lists:        s.Lists,
			ExpiredTotal: s.ExpiredTotal,
		}
	})); err != nil {
		return nil, fmt.Errorf("register keyspace collector: %w", err)
	}

	handler := redisserver.NewCommandHandler(store, metrics, log)

	s := &server{
		cfg:        cfg,
		configFile: configFile,
		overrides:  overrides,
		log:        log,
		store:      store,
		metrics:    metrics,
		redis:      redisserver.New(redisConfig(&cfg.Server.Redis), handler, metrics, log),
		shutdown:   shutdown.NewHandler(shutdownTimeout, shutdown.WithLogger(log)),
		errc:       make(chan error, 1),
	}

	if cfg.Server.Metrics.Enabled {
		s.http = httpserver.New(cfg.Server.Metrics.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
			Metrics: metrics.Handler(),
			Health:  s.health,
			Logger:  log,
		}))
	}
	return s, nil
}

func redisConfig(cfg *config.RedisConfig) *redisserver.Config {
	return &redisserver.Config{
		Address:        cfg.Addr,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		RateLimit:      cfg.RateLimit,
		MaxConnections: cfg.MaxConnections,
		Decoder: resp.Decoder{
			MaxArrayLen: cfg.MaxArrayLen,
			MaxBulkLen:  cfg.MaxBulkLen,
			MaxDepth:    cfg.MaxDepth,
		},
	}
}

// health reports whether the RESP listener is up.
func (s *server) health() error {
	if !s.redis.Running() {
		return errors.New("redis listener not running")
	}
	return nil
}

// start binds every listener and registers shutdown hooks. Hooks run in
// reverse order, so the RESP listener stops before the metrics endpoint.
func (s *server) start(ctx context.Context) error {
	s.log.Info("starting respkv-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", s.configFile)

	if s.http != nil {
		if err := s.http.Start(s.errc); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		s.log.Info("metrics server listening", "addr", s.http.Addr().String())
		s.shutdown.OnShutdown("metrics server", s.http.Shutdown)
	}

	if err := s.redis.Start(ctx); err != nil {
		_ = s.shutdown.Shutdown()
		return fmt.Errorf("start redis server: %w", err)
	}
	s.shutdown.OnShutdown("redis server", s.redis.Shutdown)

	if s.configFile != "" {
		if err := s.watchConfig(); err != nil {
			s.log.Warn("config watcher disabled", "error", err)
		}
	}
	return nil
}

// watchConfig re-applies log.level whenever the config file changes.
func (s *server) watchConfig() error {
	w, err := confloader.NewWatcher(s.configFile, confloader.WithWatcherLogger(s.log))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, s.reloadConfig)
	}()

	s.watcher = w
	s.shutdown.OnShutdown("config watcher", func(context.Context) error {
		cancel()
		<-done
		return w.Close()
	})
	return nil
}

func (s *server) reloadConfig(path string) {
	cfg, err := loadConfig(path, s.overrides)
	if err != nil {
		s.log.Warn("config reload failed", "path", path, "error", err)
		return
	}
	prev := logger.Level()
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		s.log.Warn("invalid log level", "level", cfg.Log.Level, "error", err)
		return
	}
	if lvl := logger.Level(); lvl != prev {
		s.log.Info("log level changed", "from", prev, "to", lvl)
	}
}

// run starts the server and blocks until a signal, ctx cancellation or a
// metrics server failure, then shuts down.
func (s *server) run(ctx context.Context) error {
	if err := s.start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	go func() {
		select {
		case err := <-s.errc:
			cancel(fmt.Errorf("%w: %v", errServe, err))
		case <-ctx.Done():
		}
	}()

	s.log.Info("server started, press Ctrl+C to stop")
	if err := s.shutdown.Wait(ctx); err != nil {
		return err
	}
	s.log.Info("server stopped gracefully")

	if cause := context.Cause(ctx); errors.Is(cause, errServe) {
		return cause
	}
	return nil
}
