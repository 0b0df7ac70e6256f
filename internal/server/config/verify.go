package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// Verify validates the configuration and returns every problem found.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyRedis(&cfg.Server.Redis),
		verifyMetrics(&cfg.Server.Metrics),
		verifyStorage(&cfg.Storage),
		verifyLog(&cfg.Log),
	)
}

func verifyRedis(cfg *RedisConfig) error {
	var errs []error
	if err := verifyAddr("server.redis.addr", cfg.Addr); err != nil {
		errs = append(errs, err)
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.redis.read_timeout must be positive"))
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.redis.write_timeout must be positive"))
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, errors.New("server.redis.idle_timeout must be positive"))
	}
	if cfg.RateLimit < 0 {
		errs = append(errs, errors.New("server.redis.rate_limit must not be negative"))
	}
	if cfg.MaxConnections < 0 {
		errs = append(errs, errors.New("server.redis.max_connections must not be negative"))
	}
	if cfg.MaxArrayLen < 1 {
		errs = append(errs, errors.New("server.redis.max_array_len must be at least 1"))
	}
	if cfg.MaxBulkLen < 1 {
		errs = append(errs, errors.New("server.redis.max_bulk_len must be at least 1"))
	}
	if cfg.MaxDepth < 1 {
		errs = append(errs, errors.New("server.redis.max_depth must be at least 1"))
	}
	return errors.Join(errs...)
}

func verifyMetrics(cfg *MetricsConfig) error {
	if !cfg.Enabled {
		return nil
	}
	return verifyAddr("server.metrics.addr", cfg.Addr)
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.Shards < 1 || cfg.Shards&(cfg.Shards-1) != 0 {
		return fmt.Errorf("storage.shards must be a power of two, got %d", cfg.Shards)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of json, text", cfg.Format))
	}
	return errors.Join(errs...)
}

func verifyAddr(key, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", key)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
