package config

import (
	"time"

	"github.com/yndnr/respkv/pkg/cmap"
	"github.com/yndnr/respkv/pkg/resp"
)

// Default configuration values.
const (
	DefaultRedisAddr    = "127.0.0.1:6379"
	DefaultMetricsAddr  = "127.0.0.1:9121"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 5 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr:         DefaultRedisAddr,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
				IdleTimeout:  DefaultIdleTimeout,
				MaxArrayLen:  resp.DefaultMaxArrayLen,
				MaxBulkLen:   resp.DefaultMaxBulkLen,
				MaxDepth:     resp.DefaultMaxDepth,
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Addr:    DefaultMetricsAddr,
			},
		},
		Storage: StorageSection{
			Shards: cmap.DefaultShardCount,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
