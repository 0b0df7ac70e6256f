package config

import "time"

// ServerConfig is the root configuration for respkv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis   RedisConfig   `koanf:"redis"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// RedisConfig configures the RESP listener.
type RedisConfig struct {
	Addr string `koanf:"addr"`

	// Deadlines. IdleTimeout applies while waiting for the first byte of
	// a request, ReadTimeout while the rest of the request arrives.
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`

	// RateLimit is the per-connection command rate (commands/second).
	// 0 disables rate limiting.
	RateLimit int `koanf:"rate_limit"`

	// MaxConnections caps concurrent clients. 0 means unlimited.
	MaxConnections int `koanf:"max_connections"`

	// Decoder limits.
	MaxArrayLen int `koanf:"max_array_len"`
	MaxBulkLen  int `koanf:"max_bulk_len"`
	MaxDepth    int `koanf:"max_depth"`
}

// MetricsConfig configures the HTTP endpoint serving /metrics and /healthz.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// StorageSection configures the in-memory store.
type StorageSection struct {
	// Shards is the shard count of each keyspace (power of two).
	Shards int `koanf:"shards"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
