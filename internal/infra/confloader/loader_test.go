package confloader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type testConfig struct {
	Server struct {
		Redis struct {
			Addr        string        `koanf:"addr"`
			ReadTimeout time.Duration `koanf:"read_timeout"`
			RateLimit   int           `koanf:"rate_limit"`
			Read        struct {
				Timeout string `koanf:"timeout"`
			} `koanf:"read"`
		} `koanf:"redis"`
		Port string `koanf:"port"`
	} `koanf:"server"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

var testKeys = []string{
	"server.redis.addr",
	"server.redis.read_timeout",
	"server.redis.rate_limit",
	"log.level",
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

// ============================================================
// Test: NewLoader
// ============================================================

func TestNewLoader(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
		WithKnownKeys([]string{"server.redis.read_timeout"}),
		WithOverrides(map[string]any{"log.level": "debug"}),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if got := l.known["server_redis_read_timeout"]; got != "server.redis.read_timeout" {
		t.Errorf("known[server_redis_read_timeout] = %q", got)
	}

	var names []string
	for _, ly := range l.layers() {
		names = append(names, ly.name)
	}
	if got, want := strings.Join(names, ","), "file /path/to/config.yaml,env,overrides"; got != want {
		t.Errorf("layers = %q, want %q", got, want)
	}

	if got := len(NewLoader().layers()); got != 1 {
		t.Errorf("default layers = %d, want env only", got)
	}
}

// ============================================================
// Test: Load
// ============================================================

func TestLoader_Load_File(t *testing.T) {
	path := writeConfig(t, `
server:
  redis:
    addr: "0.0.0.0:6380"
    rate_limit: 50
    read_timeout: 2s
`)

	var cfg testConfig
	if err := NewLoader(WithConfigFile(path)).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Redis.Addr != "0.0.0.0:6380" {
		t.Errorf("Addr = %q, want %q", cfg.Server.Redis.Addr, "0.0.0.0:6380")
	}
	if cfg.Server.Redis.RateLimit != 50 {
		t.Errorf("RateLimit = %d, want 50", cfg.Server.Redis.RateLimit)
	}
	if cfg.Server.Redis.ReadTimeout != 2*time.Second {
		t.Errorf("ReadTimeout = %v, want 2s", cfg.Server.Redis.ReadTimeout)
	}
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing file", "/nonexistent/config.yaml", "load file /nonexistent/config.yaml"},
		{"bad yaml", "", "load file"},
		{"wrong type", "", "unmarshal config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			switch tt.name {
			case "bad yaml":
				path = writeConfig(t, "server: [unclosed\n")
			case "wrong type":
				path = writeConfig(t, "server:\n  redis:\n    rate_limit: lots\n")
			}

			var cfg testConfig
			err := NewLoader(WithConfigFile(path)).Load(&cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoader_Load_Env(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option
		env    map[string]string
		verify func(*testConfig) string
		want   string
	}{
		{
			name: "simple key",
			env:  map[string]string{"RESPKV_SERVER_REDIS_ADDR": "127.0.0.1:7000"},
			verify: func(c *testConfig) string {
				return c.Server.Redis.Addr
			},
			want: "127.0.0.1:7000",
		},
		{
			name: "known key with underscore",
			opts: []Option{WithKnownKeys(testKeys)},
			env:  map[string]string{"RESPKV_SERVER_REDIS_READ_TIMEOUT": "5s"},
			verify: func(c *testConfig) string {
				return c.Server.Redis.ReadTimeout.String()
			},
			want: "5s",
		},
		{
			name: "unknown key splits on every underscore",
			env:  map[string]string{"RESPKV_SERVER_REDIS_READ_TIMEOUT": "5s"},
			verify: func(c *testConfig) string {
				return c.Server.Redis.Read.Timeout
			},
			want: "5s",
		},
		{
			name: "custom prefix",
			opts: []Option{WithEnvPrefix("MYAPP_")},
			env:  map[string]string{"MYAPP_SERVER_PORT": "9090", "RESPKV_SERVER_PORT": "1"},
			verify: func(c *testConfig) string {
				return c.Server.Port
			},
			want: "9090",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			var cfg testConfig
			if err := NewLoader(tt.opts...).Load(&cfg); err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got := tt.verify(&cfg); got != tt.want {
				t.Errorf("value = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeConfig(t, `
server:
  redis:
    addr: "from-file:6379"
    rate_limit: 10
log:
  level: "warn"
`)
	t.Setenv("RESPKV_SERVER_REDIS_ADDR", "from-env:6379")
	t.Setenv("RESPKV_LOG_LEVEL", "error")

	l := NewLoader(
		WithConfigFile(path),
		WithKnownKeys(testKeys),
		WithOverrides(map[string]any{"log.level": "debug"}),
	)

	var cfg testConfig
	cfg.Server.Redis.ReadTimeout = 30 * time.Second
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Redis.Addr != "from-env:6379" {
		t.Errorf("Addr = %q, want env to override file", cfg.Server.Redis.Addr)
	}
	if cfg.Server.Redis.RateLimit != 10 {
		t.Errorf("RateLimit = %d, want file value 10", cfg.Server.Redis.RateLimit)
	}
	if cfg.Server.Redis.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want default kept", cfg.Server.Redis.ReadTimeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q, want override to win over env", cfg.Log.Level)
	}
}

func TestLoader_Load_Repeated(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	l := NewLoader(WithConfigFile(path))

	var first testConfig
	if err := l.Load(&first); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("server:\n  port: \"8080\"\n"), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	var second testConfig
	if err := l.Load(&second); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if second.Log.Level != "" {
		t.Errorf("Level = %q after rewrite, want stale value dropped", second.Log.Level)
	}
	if second.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", second.Server.Port)
	}
}
