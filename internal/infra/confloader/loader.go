package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "RESPKV_"

// Loader merges the configuration file, the environment and overrides into
// a target struct. A Loader keeps no merged state, so Load can be called
// again to pick up a changed file.
type Loader struct {
	envPrefix string
	filePath  string
	known     map[string]string // a_b_c -> a.b_c
	overrides map[string]any
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the YAML file to read. Without it only the
// environment and overrides are applied.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithKnownKeys registers dotted keys so that environment names resolve to
// them exactly. Without it RESPKV_SERVER_REDIS_READ_TIMEOUT would become
// server.redis.read.timeout.
func WithKnownKeys(keys []string) Option {
	return func(l *Loader) {
		for _, k := range keys {
			l.known[strings.ReplaceAll(k, ".", "_")] = k
		}
	}
}

// WithOverrides sets dotted keys applied after every other source,
// typically from command-line flags.
func WithOverrides(m map[string]any) Option {
	return func(l *Loader) {
		l.overrides = m
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		envPrefix: DefaultEnvPrefix,
		known:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type layer struct {
	name     string
	provider koanf.Provider
	parser   koanf.Parser
}

func (l *Loader) layers() []layer {
	var ls []layer
	if l.filePath != "" {
		ls = append(ls, layer{"file " + l.filePath, file.Provider(l.filePath), yaml.Parser()})
	}
	ls = append(ls, layer{"env", env.Provider(l.envPrefix, ".", l.envKey), nil})
	if len(l.overrides) > 0 {
		ls = append(ls, layer{"overrides", mapProvider(l.overrides), nil})
	}
	return ls
}

// Load merges every source, lowest priority first, and unmarshals the
// result into target using koanf tags. Fields no source sets keep their
// current values, so callers pass a struct holding the defaults.
func (l *Loader) Load(target any) error {
	k := koanf.New(".")
	for _, ly := range l.layers() {
		if err := k.Load(ly.provider, ly.parser); err != nil {
			return fmt.Errorf("load %s: %w", ly.name, err)
		}
	}
	if err := k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func (l *Loader) envKey(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, l.envPrefix))
	if key, ok := l.known[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "_", ".")
}
