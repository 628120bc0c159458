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
const DefaultEnvPrefix = "LINEKV_"

// envNestingSeparator separates path segments in environment variable
// names. Single underscores stay part of the key.
const envNestingSeparator = "__"

// Loader layers configuration sources over the defaults already present in
// the target struct: file, then environment, then overrides.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
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

// WithConfigFile sets the YAML configuration file.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithOverrides sets values that win over every other source, keyed by
// dotted path ("server.listen.addr"). Command-line flags use it.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) {
		l.overrides = values
	}
}

// NewLoader creates a configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every source and unmarshals into target. Keys no source sets
// keep the value target already holds.
func (l *Loader) Load(target any) error {
	if err := l.loadFile(l.filePath); err != nil {
		return err
	}
	if err := l.loadEnv(); err != nil {
		return err
	}
	if err := l.loadMap(l.overrides); err != nil {
		return err
	}
	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// Reload forgets previously loaded values and runs Load again, so keys
// removed from the file fall back to target's defaults.
func (l *Loader) Reload(target any) error {
	l.k = koanf.New(".")
	return l.Load(target)
}

// FilePath returns the configuration file, or "" when there is none.
func (l *Loader) FilePath() string {
	return l.filePath
}

func (l *Loader) loadFile(path string) error {
	if path == "" {
		return nil
	}
	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load config file %s: %w", path, err)
	}
	return nil
}

// loadEnv maps LINEKV_SERVER__LISTEN__MAX_CONNECTIONS to
// server.listen.max_connections.
func (l *Loader) loadEnv() error {
	if err := l.k.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

func (l *Loader) envKey(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, l.envPrefix))
	return strings.ReplaceAll(name, envNestingSeparator, ".")
}

func (l *Loader) loadMap(values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	if err := l.k.Load(mapProvider(values), nil); err != nil {
		return fmt.Errorf("load overrides: %w", err)
	}
	return nil
}
