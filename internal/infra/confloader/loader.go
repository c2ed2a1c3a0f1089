// Package confloader provides configuration loading mechanism.
//
// It uses Koanf for configuration loading from multiple sources with
// priority: Flag > Env > File > Default.
package confloader

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "AUTHSHELL_"

// envNestingSeparator separates path segments in environment variable names.
// A single underscore stays part of the key, so AUTHSHELL_API__BASE_URL maps
// to api.base_url.
const envNestingSeparator = "__"

// Loader loads configuration from multiple sources.
type Loader struct {
	k            *koanf.Koanf
	envPrefix    string
	filePath     string
	fileOptional bool
	loaded       bool
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithOptionalFile makes a missing configuration file a no-op instead of an
// error. The CLI uses it for the default ~/.authshell/config.yaml.
func WithOptionalFile() Option {
	return func(l *Loader) {
		l.fileOptional = true
	}
}

// NewLoader creates a new configuration loader.
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

// Load loads configuration from all sources and unmarshals into target.
// Loading order (later sources override earlier):
//  1. Default values (already present in target)
//  2. Configuration file (YAML)
//  3. Environment variables
//
// Flags are applied by the caller with LoadMap followed by Unmarshal.
func (l *Loader) Load(target any) error {
	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			if !(l.fileOptional && errors.Is(err, fs.ErrNotExist)) {
				return fmt.Errorf("load config file: %w", err)
			}
		}
	}

	if err := l.LoadEnv(); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	l.loaded = true
	return nil
}

// LoadFile loads configuration from a YAML file.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}

	return nil
}

// LoadEnv loads configuration from environment variables.
// Example: AUTHSHELL_LOG__LEVEL=debug -> log.level
func (l *Loader) LoadEnv() error {
	transform := func(s string) string {
		s = strings.TrimPrefix(s, l.envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, envNestingSeparator, ".")
	}

	if err := l.k.Load(env.Provider(l.envPrefix, ".", transform), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	return nil
}

// LoadMap loads configuration from a map (flags or tests).
// Keys use dotted paths, e.g. "api.base_url".
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal unmarshals the loaded configuration into the target struct.
// Uses koanf tags for struct field mapping.
func (l *Loader) Unmarshal(target any) error {
	return l.k.UnmarshalWithConf("", target, koanf.UnmarshalConf{Tag: "koanf"})
}

// GetString returns a string value from the configuration.
func (l *Loader) GetString(key string) string {
	return l.k.String(key)
}

// GetBool returns a bool value from the configuration.
func (l *Loader) GetBool(key string) bool {
	return l.k.Bool(key)
}

// IsLoaded returns true if configuration has been loaded.
func (l *Loader) IsLoaded() bool {
	return l.loaded
}

// FilePath returns the configured file path, if any.
func (l *Loader) FilePath() string {
	return l.filePath
}

// Keys returns all configuration keys.
func (l *Loader) Keys() []string {
	return l.k.Keys()
}
