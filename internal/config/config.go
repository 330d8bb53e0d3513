// Package config holds the toolchain constants and the decaf.yaml project
// configuration.
//
// A decaf.yaml looks like:
//
//	output: yaml
//	color: auto
//	index: .decaf/index.db
//	watch:
//	  debounce: 250ms
//	serve:
//	  addr: 127.0.0.1:7070
//
// Every field is optional; missing fields get the defaults below.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultIndexPath = ".decaf/index.db"
	DefaultDebounce  = 250 * time.Millisecond
	DefaultAddr      = "127.0.0.1:7070"
)

// Config represents the top-level decaf.yaml configuration.
type Config struct {
	// Output is the default format for printed scopes: text, yaml, json or proto.
	Output string `yaml:"output,omitempty"`

	// Color controls ANSI coloring of diagnostics: auto, always or never.
	// With auto, color is used only when stderr is a terminal.
	Color string `yaml:"color,omitempty"`

	// Index is the path of the SQLite symbol index, relative to the config file.
	Index string `yaml:"index,omitempty"`

	Watch WatchConfig `yaml:"watch,omitempty"`
	Serve ServeConfig `yaml:"serve,omitempty"`

	// Dir is the directory the config was loaded from. Not serialized.
	Dir string `yaml:"-"`
}

type WatchConfig struct {
	// Debounce is how long the watcher waits for more events before re-resolving.
	Debounce Duration `yaml:"debounce,omitempty"`
}

type ServeConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Duration is a time.Duration that unmarshals from strings like "250ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Default returns the configuration used when no decaf.yaml is present.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a decaf.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// ParseConfig parses decaf.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig walks up from dir looking for decaf.yaml.
// It returns an empty path and no error when none is found.
func FindConfig(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(abs, ConfigFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", nil
		}
		abs = parent
	}
}

// IndexPath returns the index location resolved against the config directory.
func (c *Config) IndexPath() string {
	if filepath.IsAbs(c.Index) || c.Dir == "" {
		return c.Index
	}
	return filepath.Join(c.Dir, c.Index)
}

func (c *Config) validate(path string) error {
	switch c.Output {
	case "", FormatText, FormatYAML, FormatJSON, FormatProto:
	default:
		return fmt.Errorf("%s: unknown output format %q (want text, yaml, json or proto)", path, c.Output)
	}
	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: unknown color mode %q (want auto, always or never)", path, c.Color)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("%s: watch.debounce must not be negative", path)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Output == "" {
		c.Output = FormatText
	}
	if c.Color == "" {
		c.Color = ColorAuto
	}
	if c.Index == "" {
		c.Index = DefaultIndexPath
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(DefaultDebounce)
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultAddr
	}
}
