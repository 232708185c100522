package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/mutate/internal/errors"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "mutate.json"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "mutate"

	// DefaultTracerName is the default tracer name.
	DefaultTracerName = "github.com/vango-dev/mutate"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

// fileNames lists the configuration files searched in a directory, in order.
var fileNames = []string{ConfigFileName, "mutate.yaml", "mutate.yml"}

// Config represents a mutate configuration file.
type Config struct {
	// Capability selects native or synthetic observation.
	Capability CapabilityConfig `json:"capability" yaml:"capability"`

	// Dedupe turns per-target deduplication on or off per channel.
	Dedupe DedupeConfig `json:"dedupe" yaml:"dedupe"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// Log contains logging configuration.
	Log LogConfig `json:"log" yaml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// CapabilityConfig selects the observation strategy.
type CapabilityConfig struct {
	// Native enables native observation. When false, changes are reported
	// synthetically by the code that makes them.
	Native bool `json:"native" yaml:"native"`
}

// DedupeConfig toggles deduplication per channel.
type DedupeConfig struct {
	Insertion bool `json:"insertion" yaml:"insertion"`
	Removal   bool `json:"removal" yaml:"removal"`
	Attribute bool `json:"attribute" yaml:"attribute"`
}

// MetricsConfig contains Prometheus configuration.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Subsystem string `json:"subsystem,omitempty" yaml:"subsystem,omitempty"`
}

// TracingConfig contains OpenTelemetry configuration.
type TracingConfig struct {
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
}

// New returns a configuration with default values.
func New() *Config {
	cfg := &Config{
		Dedupe: DedupeConfig{Insertion: true, Removal: true},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from path. If path is a directory, the first of
// mutate.json, mutate.yaml and mutate.yml found in it is used.
func Load(path string) (*Config, error) {
	file, err := resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No configuration file at " + file).
				WithSuggestion("Run 'mutatebench init' to write a default mutate.json")
		}
		return nil, errors.New(errors.CodeConfigNotFound).Wrap(err)
	}

	cfg, err := parse(file, data)
	if err != nil {
		return nil, err
	}
	cfg.configPath = file
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolve(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return path, nil
	}
	for _, name := range fileNames {
		file := filepath.Join(path, name)
		if _, err := os.Stat(file); err == nil {
			return file, nil
		}
	}
	return "", errors.New(errors.CodeConfigNotFound).
		WithDetail("No mutate.json, mutate.yaml or mutate.yml found in " + path).
		WithSuggestion("Run 'mutatebench init' to write a default mutate.json")
}

func parse(file string, data []byte) (*Config, error) {
	cfg := New()
	var err error
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.CodeConfigParse).
			WithDetail("Failed to parse " + filepath.Base(file)).
			WithSuggestion("Check that " + filepath.Base(file) + " is valid").
			Wrap(err)
	}
	return cfg, nil
}

// SaveTo writes the configuration to path, as YAML when the extension asks
// for it and JSON otherwise.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := logLevels[strings.ToLower(c.Log.Level)]; !ok {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("Unknown log level " + c.Log.Level).
			WithSuggestion("Use debug, info, warn or error")
	}
	for _, name := range []string{c.Metrics.Namespace, c.Metrics.Subsystem} {
		if !validMetricName(name) {
			return errors.New(errors.CodeConfigInvalid).
				WithDetail("Invalid metrics name " + name).
				WithSuggestion("Use letters, digits and underscores, not starting with a digit")
		}
	}
	return nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	if l, ok := logLevels[strings.ToLower(c.Log.Level)]; ok {
		return l
	}
	return slog.LevelInfo
}

func validMetricName(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range fileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the nearest directory
// containing a config file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeConfigNotFound).
				WithDetail("No configuration found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
