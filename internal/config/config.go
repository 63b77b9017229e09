// Package config loads Hyperplex settings from ~/.hyperplex/config.yaml,
// a .env file and HYPERPLEX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fentz26/hyperplex/internal/models"
	"github.com/fentz26/hyperplex/internal/roster"
	"github.com/fentz26/hyperplex/internal/toolkit"
)

// Environment overrides.
const (
	EnvSeed    = "HYPERPLEX_SEED"
	EnvLatency = "HYPERPLEX_LATENCY"
	EnvJournal = "HYPERPLEX_JOURNAL"
	EnvLogFile = "HYPERPLEX_LOG_FILE"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full Hyperplex configuration.
type Config struct {
	// Seed fixes the engine's random source. Zero means time-seeded.
	Seed            int64 `yaml:"seed"`
	HistoryCapacity int   `yaml:"history_capacity"`
	MaxToolCalls    int   `yaml:"max_tool_calls"`

	Latency LatencyConfig `yaml:"latency"`

	// Roster replaces the built-in agents when non-empty.
	Roster []models.Agent `yaml:"roster,omitempty"`

	Tools *toolkit.Config `yaml:"tools"`

	Journal JournalConfig `yaml:"journal"`
	Log     LogConfig     `yaml:"log"`
}

// LatencyConfig holds duration strings such as "450ms".
type LatencyConfig struct {
	Step   string `yaml:"step"`
	Jitter string `yaml:"jitter"`
}

// JournalConfig controls the sqlite audit journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	Path    string `yaml:"path"`
	Verbose bool   `yaml:"verbose"`
}

// Dir returns the Hyperplex home directory, ~/.hyperplex.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hyperplex"
	}
	return filepath.Join(home, ".hyperplex")
}

// DefaultPath returns ~/.hyperplex/config.yaml.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		HistoryCapacity: 12,
		MaxToolCalls:    3,
		Latency: LatencyConfig{
			Step:   "450ms",
			Jitter: "350ms",
		},
		Tools: toolkit.DefaultConfig(),
		Journal: JournalConfig{
			Enabled: true,
			Path:    filepath.Join(dir, "journal.db"),
		},
		Log: LogConfig{
			Path: filepath.Join(dir, "logs", "hyperplex.log"),
		},
	}
}

// Load reads path, falling back to defaults when it does not exist.
// Fields missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Tools == nil {
		cfg.Tools = toolkit.DefaultConfig()
	}
	return cfg, nil
}

// Save writes cfg to path as yaml.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrInvalid)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped and existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg from HYPERPLEX_* variables.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvSeed)); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvSeed, v, err)
		}
		c.Seed = seed
	}
	if v := strings.TrimSpace(os.Getenv(EnvLatency)); v != "" {
		if isOff(v) {
			c.Latency = LatencyConfig{Step: "0s", Jitter: "0s"}
		} else {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvLatency, v, err)
			}
			c.Latency.Step = v
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournal)); v != "" {
		if isOff(v) {
			c.Journal.Enabled = false
		} else {
			c.Journal.Enabled = true
			c.Journal.Path = v
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		c.Log.Path = v
	}
	return nil
}

func isOff(v string) bool {
	switch strings.ToLower(v) {
	case "0", "off", "false", "none", "no":
		return true
	}
	return false
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.HistoryCapacity < 1 {
		return fmt.Errorf("%w: history_capacity must be at least 1", ErrInvalid)
	}
	if c.MaxToolCalls < 0 {
		return fmt.Errorf("%w: max_tool_calls must not be negative", ErrInvalid)
	}
	if _, _, err := c.Latency.Durations(); err != nil {
		return err
	}
	if len(c.Roster) > 0 {
		if _, err := roster.New(c.Roster); err != nil {
			return fmt.Errorf("%w: roster: %v", ErrInvalid, err)
		}
	}
	if c.Tools != nil {
		if err := c.Tools.Validate(); err != nil {
			return fmt.Errorf("%w: tools: %v", ErrInvalid, err)
		}
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		return fmt.Errorf("%w: journal.path is required when the journal is enabled", ErrInvalid)
	}
	return nil
}

// Durations parses the step and jitter strings. Empty strings mean zero.
func (l LatencyConfig) Durations() (step, jitter time.Duration, err error) {
	if step, err = parseDuration("latency.step", l.Step); err != nil {
		return 0, 0, err
	}
	if jitter, err = parseDuration("latency.jitter", l.Jitter); err != nil {
		return 0, 0, err
	}
	return step, jitter, nil
}

func parseDuration(field, v string) (time.Duration, error) {
	if strings.TrimSpace(v) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalid, field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalid, field)
	}
	return d, nil
}

// BuildRoster returns the configured roster, or the built-in one.
func (c *Config) BuildRoster() (*roster.Roster, error) {
	if len(c.Roster) == 0 {
		return roster.New(roster.Defaults())
	}
	return roster.New(c.Roster)
}
