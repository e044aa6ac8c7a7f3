package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/runger/autocomplete/internal/filter"
)

// Bounds applied by Validate.
const (
	MinMaxRows = 1
	MaxMaxRows = 50
	MinWidth   = 8
)

// Config represents the autocomplete configuration.
type Config struct {
	UI      UIConfig      `yaml:"ui"`
	Catalog CatalogConfig `yaml:"catalog"`
	Log     LogConfig     `yaml:"log"`
}

// UIConfig holds widget defaults.
type UIConfig struct {
	Placeholder string `yaml:"placeholder"` // Input placeholder text
	MaxRows     int    `yaml:"max_rows"`    // Visible dropdown rows
	Filter      string `yaml:"filter"`      // substring, prefix or fuzzy
	DebounceMs  int    `yaml:"debounce_ms"` // Filter debounce (0 = filter every keystroke)
	Width       int    `yaml:"width"`       // Widget width in cells (0 = terminal width)
	Multiple    bool   `yaml:"multiple"`    // Multi-select by default in pick
}

// CatalogConfig holds catalog settings.
type CatalogConfig struct {
	Source       string `yaml:"source"`         // fruits, a yaml/toml/json file, or sqlite:<path>[#table]
	AsyncDelayMs int    `yaml:"async_delay_ms"` // Simulated latency for the demo's async widget
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path (overrides default)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			Placeholder: "Type to begin searching",
			MaxRows:     8,
			Filter:      "substring",
			Width:       40,
		},
		Catalog: CatalogConfig{
			Source:       "fruits",
			AsyncDelayMs: 500,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads the configuration from the default location.
func Load() (*Config, error) {
	return LoadFromFile(DefaultPaths().ConfigFile())
}

// LoadFromFile loads configuration from path. A missing file yields the
// defaults with environment overrides applied.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save saves the configuration to the default location.
func (c *Config) Save() error {
	return c.SaveToFile(DefaultPaths().ConfigFile())
}

// SaveToFile writes the configuration to path, creating its directory.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Get returns the value of a "section.key" setting.
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "ui":
		return c.getUIField(field)
	case "catalog":
		return c.getCatalogField(field)
	case "log":
		return c.getLogField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set updates a "section.key" setting after validating the value.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "ui":
		return c.setUIField(field, value)
	case "catalog":
		return c.setCatalogField(field, value)
	case "log":
		return c.setLogField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func splitKey(key string) (string, string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func (c *Config) getUIField(field string) (string, error) {
	switch field {
	case "placeholder":
		return c.UI.Placeholder, nil
	case "max_rows":
		return strconv.Itoa(c.UI.MaxRows), nil
	case "filter":
		return c.UI.Filter, nil
	case "debounce_ms":
		return strconv.Itoa(c.UI.DebounceMs), nil
	case "width":
		return strconv.Itoa(c.UI.Width), nil
	case "multiple":
		return strconv.FormatBool(c.UI.Multiple), nil
	default:
		return "", fmt.Errorf("unknown field: ui.%s", field)
	}
}

func (c *Config) setUIField(field, value string) error {
	switch field {
	case "placeholder":
		c.UI.Placeholder = value
	case "max_rows":
		v, err := parseNonNegative(field, value)
		if err != nil {
			return err
		}
		if v < MinMaxRows {
			return fmt.Errorf("invalid max_rows: must be at least %d", MinMaxRows)
		}
		c.UI.MaxRows = v
	case "filter":
		if _, err := filter.ByName(value); err != nil {
			return fmt.Errorf("invalid filter: %s (must be one of %s)", value, strings.Join(filter.Names(), ", "))
		}
		c.UI.Filter = value
	case "debounce_ms":
		v, err := parseNonNegative(field, value)
		if err != nil {
			return err
		}
		c.UI.DebounceMs = v
	case "width":
		v, err := parseNonNegative(field, value)
		if err != nil {
			return err
		}
		c.UI.Width = v
	case "multiple":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for multiple: %w", err)
		}
		c.UI.Multiple = v
	default:
		return fmt.Errorf("unknown field: ui.%s", field)
	}
	return nil
}

func (c *Config) getCatalogField(field string) (string, error) {
	switch field {
	case "source":
		return c.Catalog.Source, nil
	case "async_delay_ms":
		return strconv.Itoa(c.Catalog.AsyncDelayMs), nil
	default:
		return "", fmt.Errorf("unknown field: catalog.%s", field)
	}
}

func (c *Config) setCatalogField(field, value string) error {
	switch field {
	case "source":
		c.Catalog.Source = value
	case "async_delay_ms":
		v, err := parseNonNegative(field, value)
		if err != nil {
			return err
		}
		c.Catalog.AsyncDelayMs = v
	default:
		return fmt.Errorf("unknown field: catalog.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "level":
		return c.Log.Level, nil
	case "file":
		return c.Log.File, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", value)
		}
		c.Log.Level = value
	case "file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

func parseNonNegative(field, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", field, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid %s: must be non-negative", field)
	}
	return v, nil
}

// Validate checks the configuration. Out-of-range row counts and widths
// are clamped rather than rejected.
func (c *Config) Validate() error {
	if c.UI.MaxRows < MinMaxRows {
		c.UI.MaxRows = MinMaxRows
	}
	if c.UI.MaxRows > MaxMaxRows {
		c.UI.MaxRows = MaxMaxRows
	}
	if c.UI.Width != 0 && c.UI.Width < MinWidth {
		c.UI.Width = MinWidth
	}

	if c.UI.DebounceMs < 0 {
		return errors.New("ui.debounce_ms must be >= 0")
	}
	if c.Catalog.AsyncDelayMs < 0 {
		return errors.New("catalog.async_delay_ms must be >= 0")
	}
	if _, err := filter.ByName(c.UI.Filter); err != nil {
		return fmt.Errorf("ui.filter: %w", err)
	}
	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("AUTOCOMPLETE_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("AUTOCOMPLETE_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
	if v := os.Getenv("AUTOCOMPLETE_CATALOG"); v != "" {
		c.Catalog.Source = v
	}
}

// LogFile returns the configured log file, or the default under paths.
func (c *Config) LogFile(paths *Paths) string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return paths.LogFile()
}

// ListKeys returns every settable configuration key.
func ListKeys() []string {
	return []string{
		"ui.placeholder",
		"ui.max_rows",
		"ui.filter",
		"ui.debounce_ms",
		"ui.width",
		"ui.multiple",
		"catalog.source",
		"catalog.async_delay_ms",
		"log.level",
		"log.file",
	}
}
