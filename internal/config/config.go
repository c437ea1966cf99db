package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/QwQ3213/ACELimiter/internal/errors"
)

// DefaultIntervalMs is the monitor period used when none is configured
const DefaultIntervalMs = 30000

// EnvPrefix is the prefix of environment variable overrides (ACELIMITER_VERBOSE, ...)
const EnvPrefix = "ACELIMITER"

// Config represents the application configuration
type Config struct {
	// Monitor loop settings
	Monitor MonitorConfig `mapstructure:"monitor"`

	// Path of the JSON-lines activity journal; empty disables it
	JournalPath string `mapstructure:"journalPath"`

	// Whether to enable verbose logging
	Verbose bool `mapstructure:"verbose"`
}

// MonitorConfig contains the background loop settings
type MonitorConfig struct {
	// Period between scans in milliseconds
	IntervalMs int64 `mapstructure:"intervalMs"`

	// Whether `run` starts the loop immediately
	AutoStart bool `mapstructure:"autoStart"`
}

// Interval returns the configured period as a duration
func (m MonitorConfig) Interval() time.Duration {
	return time.Duration(m.IntervalMs) * time.Millisecond
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			IntervalMs: DefaultIntervalMs,
			AutoStart:  true,
		},
	}
}

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "acelimiter", "config.toml")
}

// LoadConfig loads the configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("toml")

	configDir := filepath.Dir(configPath)
	configName := strings.TrimSuffix(filepath.Base(configPath), filepath.Ext(configPath))

	v.SetConfigName(configName)
	v.AddConfigPath(configDir)

	// Environment overrides, e.g. ACELIMITER_MONITOR_INTERVALMS
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setConfigDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, errors.Wrapf(errors.ErrNotFound, "config file not found at %s", configPath)
		}
		return nil, errors.ConfigError("failed to read config file", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.ConfigError("failed to parse config file", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, errors.ConfigError("invalid configuration", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist
func LoadOrDefault(configPath string) (*Config, error) {
	cfg, err := LoadConfig(configPath)
	if errors.Is(err, errors.ErrNotFound) {
		return Default(), nil
	}
	return cfg, err
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("monitor.intervalMs", DefaultIntervalMs)
	v.SetDefault("monitor.autoStart", true)
	v.SetDefault("journalPath", "")
	v.SetDefault("verbose", false)
}

// validateConfig checks if the loaded configuration is valid
func validateConfig(cfg *Config) error {
	if cfg.Monitor.IntervalMs <= 0 {
		return errors.ValidationError("monitor.intervalMs must be positive")
	}
	return nil
}

// CreateDefaultConfig creates a default configuration file at the specified path
func CreateDefaultConfig(path string) error {
	v := viper.New()
	v.SetConfigType("toml")

	def := Default()
	v.Set("monitor.intervalMs", def.Monitor.IntervalMs)
	v.Set("monitor.autoStart", def.Monitor.AutoStart)
	v.Set("journalPath", def.JournalPath)
	v.Set("verbose", def.Verbose)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.ConfigError("failed to create config directory", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return errors.ConfigError("failed to write config file", err)
	}

	return nil
}
