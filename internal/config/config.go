// Package config loads casemetrics settings from casemetrics.yaml, a .env file
// and CASEMETRICS_* environment variables, in that order of increasing
// precedence. Command flags are applied on top by the cmd package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"nyayadrishti/casemetrics/internal/metrics"
)

// FileName is the config file looked for when walking up from the working directory.
const FileName = "casemetrics.yaml"

// EnvConfig names the config file explicitly.
const EnvConfig = "CASEMETRICS_CONFIG"

// Config holds everything the CLI and server need to run.
type Config struct {
	Data      DataConfig     `yaml:"data"`
	DBPath    string         `yaml:"db_path"`
	Params    metrics.Params `yaml:"params"`
	Log       LogConfig      `yaml:"log"`
	Server    ServerConfig   `yaml:"server"`
	CacheSize int            `yaml:"cache_size"`
}

// DataConfig points at the input tables.
type DataConfig struct {
	Cases    string `yaml:"cases"`
	Hearings string `yaml:"hearings"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Cases:    "cases.csv",
			Hearings: "hearings.csv",
		},
		DBPath: defaultDBPath(),
		Params: metrics.DefaultParams(),
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server:    ServerConfig{Addr: ":8080"},
		CacheSize: 64,
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".casemetrics.db"
	}
	return filepath.Join(home, ".local", "share", "casemetrics", "casemetrics.db")
}

// Load reads path (if non-empty and present), then the .env file, then
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	// .env never overrides variables already set in the environment
	_ = godotenv.Load()

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Discover finds the config file using priority: env > flag > walk-up.
// It returns "" when there is none, which Load treats as defaults.
func Discover(flagPath string) (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv(EnvConfig); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("config not found at %s: %s", EnvConfig, envPath)
	}

	// 2. CLI flag
	if flagPath != "" {
		if _, err := os.Stat(flagPath); err == nil {
			return flagPath, nil
		}
		return "", fmt.Errorf("config not found at --config path: %s", flagPath)
	}

	// 3. Walk up from CWD
	dir, err := os.Getwd()
	if err != nil {
		return "", nil
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) applyEnvOverrides() error {
	strs := []struct {
		key string
		dst *string
	}{
		{"CASEMETRICS_CASES", &c.Data.Cases},
		{"CASEMETRICS_HEARINGS", &c.Data.Hearings},
		{"CASEMETRICS_DB", &c.DBPath},
		{"CASEMETRICS_LOG_LEVEL", &c.Log.Level},
		{"CASEMETRICS_LOG_FORMAT", &c.Log.Format},
		{"CASEMETRICS_LISTEN_ADDR", &c.Server.Addr},
	}
	for _, s := range strs {
		if v := os.Getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"CASEMETRICS_CACHE_SIZE", &c.CacheSize},
		{"CASEMETRICS_HEARING_WEIGHT", &c.Params.HearingWeight},
		{"CASEMETRICS_YEAR_WEIGHT", &c.Params.YearWeight},
		{"CASEMETRICS_BASELINE_DELAY", &c.Params.BaselineDelay},
	}
	for _, s := range ints {
		if v := os.Getenv(s.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parse %s: %w", s.key, err)
			}
			*s.dst = n
		}
	}

	if v := os.Getenv("CASEMETRICS_CONTAMINATION"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse CASEMETRICS_CONTAMINATION: %w", err)
		}
		c.Params.Contamination = f
	}
	return nil
}

var validFormats = []string{"json", "console"}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	valid := false
	for _, f := range validFormats {
		if c.Log.Format == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Log.Format, validFormats)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("invalid cache size: %d", c.CacheSize)
	}
	return nil
}
