// Package config resolves the settings shared by all mx tools.
//
// Precedence, highest first: command line flags, MX_* environment variables,
// the YAML file, built-in defaults. A .env file in the working directory is
// merged into the environment before anything is read.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/technosupport/mxtools/internal/mobotix"
	"github.com/technosupport/mxtools/internal/platform/paths"
)

type NATSConfig struct {
	URL      string `yaml:"url"`
	Subject  string `yaml:"subject"`
	RetryMax int    `yaml:"retry_max"`
}

type Config struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Timeout in seconds. Zero selects the tool's default.
	Timeout     int        `yaml:"timeout"`
	SSL         bool       `yaml:"ssl"`
	Workers     int        `yaml:"workers"`
	LogLevel    string     `yaml:"log_level"`
	Color       bool       `yaml:"color"`
	MetricsFile string     `yaml:"metrics_file"`
	WorkDir     string     `yaml:"workdir"`
	NATS        NATSConfig `yaml:"nats"`
}

// Per-tool request timeouts.
var toolTimeouts = map[string]time.Duration{
	"mxapi":     3 * time.Second,
	"mxmic":     3 * time.Second,
	"mxpgm":     30 * time.Second,
	"mxbackup":  10 * time.Second,
	"mxrestore": 120 * time.Second,
}

func Defaults() Config {
	return Config{
		Username: mobotix.DefaultUsername,
		Password: mobotix.DefaultPassword,
		Workers:  1,
		LogLevel: "info",
		NATS: NATSConfig{
			RetryMax: 3,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path and then the
// environment. An empty path falls back to MX_CONFIG and ./mxtools.yaml.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Defaults()
	if p := paths.ResolveConfigPath(path); p != "" {
		if err := cfg.LoadFile(p); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML document at path.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays MX_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("MX_USERNAME", &c.Username)
	str("MX_PASSWORD", &c.Password)
	str("MX_LOG_LEVEL", &c.LogLevel)
	str("MX_METRICS_FILE", &c.MetricsFile)
	str("MX_WORKDIR", &c.WorkDir)
	str("MX_NATS_URL", &c.NATS.URL)
	str("MX_NATS_SUBJECT", &c.NATS.Subject)

	if v, ok := lookup("MX_TIMEOUT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MX_TIMEOUT: timeout must be an integer: %q", v)
		}
		c.Timeout = n
	}
	if v, ok := lookup("MX_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MX_WORKERS: must be an integer: %q", v)
		}
		c.Workers = n
	}
	if v, ok := lookup("MX_SSL"); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("MX_SSL: must be a boolean: %q", v)
		}
		c.SSL = b
	}
	return nil
}

// TimeoutFor returns the request timeout for tool.
func (c Config) TimeoutFor(tool string) time.Duration {
	if c.Timeout > 0 {
		return time.Duration(c.Timeout) * time.Second
	}
	if d, ok := toolTimeouts[tool]; ok {
		return d
	}
	return 3 * time.Second
}

// Validate rejects values no tool can run with.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %d", c.Timeout)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1: %d", c.Workers)
	}
	return nil
}
