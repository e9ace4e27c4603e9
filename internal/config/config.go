package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSourceURL is the published CSV the dashboards were built around.
const DefaultSourceURL = "https://raw.githubusercontent.com/LI2023yan/data/main/Top%2050%20Animation%20Movies%20and%20TV%20Shows.csv"

// DefaultPort is the port the dashboard listens on when nothing overrides it.
const DefaultPort = 8068

// PortEnv overrides server.port when set.
const PortEnv = "TOONBOARD_PORT"

// Dashboard variants
const (
	VariantBasic       = "basic"
	VariantInteractive = "interactive"
)

// Config represents the application configuration
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Download  DownloadConfig  `yaml:"download"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SourceConfig describes where the dataset comes from and how it is fetched
type SourceConfig struct {
	URL              string `yaml:"url"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	MaxAttempts      int    `yaml:"max_attempts"`
	InitialBackoffMs int    `yaml:"initial_backoff_ms"`
	Watch            bool   `yaml:"watch"`
	DebounceMs       int    `yaml:"debounce_ms"`
}

// CacheConfig holds the raw snapshot cache settings
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"`
	TTLHours int    `yaml:"ttl_hours"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host                     string `yaml:"host"`
	Port                     int    `yaml:"port"`
	ReadHeaderTimeoutSeconds int    `yaml:"read_header_timeout_seconds"`
	ShutdownTimeoutSeconds   int    `yaml:"shutdown_timeout_seconds"`
}

// DashboardConfig selects the page layout
type DashboardConfig struct {
	Variant string `yaml:"variant"`
	Title   string `yaml:"title"`
}

// DownloadConfig controls the CSV download trigger
type DownloadConfig struct {
	Filename string `yaml:"filename"`
	// HonorFilter exports the live checklist selection instead of every
	// startup genre.
	HonorFilter bool `yaml:"honor_filter"`
}

// LoggingConfig holds slog handler settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		if err := cfg.applyEnv(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// Expand ~ to home directory if present
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML content, expanding environment variables first, and
// validates the result.
func Parse(data []byte) (*Config, error) {
	expandedData := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Source.URL == "" {
		c.Source.URL = DefaultSourceURL
	}
	if c.Source.TimeoutSeconds <= 0 {
		c.Source.TimeoutSeconds = 30
	}
	// One attempt: a failed startup load is fatal, not retried.
	if c.Source.MaxAttempts <= 0 {
		c.Source.MaxAttempts = 1
	}
	if c.Source.InitialBackoffMs <= 0 {
		c.Source.InitialBackoffMs = 1000
	}
	if c.Source.DebounceMs <= 0 {
		c.Source.DebounceMs = 500
	}

	if c.Cache.Path == "" {
		c.Cache.Path = "./data/cache.db"
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24
	}

	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadHeaderTimeoutSeconds <= 0 {
		c.Server.ReadHeaderTimeoutSeconds = 10
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		c.Server.ShutdownTimeoutSeconds = 5
	}

	if c.Dashboard.Variant == "" {
		c.Dashboard.Variant = VariantInteractive
	}
	if c.Dashboard.Title == "" {
		c.Dashboard.Title = "Top 20 Animation Movies"
	}

	if c.Download.Filename == "" {
		c.Download.Filename = "selected_data.csv"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

func (c *Config) applyEnv() error {
	raw := strings.TrimSpace(os.Getenv(PortEnv))
	if raw == "" {
		return nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("%s must be a port number, got %q", PortEnv, raw)
	}
	c.Server.Port = port
	return nil
}

// Validate checks field ranges and enumerations
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}

	switch c.Dashboard.Variant {
	case VariantBasic, VariantInteractive:
	default:
		return fmt.Errorf("dashboard.variant must be %q or %q, got %q",
			VariantBasic, VariantInteractive, c.Dashboard.Variant)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if strings.ContainsAny(c.Download.Filename, `/\`) {
		return fmt.Errorf("download.filename must be a bare file name, got %q", c.Download.Filename)
	}

	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
