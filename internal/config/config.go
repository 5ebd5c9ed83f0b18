package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Fetch    FetchConfig    `yaml:"fetch" envconfig:"FETCH"`
	Relay    RelayConfig    `yaml:"relay" envconfig:"RELAY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
// Disabled by default; the relay is an internal convenience surface.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// FetchConfig contains the market-data client configuration.
// Timeout applies to the archive/API fetch calls only; the cookie
// warm-up requests deliberately carry none.
type FetchConfig struct {
	BaseURL    string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://www.nseindia.com" validate:"url"`
	ArchiveURL string        `yaml:"archive_url" envconfig:"ARCHIVE_URL" default:"https://archives.nseindia.com" validate:"url"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s" validate:"gt=0"`
	OutputDir  string        `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
}

// RelayConfig contains the CSV hosting service configuration.
// APIKey and TemplateID are deployment secrets; they are validated by
// ValidateRelay at relay startup rather than Load so the fetcher can
// run without them.
type RelayConfig struct {
	HostBaseURL string        `yaml:"host_base_url" envconfig:"HOST_BASE_URL" default:"https://api.csvhost.io/v1"`
	APIKey      string        `yaml:"api_key" envconfig:"API_KEY"`
	TemplateID  string        `yaml:"template_id" envconfig:"TEMPLATE_ID"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s" validate:"gt=0"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg, *Default())
	}

	// Resolve the fetch output directory against the executable layout
	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// pick resolves one config field across the three sources. envconfig
// fills every defaulted field, so an explicitly set env var is only
// detectable as a value that differs from the default; a field still
// at its default yields to a non-zero file value.
func pick[T comparable](env, file, def T) T {
	if env != def {
		return env
	}
	var zero T
	if file != zero {
		return file
	}
	return def
}

func pickOrigins(env, file, def []string) []string {
	if !slices.Equal(env, def) {
		return env
	}
	if len(file) > 0 {
		return file
	}
	return def
}

// mergeConfigs merges env and file config against the defaults.
// Precedence: env var set via NSE_*, then config file, then default.
func mergeConfigs(fileConfig, envConfig, defaults Config) Config {
	var merged Config

	merged.Server.Port = pick(envConfig.Server.Port, fileConfig.Server.Port, defaults.Server.Port)
	merged.Server.ReadTimeout = pick(envConfig.Server.ReadTimeout, fileConfig.Server.ReadTimeout, defaults.Server.ReadTimeout)
	merged.Server.WriteTimeout = pick(envConfig.Server.WriteTimeout, fileConfig.Server.WriteTimeout, defaults.Server.WriteTimeout)
	merged.Server.IdleTimeout = pick(envConfig.Server.IdleTimeout, fileConfig.Server.IdleTimeout, defaults.Server.IdleTimeout)
	merged.Server.MaxHeaderBytes = pick(envConfig.Server.MaxHeaderBytes, fileConfig.Server.MaxHeaderBytes, defaults.Server.MaxHeaderBytes)
	merged.Server.ShutdownTimeout = pick(envConfig.Server.ShutdownTimeout, fileConfig.Server.ShutdownTimeout, defaults.Server.ShutdownTimeout)

	merged.Security.AllowedOrigins = pickOrigins(envConfig.Security.AllowedOrigins, fileConfig.Security.AllowedOrigins, defaults.Security.AllowedOrigins)
	merged.Security.EnableCORS = pick(envConfig.Security.EnableCORS, fileConfig.Security.EnableCORS, defaults.Security.EnableCORS)
	merged.Security.RateLimit.Enabled = pick(envConfig.Security.RateLimit.Enabled, fileConfig.Security.RateLimit.Enabled, defaults.Security.RateLimit.Enabled)
	merged.Security.RateLimit.RPS = pick(envConfig.Security.RateLimit.RPS, fileConfig.Security.RateLimit.RPS, defaults.Security.RateLimit.RPS)
	merged.Security.RateLimit.Burst = pick(envConfig.Security.RateLimit.Burst, fileConfig.Security.RateLimit.Burst, defaults.Security.RateLimit.Burst)

	merged.Logging.Level = pick(envConfig.Logging.Level, fileConfig.Logging.Level, defaults.Logging.Level)
	merged.Logging.Format = pick(envConfig.Logging.Format, fileConfig.Logging.Format, defaults.Logging.Format)
	merged.Logging.Output = pick(envConfig.Logging.Output, fileConfig.Logging.Output, defaults.Logging.Output)
	merged.Logging.FilePath = pick(envConfig.Logging.FilePath, fileConfig.Logging.FilePath, defaults.Logging.FilePath)
	merged.Logging.Development = pick(envConfig.Logging.Development, fileConfig.Logging.Development, defaults.Logging.Development)

	merged.Fetch.BaseURL = pick(envConfig.Fetch.BaseURL, fileConfig.Fetch.BaseURL, defaults.Fetch.BaseURL)
	merged.Fetch.ArchiveURL = pick(envConfig.Fetch.ArchiveURL, fileConfig.Fetch.ArchiveURL, defaults.Fetch.ArchiveURL)
	merged.Fetch.Timeout = pick(envConfig.Fetch.Timeout, fileConfig.Fetch.Timeout, defaults.Fetch.Timeout)
	merged.Fetch.OutputDir = pick(envConfig.Fetch.OutputDir, fileConfig.Fetch.OutputDir, defaults.Fetch.OutputDir)

	merged.Relay.HostBaseURL = pick(envConfig.Relay.HostBaseURL, fileConfig.Relay.HostBaseURL, defaults.Relay.HostBaseURL)
	merged.Relay.APIKey = pick(envConfig.Relay.APIKey, fileConfig.Relay.APIKey, defaults.Relay.APIKey)
	merged.Relay.TemplateID = pick(envConfig.Relay.TemplateID, fileConfig.Relay.TemplateID, defaults.Relay.TemplateID)
	merged.Relay.Timeout = pick(envConfig.Relay.Timeout, fileConfig.Relay.Timeout, defaults.Relay.Timeout)

	return merged
}

// resolvePaths fills the fetch output directory from the centralized
// paths system when it was not configured explicitly.
func (c *Config) resolvePaths() error {
	if c.Fetch.OutputDir != "" {
		return nil
	}

	paths, err := GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}
	c.Fetch.OutputDir = paths.DownloadsDir

	return nil
}

// validate validates the configuration using struct tags
func (c *Config) validate() error {
	// Normalize before validating: JSON is the only log format emitted
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	v := validator.New()
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("field %s failed %s validation", fe.Namespace(), fe.Tag())
		}
		return err
	}

	return nil
}

// ValidateRelay checks that the hosting-service credentials required by
// the relay are present and sane. Called at relay startup, not Load.
func (c *Config) ValidateRelay() error {
	var missing []string
	if c.Relay.APIKey == "" {
		missing = append(missing, "NSE_RELAY_API_KEY")
	}
	if c.Relay.TemplateID == "" {
		missing = append(missing, "NSE_RELAY_TEMPLATE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("relay configuration incomplete: missing %s", strings.Join(missing, ", "))
	}

	if _, err := url.ParseRequestURI(c.Relay.HostBaseURL); err != nil {
		return fmt.Errorf("relay host base URL invalid: %w", err)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 15 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: false,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Fetch: FetchConfig{
			BaseURL:    "https://www.nseindia.com",
			ArchiveURL: "https://archives.nseindia.com",
			Timeout:    30 * time.Second,
		},
		Relay: RelayConfig{
			HostBaseURL: "https://api.csvhost.io/v1",
			Timeout:     30 * time.Second,
		},
	}
}
