// Package config provides centralized configuration loaded from environment
// variables, optionally layered over a YAML file. Env always wins.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/albapepper/goalbot/internal/notifications"
	"github.com/albapepper/goalbot/internal/provider/footballdata"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	DefaultCheckInterval    = 60 * time.Second
	DefaultRequestsPerMin   = 10 // football-data.org free tier
	DefaultHTTPTimeout      = 30 * time.Second
	DefaultPurgeAfterCycles = 180
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Required credentials
	APIToken      string `yaml:"api_token"`
	TelegramToken string `yaml:"telegram_token"`
	ChannelID     string `yaml:"channel_id"`

	// Match source
	BaseURL        string        `yaml:"base_url"`
	RequestsPerMin int           `yaml:"requests_per_minute"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`

	// Loop
	CheckInterval    time.Duration `yaml:"check_interval"`
	PurgeAfterCycles int           `yaml:"purge_after_cycles"`
	DispatchPolicy   string        `yaml:"dispatch_policy"`

	// Health server (disabled when empty)
	HealthAddr        string        `yaml:"health_addr"`
	CORSAllowOrigins  []string      `yaml:"cors_allow_origins"`
	RateLimitEnabled  bool          `yaml:"rate_limit_enabled"`
	RateLimitRequests int           `yaml:"rate_limit_requests"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`

	// Logging
	LogLevel string `yaml:"log_level"`
	Debug    bool   `yaml:"debug"`
}

// Defaults returns a Config with every optional field at its default.
func Defaults() *Config {
	return &Config{
		BaseURL:           footballdata.DefaultBaseURL,
		RequestsPerMin:    DefaultRequestsPerMin,
		HTTPTimeout:       DefaultHTTPTimeout,
		CheckInterval:     DefaultCheckInterval,
		PurgeAfterCycles:  DefaultPurgeAfterCycles,
		DispatchPolicy:    notifications.PolicyAbort.String(),
		CORSAllowOrigins:  []string{"*"},
		RateLimitEnabled:  true,
		RateLimitRequests: 60,
		RateLimitWindow:   60 * time.Second,
		LogLevel:          "info",
	}
}

// Load reads configuration from environment variables with sensible defaults.
// When GOALBOT_CONFIG names a YAML file it is read first.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("GOALBOT_CONFIG"))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.APIToken = envOr("API_TOKEN", envOr("FOOTBALL_DATA_API_TOKEN", cfg.APIToken))
	cfg.TelegramToken = envOr("TELEGRAM_TOKEN", envOr("TELEGRAM_BOT_TOKEN", cfg.TelegramToken))
	cfg.ChannelID = envOr("CHANNEL_ID", cfg.ChannelID)

	cfg.BaseURL = strings.TrimRight(envOr("FOOTBALL_DATA_BASE_URL", cfg.BaseURL), "/")
	cfg.RequestsPerMin = envInt("FOOTBALL_DATA_RPM", cfg.RequestsPerMin)
	cfg.HTTPTimeout = envSeconds("HTTP_TIMEOUT", cfg.HTTPTimeout)

	cfg.CheckInterval = envSeconds("CHECK_INTERVAL", cfg.CheckInterval)
	cfg.PurgeAfterCycles = envInt("PURGE_AFTER_CYCLES", cfg.PurgeAfterCycles)
	cfg.DispatchPolicy = strings.ToLower(envOr("DISPATCH_POLICY", cfg.DispatchPolicy))

	cfg.HealthAddr = envOr("HEALTH_ADDR", cfg.HealthAddr)
	cfg.CORSAllowOrigins = envList("CORS_ALLOW_ORIGINS", cfg.CORSAllowOrigins)
	cfg.RateLimitEnabled = envBool("RATE_LIMIT_ENABLED", cfg.RateLimitEnabled)
	cfg.RateLimitRequests = envInt("RATE_LIMIT_REQUESTS", cfg.RateLimitRequests)
	cfg.RateLimitWindow = envSeconds("RATE_LIMIT_WINDOW", cfg.RateLimitWindow)

	cfg.LogLevel = strings.ToLower(envOr("LOG_LEVEL", cfg.LogLevel))
	cfg.Debug = envBool("DEBUG", cfg.Debug)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing required value in a single error.
func (c *Config) Validate() error {
	var missing []string
	if c.APIToken == "" {
		missing = append(missing, "API_TOKEN")
	}
	if c.TelegramToken == "" {
		missing = append(missing, "TELEGRAM_TOKEN")
	}
	if c.ChannelID == "" {
		missing = append(missing, "CHANNEL_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.CheckInterval <= 0 {
		return fmt.Errorf("CHECK_INTERVAL must be positive, got %s", c.CheckInterval)
	}
	if _, err := notifications.ParsePolicy(c.DispatchPolicy); err != nil {
		return fmt.Errorf("DISPATCH_POLICY: %w", err)
	}
	return nil
}

// SlogLevel maps LOG_LEVEL (and DEBUG=true) onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envSeconds accepts either a bare number of seconds ("60") or a Go
// duration string ("1m30s").
func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
