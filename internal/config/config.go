package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config represents the complete service configuration
type Config struct {
	Server   ServerConfig `toml:"server"`
	Database DBConfig     `toml:"database"`
	Redis    RedisConfig  `toml:"redis"`
	Sync     SyncConfig   `toml:"sync"`
	Woo      WooConfig    `toml:"woocommerce"`
}

type ServerConfig struct {
	Port      string `toml:"port"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

type DBConfig struct {
	URL string `toml:"url"`
}

// RedisConfig is optional. An empty Addr switches sync locking to postgres leases.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type SyncConfig struct {
	IntervalMinutes   int    `toml:"interval_minutes"`
	RunTimeoutSeconds int    `toml:"run_timeout_seconds"`
	LockTTLSeconds    int    `toml:"lock_ttl_seconds"`
	ProductMode       string `toml:"product_mode"`
	Concurrency       int    `toml:"concurrency"`
}

type WooConfig struct {
	PerPage        int    `toml:"per_page"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
	RetryDelayMS   int    `toml:"retry_delay_ms"`
	AuthMode       string `toml:"auth_mode"`
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", LogLevel: "info", LogFormat: "json"},
		Sync: SyncConfig{
			IntervalMinutes:   0,
			RunTimeoutSeconds: 600,
			LockTTLSeconds:    900,
			ProductMode:       "replace",
			Concurrency:       2,
		},
		Woo: WooConfig{
			PerPage:        100,
			TimeoutSeconds: 30,
			MaxRetries:     3,
			RetryDelayMS:   1000,
			AuthMode:       "basic",
		},
	}
}

// Load reads an optional .env file, then the TOML file named by SYNC_CONFIG_FILE,
// then environment variables. Later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("SYNC_CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.LogLevel = getEnv("LOG_LEVEL", c.Server.LogLevel)
	c.Server.LogFormat = getEnv("LOG_FORMAT", c.Server.LogFormat)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)

	c.Sync.ProductMode = getEnv("SYNC_PRODUCT_MODE", c.Sync.ProductMode)
	c.Woo.AuthMode = getEnv("WOO_AUTH_MODE", c.Woo.AuthMode)

	ints := []struct {
		key string
		dst *int
	}{
		{"REDIS_DB", &c.Redis.DB},
		{"SYNC_INTERVAL_MINUTES", &c.Sync.IntervalMinutes},
		{"SYNC_RUN_TIMEOUT_SECONDS", &c.Sync.RunTimeoutSeconds},
		{"SYNC_LOCK_TTL_SECONDS", &c.Sync.LockTTLSeconds},
		{"SYNC_CONCURRENCY", &c.Sync.Concurrency},
		{"WOO_PER_PAGE", &c.Woo.PerPage},
		{"WOO_TIMEOUT_SECONDS", &c.Woo.TimeoutSeconds},
		{"WOO_MAX_RETRIES", &c.Woo.MaxRetries},
		{"WOO_RETRY_DELAY_MS", &c.Woo.RetryDelayMS},
	}
	for _, v := range ints {
		n, err := getEnvAsInt(v.key, *v.dst)
		if err != nil {
			return err
		}
		*v.dst = n
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.URL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	switch c.Sync.ProductMode {
	case "replace", "stamped":
	default:
		errs = append(errs, fmt.Errorf("invalid product mode %q", c.Sync.ProductMode))
	}
	switch c.Woo.AuthMode {
	case "basic", "query":
	default:
		errs = append(errs, fmt.Errorf("invalid woocommerce auth mode %q", c.Woo.AuthMode))
	}
	switch c.Server.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q", c.Server.LogFormat))
	}
	if c.Woo.PerPage < 1 || c.Woo.PerPage > 100 {
		errs = append(errs, fmt.Errorf("woocommerce per_page must be between 1 and 100, got %d", c.Woo.PerPage))
	}
	if c.Woo.MaxRetries < 0 {
		errs = append(errs, errors.New("woocommerce max_retries must not be negative"))
	}
	if c.Woo.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("woocommerce timeout_seconds must be positive"))
	}
	if c.Sync.IntervalMinutes < 0 {
		errs = append(errs, errors.New("sync interval_minutes must not be negative"))
	}
	if c.Sync.Concurrency < 1 {
		errs = append(errs, errors.New("sync concurrency must be at least 1"))
	}
	if c.Sync.LockTTLSeconds <= 0 || c.Sync.RunTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("sync lock ttl and run timeout must be positive"))
	} else if c.Sync.LockTTLSeconds < c.Sync.RunTimeoutSeconds {
		errs = append(errs, fmt.Errorf("sync lock_ttl_seconds (%d) must be at least run_timeout_seconds (%d)",
			c.Sync.LockTTLSeconds, c.Sync.RunTimeoutSeconds))
	}
	return errors.Join(errs...)
}

func (c *Config) RunTimeout() time.Duration {
	return time.Duration(c.Sync.RunTimeoutSeconds) * time.Second
}

func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.Sync.LockTTLSeconds) * time.Second
}

func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.Sync.IntervalMinutes) * time.Minute
}

func (c *Config) WooTimeout() time.Duration {
	return time.Duration(c.Woo.TimeoutSeconds) * time.Second
}

func (c *Config) WooRetryDelay() time.Duration {
	return time.Duration(c.Woo.RetryDelayMS) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
