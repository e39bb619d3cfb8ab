package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Reference ReferenceConfig
	Stores    StoresConfig
	Registry  RegistryConfig
	Lookup    LookupConfig
	Pricing   PricingConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ReferenceConfig holds the reference-pricing site configuration
type ReferenceConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	SourceLabel string        `mapstructure:"source_label"`
	Timeout     time.Duration `mapstructure:"timeout"` // 0 = no client timeout
}

// StoresConfig holds the credentials shared by every store endpoint and fan-out limits
type StoresConfig struct {
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Database       string        `mapstructure:"database"`
	Timeout        time.Duration `mapstructure:"timeout"`
	StatusTimeout  time.Duration `mapstructure:"status_timeout"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
}

// RegistryConfig locates the store endpoint registry file
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LookupConfig bounds one whole lookup
type LookupConfig struct {
	Deadline time.Duration `mapstructure:"deadline"`
}

// PricingConfig holds the suggested price rule
type PricingConfig struct {
	Markup       float64 `mapstructure:"markup"`
	RoundingStep int64   `mapstructure:"rounding_step"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Reference int `mapstructure:"reference"` // requests per minute to the reference site
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "error reading .env file")
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/preciolens/")

	// PRECIOLENS_STORES_USER -> stores.user
	v.SetEnvPrefix("PRECIOLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "error reading config file")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}

	if err := validate(&config); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key gets a default
// so that environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	v.SetDefault("reference.base_url", "https://pricely.ar")
	v.SetDefault("reference.source_label", "Pricely")
	v.SetDefault("reference.timeout", "0s")

	v.SetDefault("stores.user", "")
	v.SetDefault("stores.password", "")
	v.SetDefault("stores.database", "")
	v.SetDefault("stores.timeout", "1s")
	v.SetDefault("stores.status_timeout", "1s")
	v.SetDefault("stores.max_concurrency", 8)

	v.SetDefault("registry.path", "servers.json")

	v.SetDefault("lookup.deadline", "5s")

	v.SetDefault("pricing.markup", 0.10)
	v.SetDefault("pricing.rounding_step", 50)

	v.SetDefault("cache.ttl", "1h")

	v.SetDefault("ratelimit.reference", 60)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Stores.User == "" {
		return errors.New("store user is required (set PRECIOLENS_STORES_USER)")
	}
	if config.Stores.Database == "" {
		return errors.New("store database is required (set PRECIOLENS_STORES_DATABASE)")
	}
	if config.Stores.Timeout <= 0 || config.Stores.StatusTimeout <= 0 {
		return errors.New("store timeouts must be positive")
	}
	if config.Stores.MaxConcurrency <= 0 {
		return errors.Errorf("stores.max_concurrency must be positive, got: %d", config.Stores.MaxConcurrency)
	}
	if config.Reference.Timeout < 0 {
		return errors.New("reference timeout cannot be negative")
	}
	if config.Lookup.Deadline <= 0 {
		return errors.New("lookup deadline must be positive")
	}
	if config.Pricing.Markup < 0 {
		return errors.Errorf("pricing markup cannot be negative, got: %v", config.Pricing.Markup)
	}
	if config.Pricing.RoundingStep <= 0 {
		return errors.Errorf("pricing rounding step must be positive, got: %d", config.Pricing.RoundingStep)
	}
	if config.Registry.Path == "" {
		return errors.New("registry path is required")
	}
	return nil
}
