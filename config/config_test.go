package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// requiredEnv sets the settings that have no defaults
func requiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PRECIOLENS_STORES_USER", "sa")
	t.Setenv("PRECIOLENS_STORES_DATABASE", "Comercio")
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when only required env vars set", func(t *testing.T) {
		t.Chdir(t.TempDir())
		requiredEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Reference.BaseURL != "https://pricely.ar" {
			t.Errorf("Reference.BaseURL = %s, want https://pricely.ar", cfg.Reference.BaseURL)
		}
		if cfg.Reference.SourceLabel != "Pricely" {
			t.Errorf("Reference.SourceLabel = %s, want Pricely", cfg.Reference.SourceLabel)
		}
		if cfg.Reference.Timeout != 0 {
			t.Errorf("Reference.Timeout = %v, want 0", cfg.Reference.Timeout)
		}
		if cfg.Stores.Timeout != time.Second {
			t.Errorf("Stores.Timeout = %v, want 1s", cfg.Stores.Timeout)
		}
		if cfg.Stores.MaxConcurrency != 8 {
			t.Errorf("Stores.MaxConcurrency = %d, want 8", cfg.Stores.MaxConcurrency)
		}
		if cfg.Registry.Path != "servers.json" {
			t.Errorf("Registry.Path = %s, want servers.json", cfg.Registry.Path)
		}
		if cfg.Lookup.Deadline != 5*time.Second {
			t.Errorf("Lookup.Deadline = %v, want 5s", cfg.Lookup.Deadline)
		}
		if cfg.Pricing.Markup != 0.10 {
			t.Errorf("Pricing.Markup = %v, want 0.10", cfg.Pricing.Markup)
		}
		if cfg.Pricing.RoundingStep != 50 {
			t.Errorf("Pricing.RoundingStep = %d, want 50", cfg.Pricing.RoundingStep)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.Reference != 60 {
			t.Errorf("RateLimit.Reference = %d, want 60", cfg.RateLimit.Reference)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		t.Chdir(t.TempDir())
		requiredEnv(t)
		t.Setenv("PRECIOLENS_SERVER_PORT", "9090")
		t.Setenv("PRECIOLENS_SERVER_ENVIRONMENT", "production")
		t.Setenv("PRECIOLENS_STORES_PASSWORD", "secret")
		t.Setenv("PRECIOLENS_STORES_TIMEOUT", "200ms")
		t.Setenv("PRECIOLENS_LOOKUP_DEADLINE", "3s")
		t.Setenv("PRECIOLENS_PRICING_MARKUP", "0.25")
		t.Setenv("PRECIOLENS_PRICING_ROUNDING_STEP", "100")
		t.Setenv("PRECIOLENS_REGISTRY_PATH", "/var/lib/preciolens/servers.json")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Stores.User != "sa" || cfg.Stores.Password != "secret" || cfg.Stores.Database != "Comercio" {
			t.Errorf("Stores credentials = %+v", cfg.Stores)
		}
		if cfg.Stores.Timeout != 200*time.Millisecond {
			t.Errorf("Stores.Timeout = %v, want 200ms", cfg.Stores.Timeout)
		}
		if cfg.Lookup.Deadline != 3*time.Second {
			t.Errorf("Lookup.Deadline = %v, want 3s", cfg.Lookup.Deadline)
		}
		if cfg.Pricing.Markup != 0.25 {
			t.Errorf("Pricing.Markup = %v, want 0.25", cfg.Pricing.Markup)
		}
		if cfg.Pricing.RoundingStep != 100 {
			t.Errorf("Pricing.RoundingStep = %d, want 100", cfg.Pricing.RoundingStep)
		}
		if cfg.Registry.Path != "/var/lib/preciolens/servers.json" {
			t.Errorf("Registry.Path = %s", cfg.Registry.Path)
		}
	})

	t.Run("reads config.yaml from the working directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		yaml := `
server:
  port: "7070"
stores:
  user: reader
  password: pw
  database: Sucursales
  timeout: 500ms
reference:
  base_url: https://mirror.example.com
`
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Server.Port != "7070" {
			t.Errorf("Server.Port = %s, want 7070", cfg.Server.Port)
		}
		if cfg.Stores.Database != "Sucursales" {
			t.Errorf("Stores.Database = %s, want Sucursales", cfg.Stores.Database)
		}
		if cfg.Stores.Timeout != 500*time.Millisecond {
			t.Errorf("Stores.Timeout = %v, want 500ms", cfg.Stores.Timeout)
		}
		if cfg.Reference.BaseURL != "https://mirror.example.com" {
			t.Errorf("Reference.BaseURL = %s", cfg.Reference.BaseURL)
		}
	})

	t.Run("loads variables from a .env file", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		t.Setenv("PRECIOLENS_STORES_USER", "")
		t.Setenv("PRECIOLENS_STORES_DATABASE", "")
		os.Unsetenv("PRECIOLENS_STORES_USER")
		os.Unsetenv("PRECIOLENS_STORES_DATABASE")

		env := "PRECIOLENS_STORES_USER=envuser\nPRECIOLENS_STORES_DATABASE=envdb\n"
		if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Stores.User != "envuser" || cfg.Stores.Database != "envdb" {
			t.Errorf("Stores = %+v, want values from .env", cfg.Stores)
		}
	})

	t.Run("fails when store user is missing", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("PRECIOLENS_STORES_USER", "")
		t.Setenv("PRECIOLENS_STORES_DATABASE", "Comercio")

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for missing store user")
		}
		if !strings.Contains(err.Error(), "store user is required") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("fails on malformed config file", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		requiredEnv(t)
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := Load(); err == nil {
			t.Fatal("Load() error = nil, want error for malformed config")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Stores: StoresConfig{
				User:           "sa",
				Database:       "Comercio",
				Timeout:        time.Second,
				StatusTimeout:  time.Second,
				MaxConcurrency: 4,
			},
			Registry: RegistryConfig{Path: "servers.json"},
			Lookup:   LookupConfig{Deadline: 5 * time.Second},
			Pricing:  PricingConfig{Markup: 0.1, RoundingStep: 50},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid configuration", mutate: func(c *Config) {}, wantErr: false},
		{name: "zero markup is allowed", mutate: func(c *Config) { c.Pricing.Markup = 0 }, wantErr: false},
		{name: "missing database", mutate: func(c *Config) { c.Stores.Database = "" }, wantErr: true},
		{name: "zero store timeout", mutate: func(c *Config) { c.Stores.Timeout = 0 }, wantErr: true},
		{name: "zero concurrency", mutate: func(c *Config) { c.Stores.MaxConcurrency = 0 }, wantErr: true},
		{name: "negative reference timeout", mutate: func(c *Config) { c.Reference.Timeout = -time.Second }, wantErr: true},
		{name: "zero deadline", mutate: func(c *Config) { c.Lookup.Deadline = 0 }, wantErr: true},
		{name: "negative markup", mutate: func(c *Config) { c.Pricing.Markup = -0.1 }, wantErr: true},
		{name: "zero rounding step", mutate: func(c *Config) { c.Pricing.RoundingStep = 0 }, wantErr: true},
		{name: "empty registry path", mutate: func(c *Config) { c.Registry.Path = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := validate(&cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
