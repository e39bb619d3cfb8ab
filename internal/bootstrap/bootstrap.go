// Package bootstrap wires the infrastructure and usecase layers from configuration.
package bootstrap

import (
	"log"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/preciolens/backend/config"
	"github.com/preciolens/backend/internal/infrastructure/cache"
	"github.com/preciolens/backend/internal/infrastructure/reference"
	"github.com/preciolens/backend/internal/infrastructure/registry"
	"github.com/preciolens/backend/internal/infrastructure/stores"
	"github.com/preciolens/backend/internal/usecase"
)

// Services are the ready-to-use application services
type Services struct {
	Lookup  *usecase.LookupService
	Servers *usecase.ServerService

	cache *cache.MemoryCache
}

// Close releases background resources
func (s *Services) Close() {
	s.cache.Close()
}

// Done is closed once Close has released the background resources
func (s *Services) Done() <-chan struct{} {
	return s.cache.Done()
}

// Build creates every dependency described by cfg
func Build(cfg *config.Config) (*Services, error) {
	return BuildWithConnector(cfg, stores.NewSQLServerConnector(stores.Credentials{
		User:     cfg.Stores.User,
		Password: cfg.Stores.Password,
		Database: cfg.Stores.Database,
	}, cfg.Stores.Timeout))
}

// BuildWithConnector is Build with a custom store connector
func BuildWithConnector(cfg *config.Config, connector stores.Connector) (*Services, error) {
	servers, err := registry.NewFileRegistry(cfg.Registry.Path)
	if err != nil {
		return nil, errors.Wrap(err, "load server registry")
	}

	referenceClient := reference.NewClient(reference.Config{
		BaseURL:           cfg.Reference.BaseURL,
		Timeout:           cfg.Reference.Timeout,
		RequestsPerMinute: cfg.RateLimit.Reference,
	})
	if cfg.Server.Environment == "development" {
		referenceClient.SetDebug(true)
		log.Printf("Reference client debug mode enabled")
	}

	fanOut := stores.NewFanOut(connector, stores.Options{
		EndpointTimeout: cfg.Stores.Timeout,
		StatusTimeout:   cfg.Stores.StatusTimeout,
		MaxConcurrency:  cfg.Stores.MaxConcurrency,
	})

	memoryCache := cache.NewMemoryCache()

	lookup := usecase.NewLookupService(referenceClient, fanOut, servers, memoryCache, usecase.LookupServiceConfig{
		SourceLabel:  cfg.Reference.SourceLabel,
		Deadline:     cfg.Lookup.Deadline,
		CacheTTL:     cfg.Cache.TTL,
		Markup:       decimal.NewFromFloat(cfg.Pricing.Markup),
		RoundingStep: decimal.NewFromInt(cfg.Pricing.RoundingStep),
	})

	log.Printf("Reference: %s (timeout %s, %d req/min)", cfg.Reference.BaseURL, cfg.Reference.Timeout, cfg.RateLimit.Reference)
	log.Printf("Stores: database=%s user=%s timeout=%s concurrency=%d",
		cfg.Stores.Database, cfg.Stores.User, cfg.Stores.Timeout, cfg.Stores.MaxConcurrency)
	log.Printf("Pricing: markup=%.2f step=%d, lookup deadline %s", cfg.Pricing.Markup, cfg.Pricing.RoundingStep, cfg.Lookup.Deadline)

	return &Services{
		Lookup:  lookup,
		Servers: usecase.NewServerService(servers, fanOut),
		cache:   memoryCache,
	}, nil
}
