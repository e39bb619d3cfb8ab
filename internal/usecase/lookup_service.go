package usecase

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/preciolens/backend/internal/domain"
	"github.com/preciolens/backend/internal/infrastructure/pricing"
)

const (
	defaultSourceLabel = "Pricely"
	defaultDeadline    = 5 * time.Second
	defaultCacheTTL    = time.Hour
)

// LookupServiceConfig holds configuration for the lookup service
type LookupServiceConfig struct {
	// SourceLabel tags the reference line item.
	SourceLabel string
	// Deadline bounds one whole resolution, scrape and fan-out included.
	Deadline     time.Duration
	CacheTTL     time.Duration
	Markup       decimal.Decimal
	RoundingStep decimal.Decimal
}

// LookupService resolves an EAN against the reference source and every store
type LookupService struct {
	reference   domain.ReferenceSource
	stores      domain.StoreQuerier
	registry    domain.EndpointRegistry
	cache       domain.CacheRepository
	calculator  PriceCalculator
	sourceLabel string
	deadline    time.Duration
	cacheTTL    time.Duration
}

// NewLookupService creates a new lookup service with dependencies.
// cache may be nil to disable caching of reference pages.
func NewLookupService(
	reference domain.ReferenceSource,
	stores domain.StoreQuerier,
	registry domain.EndpointRegistry,
	cache domain.CacheRepository,
	config LookupServiceConfig,
) *LookupService {
	if config.SourceLabel == "" {
		config.SourceLabel = defaultSourceLabel
	}
	if config.Deadline <= 0 {
		config.Deadline = defaultDeadline
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = defaultCacheTTL
	}
	// a zero-valued rule means the default rule
	if config.Markup.IsZero() && config.RoundingStep.IsZero() {
		config.Markup = DefaultMarkup
	}

	return &LookupService{
		reference:   reference,
		stores:      stores,
		registry:    registry,
		cache:       cache,
		calculator:  NewPriceCalculator(config.Markup, config.RoundingStep),
		sourceLabel: config.SourceLabel,
		deadline:    config.Deadline,
		cacheTTL:    config.CacheTTL,
	}
}

// ResolveProduct looks up ean everywhere and merges the results.
// Source failures are reported inside the resolution; only an empty EAN is an error.
// Flow: list endpoints -> {scrape, fan-out} concurrently -> suggested price -> aggregate
func (s *LookupService) ResolveProduct(ctx context.Context, ean string) (*domain.Resolution, error) {
	ean = strings.TrimSpace(ean)
	if ean == "" {
		return nil, domain.ErrInvalidRequest
	}

	ctx, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	endpoints, err := s.registry.List(ctx)
	if err != nil {
		log.Printf("[Lookup] Listing store endpoints failed: %v", err)
		endpoints = nil
	}

	var (
		wg         sync.WaitGroup
		scrape     *domain.ScrapeResult
		scrapeErr  error
		storeItems []domain.LineItem
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		scrape, scrapeErr = s.fetchReference(ctx, ean)
	}()
	go func() {
		defer wg.Done()
		storeItems = s.stores.QueryAll(ctx, ean, endpoints)
	}()
	wg.Wait()

	resolution := &domain.Resolution{EAN: ean}

	var referenceItem *domain.LineItem
	var referenceAmount *domain.PriceAmount
	if scrapeErr != nil {
		log.Printf("[Lookup] Reference fetch for %s failed: %v", ean, scrapeErr)
		resolution.ScrapeError = scrapeErr.Error()
	} else {
		resolution.ScrapeDetails = domain.ScrapeDetails{
			ImageURL:    scrape.ImageURL,
			Description: scrape.Description,
		}
		referenceAmount = parseReferencePrice(scrape)
		referenceItem = s.referenceItem(ean, scrape, referenceAmount)
	}

	if suggested, err := s.calculator.Compute(referenceAmount); err != nil {
		resolution.SuggestedPrice = domain.CalculationErrorMarker
	} else {
		resolution.SuggestedPrice = pricing.Format(suggested)
		resolution.SuggestedAmount = &suggested
	}

	resolution.Items = Aggregate(referenceItem, storeItems)

	log.Printf("[Lookup] %s resolved: %d items from %d endpoints, suggested %s",
		ean, len(resolution.Items), len(endpoints), resolution.SuggestedPrice)
	return resolution, nil
}

// referenceItem builds the reference line item, or nil when the page lacked a name or price
func (s *LookupService) referenceItem(ean string, scrape *domain.ScrapeResult, amount *domain.PriceAmount) *domain.LineItem {
	if !scrape.HasName() || !scrape.HasPrice() {
		return nil
	}

	return &domain.LineItem{
		EAN:         ean,
		ProductName: scrape.ProductName,
		Price:       amount,
		PriceText:   pricing.FormatOrMarker(amount),
		Source:      s.sourceLabel,
	}
}

func parseReferencePrice(scrape *domain.ScrapeResult) *domain.PriceAmount {
	if !scrape.HasPrice() {
		return nil
	}
	amount, err := pricing.Parse(scrape.RawPriceText)
	if err != nil {
		log.Printf("[Lookup] Reference price %q: %v", scrape.RawPriceText, err)
		return nil
	}
	return &amount
}

// fetchReference serves the scrape from cache when possible. Only successful fetches are cached.
func (s *LookupService) fetchReference(ctx context.Context, ean string) (*domain.ScrapeResult, error) {
	cacheKey := "reference:" + ean

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		return cached, nil
	}

	result, err := s.reference.Fetch(ctx, ean)
	if err != nil {
		return nil, err
	}

	if err := s.setInCache(ctx, cacheKey, result); err != nil {
		// caching is best effort
		log.Printf("[Lookup] Caching %s failed: %v", cacheKey, err)
	}
	return result, nil
}

func (s *LookupService) getFromCache(ctx context.Context, key string) (*domain.ScrapeResult, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var result domain.ScrapeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, domain.ErrCacheMiss
	}
	return &result, nil
}

func (s *LookupService) setInCache(ctx context.Context, key string, result *domain.ScrapeResult) error {
	if s.cache == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
