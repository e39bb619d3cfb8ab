package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching serialized values
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ReferenceSource fetches product details from the external reference-pricing site
type ReferenceSource interface {
	Fetch(ctx context.Context, ean string) (*ScrapeResult, error)
}

// StoreQuerier fans a lookup out to store endpoints
type StoreQuerier interface {
	QueryAll(ctx context.Context, ean string, endpoints []StoreEndpoint) []LineItem
	Ping(ctx context.Context, endpoint StoreEndpoint) bool
}

// EndpointRegistry stores the ordered list of store endpoints
type EndpointRegistry interface {
	List(ctx context.Context) ([]StoreEndpoint, error)
	Get(ctx context.Context, alias string) (*StoreEndpoint, error)
	Upsert(ctx context.Context, endpoint StoreEndpoint) error
	Remove(ctx context.Context, aliases ...string) error
}
