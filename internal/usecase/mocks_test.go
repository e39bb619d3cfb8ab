package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/preciolens/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu        sync.Mutex
	data      map[string][]byte
	setError  error
	setCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockReferenceSource is a mock implementation of domain.ReferenceSource
type MockReferenceSource struct {
	mu     sync.Mutex
	result *domain.ScrapeResult
	err    error
	delay  time.Duration
	calls  int
}

func (m *MockReferenceSource) Fetch(ctx context.Context, ean string) (*domain.ScrapeResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	copied := *m.result
	return &copied, nil
}

// MockStoreQuerier is a mock implementation of domain.StoreQuerier
type MockStoreQuerier struct {
	items        []domain.LineItem
	delay        time.Duration
	online       map[string]bool
	gotEndpoints []domain.StoreEndpoint
	gotEAN       string
	deadlineSeen bool
}

func (m *MockStoreQuerier) QueryAll(ctx context.Context, ean string, endpoints []domain.StoreEndpoint) []domain.LineItem {
	m.gotEAN = ean
	m.gotEndpoints = endpoints
	_, m.deadlineSeen = ctx.Deadline()
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return []domain.LineItem{}
		}
	}
	return m.items
}

func (m *MockStoreQuerier) Ping(ctx context.Context, endpoint domain.StoreEndpoint) bool {
	return m.online[endpoint.Alias]
}

// MockRegistry is an in-memory domain.EndpointRegistry
type MockRegistry struct {
	servers []domain.StoreEndpoint
	listErr error
}

func (m *MockRegistry) List(ctx context.Context) ([]domain.StoreEndpoint, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.StoreEndpoint(nil), m.servers...), nil
}

func (m *MockRegistry) Get(ctx context.Context, alias string) (*domain.StoreEndpoint, error) {
	for _, s := range m.servers {
		if s.Alias == alias {
			found := s
			return &found, nil
		}
	}
	return nil, domain.ErrServerNotFound
}

func (m *MockRegistry) Upsert(ctx context.Context, endpoint domain.StoreEndpoint) error {
	if endpoint.Alias == "" || endpoint.Address == "" {
		return domain.ErrInvalidServer
	}
	for i, s := range m.servers {
		if s.Alias == endpoint.Alias {
			m.servers[i].Address = endpoint.Address
			return nil
		}
	}
	m.servers = append(m.servers, endpoint)
	return nil
}

func (m *MockRegistry) Remove(ctx context.Context, aliases ...string) error {
	drop := map[string]bool{}
	for _, a := range aliases {
		drop[a] = true
	}
	kept := m.servers[:0]
	for _, s := range m.servers {
		if !drop[s.Alias] {
			kept = append(kept, s)
		}
	}
	m.servers = kept
	return nil
}
