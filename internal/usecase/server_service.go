package usecase

import (
	"context"
	"sync"

	"github.com/preciolens/backend/internal/domain"
)

// ServerService manages the store endpoint registry and reports reachability
type ServerService struct {
	registry domain.EndpointRegistry
	stores   domain.StoreQuerier
}

// NewServerService creates a new server service
func NewServerService(registry domain.EndpointRegistry, stores domain.StoreQuerier) *ServerService {
	return &ServerService{registry: registry, stores: stores}
}

// ListServers returns the registered endpoints in stored order.
// With checkStatus set, every endpoint is pinged concurrently.
func (s *ServerService) ListServers(ctx context.Context, checkStatus bool) ([]domain.ServerStatus, error) {
	endpoints, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]domain.ServerStatus, len(endpoints))
	for i, endpoint := range endpoints {
		statuses[i].StoreEndpoint = endpoint
	}
	if !checkStatus {
		return statuses, nil
	}

	var wg sync.WaitGroup
	for i := range statuses {
		wg.Add(1)
		go func(status *domain.ServerStatus) {
			defer wg.Done()
			online := s.stores.Ping(ctx, status.StoreEndpoint)
			status.Online = &online
		}(&statuses[i])
	}
	wg.Wait()

	return statuses, nil
}

// GetServer returns one endpoint by alias
func (s *ServerService) GetServer(ctx context.Context, alias string) (*domain.StoreEndpoint, error) {
	return s.registry.Get(ctx, alias)
}

// SaveServer adds an endpoint or updates the address of an existing alias
func (s *ServerService) SaveServer(ctx context.Context, endpoint domain.StoreEndpoint) error {
	return s.registry.Upsert(ctx, endpoint)
}

// UpdateServer changes the address of an existing alias
func (s *ServerService) UpdateServer(ctx context.Context, alias, address string) error {
	if _, err := s.registry.Get(ctx, alias); err != nil {
		return err
	}
	return s.registry.Upsert(ctx, domain.StoreEndpoint{Alias: alias, Address: address})
}

// RemoveServers deletes the given aliases
func (s *ServerService) RemoveServers(ctx context.Context, aliases ...string) error {
	if len(aliases) == 0 {
		return domain.ErrInvalidRequest
	}
	return s.registry.Remove(ctx, aliases...)
}
