// Package registry persists the ordered list of store endpoints as a JSON file.
package registry

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-faster/errors"

	"github.com/preciolens/backend/internal/domain"
)

// FileRegistry keeps endpoints in memory and rewrites the file on every change.
// The file format is a JSON array of {"alias", "ip"} objects.
type FileRegistry struct {
	path    string
	mutex   sync.RWMutex
	servers []domain.StoreEndpoint
}

// NewFileRegistry loads the registry at path. A missing file is an empty registry.
func NewFileRegistry(path string) (*FileRegistry, error) {
	r := &FileRegistry{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("[Registry] %s not found, starting with no servers", path)
			return r, nil
		}
		return nil, errors.Wrapf(err, "read %s", path)
	}

	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &r.servers); err != nil {
			return nil, errors.Wrapf(err, "decode %s", path)
		}
	}

	log.Printf("[Registry] Loaded %d servers from %s", len(r.servers), path)
	return r, nil
}

// List returns a copy of the endpoints in stored order
func (r *FileRegistry) List(ctx context.Context) ([]domain.StoreEndpoint, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]domain.StoreEndpoint, len(r.servers))
	copy(out, r.servers)
	return out, nil
}

// Get returns the endpoint registered under alias
func (r *FileRegistry) Get(ctx context.Context, alias string) (*domain.StoreEndpoint, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if i := r.indexOf(alias); i >= 0 {
		endpoint := r.servers[i]
		return &endpoint, nil
	}
	return nil, errors.Wrapf(domain.ErrServerNotFound, "alias %q", alias)
}

// Upsert adds a new endpoint at the end, or updates the address of an existing alias in place
func (r *FileRegistry) Upsert(ctx context.Context, endpoint domain.StoreEndpoint) error {
	endpoint.Alias = strings.TrimSpace(endpoint.Alias)
	endpoint.Address = strings.TrimSpace(endpoint.Address)
	if endpoint.Alias == "" || endpoint.Address == "" {
		return domain.ErrInvalidServer
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	next := make([]domain.StoreEndpoint, len(r.servers), len(r.servers)+1)
	copy(next, r.servers)
	if i := r.indexOf(endpoint.Alias); i >= 0 {
		next[i].Address = endpoint.Address
	} else {
		next = append(next, endpoint)
	}

	return r.commit(next)
}

// Remove deletes every listed alias. Unknown aliases are ignored.
func (r *FileRegistry) Remove(ctx context.Context, aliases ...string) error {
	drop := make(map[string]bool, len(aliases))
	for _, alias := range aliases {
		drop[alias] = true
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	next := make([]domain.StoreEndpoint, 0, len(r.servers))
	for _, s := range r.servers {
		if !drop[s.Alias] {
			next = append(next, s)
		}
	}

	return r.commit(next)
}

func (r *FileRegistry) indexOf(alias string) int {
	for i, s := range r.servers {
		if s.Alias == alias {
			return i
		}
	}
	return -1
}

// commit writes next to disk and only then makes it the in-memory state.
// Callers hold the write lock.
func (r *FileRegistry) commit(next []domain.StoreEndpoint) error {
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode servers")
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", tmp)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return errors.Wrapf(err, "replace %s", r.path)
	}

	r.servers = next
	return nil
}
