package providers

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrAdapterNotFound is returned when an adapter id is not registered
	ErrAdapterNotFound = errors.New("adapter not found")

	// ErrAdapterAlreadyRegistered is returned when trying to register a duplicate adapter
	ErrAdapterAlreadyRegistered = errors.New("adapter already registered")
)

// Registry holds the adapters built at startup, keyed by id
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates a new adapter registry
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// Register adds an adapter
func (r *Registry) Register(adapter Adapter) error {
	if adapter == nil {
		return errors.New("adapter cannot be nil")
	}

	id := adapter.ID()
	if id == "" {
		return errors.New("adapter id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[id]; exists {
		return fmt.Errorf("%w: %s", ErrAdapterAlreadyRegistered, id)
	}
	r.adapters[id] = adapter
	return nil
}

// Get retrieves an adapter by id
func (r *Registry) Get(id string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, exists := r.adapters[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotFound, id)
	}
	return adapter, nil
}

// Chain resolves ids into adapters, preserving order. Any unknown id fails the whole chain.
func (r *Registry) Chain(ids ...string) ([]Adapter, error) {
	if len(ids) == 0 {
		return nil, errors.New("chain requires at least one adapter")
	}

	chain := make([]Adapter, 0, len(ids))
	for _, id := range ids {
		adapter, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		chain = append(chain, adapter)
	}
	return chain, nil
}

// List returns all registered adapter ids, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of registered adapters
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.adapters)
}
