package vectorstore

import (
	"fmt"
	"sync"
)

// Builder constructs a Store for a named backend.
type Builder func() (Store, error)

// Registry maps backend names to builders and caches resolved instances.
// The composition root owns the registry and decides what gets registered;
// nothing here is global.
type Registry struct {
	mu       sync.Mutex
	builders map[string]Builder
	cache    map[string]Store
}

func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder),
		cache:    make(map[string]Store),
	}
}

func (r *Registry) Register(name string, b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = b
}

// Get resolves a backend by name, building it on first use and caching the
// instance afterwards.
func (r *Registry) Get(name string) (Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.cache[name]; ok {
		return s, nil
	}
	b, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	s, err := b()
	if err != nil {
		return nil, err
	}
	r.cache[name] = s
	return s, nil
}
