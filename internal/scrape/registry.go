package scrape

import (
	"fmt"

	"github.com/jordanblake/cartcompass-backend/pkg/enums"
)

// Registry maps store keys onto their price sources. The mapping is
// fixed at startup, Register is not safe to call after Scrape begins.
type Registry struct {
	sources map[enums.StoreKey]Source
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[enums.StoreKey]Source{}}
}

// Register binds a source to a store key.
func (r *Registry) Register(key enums.StoreKey, source Source) error {
	if !key.IsValid() {
		return fmt.Errorf("invalid store key %q", key)
	}
	if source == nil {
		return fmt.Errorf("source required for %q", key)
	}
	if _, exists := r.sources[key]; exists {
		return fmt.Errorf("source for %q already registered", key)
	}
	r.sources[key] = source
	return nil
}

// Lookup returns the source for the store key, if one is registered.
func (r *Registry) Lookup(key enums.StoreKey) (Source, bool) {
	s, ok := r.sources[key]
	return s, ok
}

// Keys lists every store key with a registered source.
func (r *Registry) Keys() []enums.StoreKey {
	keys := make([]enums.StoreKey, 0, len(r.sources))
	for _, key := range enums.AllStoreKeys() {
		if _, ok := r.sources[key]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}
