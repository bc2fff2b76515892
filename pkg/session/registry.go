package session

import (
	"sort"
	"sync"

	perrors "dicomslicesto3d/pkg/errors"
)

// Registry maps user-chosen keys to values. Keys are unique and the last
// write wins. It is safe for concurrent use.
type Registry[T any] struct {
	name string

	mu    sync.RWMutex
	items map[string]T
}

// NewRegistry creates an empty registry; name appears in lookup errors
func NewRegistry[T any](name string) *Registry[T] {
	return &Registry[T]{
		name:  name,
		items: make(map[string]T),
	}
}

// Get returns the value stored under key, or an UnknownKey error
func (r *Registry[T]) Get(key string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.items[key]
	if !ok {
		var zero T
		return zero, perrors.New(perrors.UnknownKey, r.name+".get", "no entry named %q", key)
	}
	return v, nil
}

// Put stores v under key, replacing any previous value
func (r *Registry[T]) Put(key string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key] = v
}

func (r *Registry[T]) Contains(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[key]
	return ok
}

// Keys returns the registered keys in sorted order
func (r *Registry[T]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.items))
	for k := range r.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
