package network

import (
	"context"
	"sync"
)

// Registry tracks cancellation handles for in-flight requests by logical key.
// Multiple concurrent requests may share a key; aborting the key cancels all of them.
type Registry struct {
	mu      sync.Mutex
	handles map[string][]context.CancelFunc
}

// NewRegistry creates an empty abort registry. One registry is constructed at
// application start and threaded through the components that issue requests.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string][]context.CancelFunc)}
}

// Add appends a cancellation handle under the given key.
func (r *Registry) Add(key string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handles[key] = append(r.handles[key], cancel)
}

// Abort invokes and clears every handle registered under the key.
// An absent key is a no-op.
func (r *Registry) Abort(key string) {
	r.mu.Lock()
	cancels := r.handles[key]
	delete(r.handles, key)
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// AbortAll aborts every registered key.
func (r *Registry) AbortAll() {
	r.mu.Lock()
	all := r.handles
	r.handles = make(map[string][]context.CancelFunc)
	r.mu.Unlock()

	for _, cancels := range all {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

// Count returns the number of handles currently registered under the key.
func (r *Registry) Count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.handles[key])
}
