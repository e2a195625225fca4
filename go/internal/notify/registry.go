// Package notify implements the observer list shared by the in-process stores.
package notify

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Listener is invoked with no arguments; it re-reads whatever state it needs.
type Listener func()

// Registry holds a set of listeners. Notification order is unspecified and a
// panicking listener does not prevent the others from running.
type Registry struct {
	name string

	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]Listener
}

// NewRegistry creates an empty registry. name only appears in logs.
func NewRegistry(name string) *Registry {
	return &Registry{
		name:      name,
		listeners: make(map[uint64]Listener),
	}
}

// Subscribe registers l and returns a function that removes it. Calling the
// returned function more than once is a no-op.
func (r *Registry) Subscribe(l Listener) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = l
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
}

// Notify calls every registered listener on the calling goroutine.
func (r *Registry) Notify() {
	r.mu.Lock()
	snapshot := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		snapshot = append(snapshot, l)
	}
	r.mu.Unlock()

	for _, l := range snapshot {
		r.invoke(l)
	}
}

// Len returns the number of registered listeners.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

func (r *Registry) invoke(l Listener) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Str("registry", r.name).
				Interface("panic", rec).
				Msg("listener panicked")
		}
	}()
	l()
}
