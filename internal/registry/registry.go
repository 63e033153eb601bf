package registry

import "sync"

// Service is anything that can be registered under a stable name.
type Service interface {
	Name() string
}

// Registry is a process-wide, name-keyed lookup table of service instances.
// It decouples route construction from service construction: the app wires
// services in at startup and handlers resolve them by name.
type Registry struct {
	mu       sync.RWMutex
	services map[string]Service
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{services: make(map[string]Service)}
}

// Add inserts or replaces the service under its own name. The lock is held
// only for the map write, never across a service call.
func (r *Registry) Add(s Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[s.Name()] = s
}

// Get returns the service registered under name. The returned handle is the
// caller's to use; subsequent calls on it never contend with the registry.
func (r *Registry) Get(name string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.services[name]
	return s, ok
}
