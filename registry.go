package serialio

import "sync"

// Registry holds explicitly registered endpoint identifiers. While it is
// non-empty its contents are authoritative: AvailablePorts reports exactly
// the registered identifiers and transport discovery is not consulted.
// Registering is useful for virtual links, pseudo-terminals and other
// endpoints the platform does not enumerate.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu  sync.Mutex
	ids []string
	set map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{set: make(map[string]struct{})}
}

// Add registers the given identifiers. Already-registered identifiers are
// kept once; registration order is preserved. It returns a snapshot of the
// full registered set.
func (r *Registry) Add(ids ...string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if _, ok := r.set[id]; ok {
			continue
		}
		r.set[id] = struct{}{}
		r.ids = append(r.ids, id)
	}
	return append([]string(nil), r.ids...)
}

// Reset clears all registered identifiers, returning port listing to
// transport discovery.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = nil
	r.set = make(map[string]struct{})
}

// Ports returns a snapshot of the registered identifiers in registration
// order and whether the registry is non-empty.
func (r *Registry) Ports() ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ids) == 0 {
		return nil, false
	}
	return append([]string(nil), r.ids...), true
}
