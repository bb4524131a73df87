package sources

import "fmt"

// Registry keeps adapters in menu order.
type Registry struct {
	adapters []Adapter
	byName   map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byName: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters = append(r.adapters, a)
		r.byName[a.Name()] = a
	}
	return r
}

// All returns the adapters in registration order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// Get looks an adapter up by its id.
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return a, nil
}

// At returns the adapter for a 1-based menu position.
func (r *Registry) At(n int) (Adapter, bool) {
	if n < 1 || n > len(r.adapters) {
		return nil, false
	}
	return r.adapters[n-1], true
}

// Len is the number of registered adapters.
func (r *Registry) Len() int {
	return len(r.adapters)
}
