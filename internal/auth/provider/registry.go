package provider

import "fmt"

// Registry holds all configured login strategies and allows
// lookup by strategy name. It performs no auth logic itself.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry registers the given strategies by name.
// A later strategy with the same name replaces an earlier one.
func NewRegistry(list ...Strategy) *Registry {
	m := make(map[string]Strategy, len(list))
	for _, s := range list {
		m[s.Name()] = s
	}
	return &Registry{strategies: m}
}

// Get returns the strategy by name or an error if not registered.
func (r *Registry) Get(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown login strategy: %s", name)
	}
	return s, nil
}

// Names lists the registered strategy names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	return names
}
