package ecosystem

import (
	"sort"

	"github.com/depscout/depscout/domain"
)

// Registry manages all registered ecosystem implementations.
type Registry struct {
	ecosystems map[string]domain.Ecosystem
}

// NewRegistry creates an empty ecosystem registry.
func NewRegistry() *Registry {
	return &Registry{
		ecosystems: make(map[string]domain.Ecosystem),
	}
}

// Register adds an ecosystem under its name.
func (r *Registry) Register(e domain.Ecosystem) {
	r.ecosystems[e.Name()] = e
}

// Get returns the ecosystem with the given name, or nil if not registered.
func (r *Registry) Get(name string) domain.Ecosystem {
	return r.ecosystems[name]
}

// All returns every registered ecosystem, sorted by name so report ordering
// is stable.
func (r *Registry) All() []domain.Ecosystem {
	result := make([]domain.Ecosystem, 0, len(r.ecosystems))
	for _, e := range r.ecosystems {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// Names returns the sorted list of registered ecosystem names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ecosystems))
	for name := range r.ecosystems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
