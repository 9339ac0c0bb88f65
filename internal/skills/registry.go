package skills

import (
	"fmt"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/ports/driven"
)

// BuilderFunc creates a skill from its configuration section.
type BuilderFunc func(cfg map[string]any) (driven.Skill, error)

// Registry maps skill names to their builders. It lets the pipeline
// controller assemble its stage sequence from configuration instead
// of hard-coding stage types.
type Registry struct {
	builders map[string]BuilderFunc
	order    []string
}

// NewRegistry creates an empty skill registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register adds a skill builder. Registration order is the stage
// execution order.
func (r *Registry) Register(name string, builder BuilderFunc) {
	if _, exists := r.builders[name]; !exists {
		r.order = append(r.order, name)
	}
	r.builders[name] = builder
}

// Build creates a skill by name with the given configuration section.
func (r *Registry) Build(name string, cfg map[string]any) (driven.Skill, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown skill %q", domain.ErrNotFound, name)
	}
	return builder(cfg)
}

// Has returns true if a skill with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered skill names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
