package skills

import (
	"github.com/BaoyingShan0/OpenHydrology/internal/core/ports/driven"
	"github.com/BaoyingShan0/OpenHydrology/internal/skills/cleaner"
	"github.com/BaoyingShan0/OpenHydrology/internal/skills/enhancer"
	"github.com/BaoyingShan0/OpenHydrology/internal/skills/evaluator"
)

// DefaultRegistry returns a registry with the built-in stages in their
// execution order: cleaner, enhancer, evaluator.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("cleaner", func(cfg map[string]any) (driven.Skill, error) {
		return cleaner.FromConfig(cfg)
	})
	r.Register("enhancer", func(cfg map[string]any) (driven.Skill, error) {
		return enhancer.FromConfig(cfg)
	})
	r.Register("evaluator", func(cfg map[string]any) (driven.Skill, error) {
		return evaluator.FromConfig(cfg)
	})
	return r
}
