package stage

import (
	"fmt"
	"sort"

	"github.com/meridian-ai/meridian/internal/graph"
)

// Registry is a named set of stages. The pipeline registers the nine
// report stages here before wiring them into the graph.
type Registry struct {
	stages map[string]graph.Stage
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stages: make(map[string]graph.Stage)}
}

// Register adds a stage under its own name. Duplicate names are an
// error.
func (r *Registry) Register(s graph.Stage) error {
	if s == nil {
		return fmt.Errorf("cannot register nil stage")
	}
	name := s.Name()
	if name == "" {
		return fmt.Errorf("cannot register stage with empty name")
	}
	if _, exists := r.stages[name]; exists {
		return fmt.Errorf("stage %q already registered", name)
	}
	r.stages[name] = s
	return nil
}

// Get returns the named stage.
func (r *Registry) Get(name string) (graph.Stage, bool) {
	s, ok := r.stages[name]
	return s, ok
}

// MustGet returns the named stage and panics when it is missing. Use
// only during pipeline wiring, where a missing stage is a programming
// error.
func (r *Registry) MustGet(name string) graph.Stage {
	s, ok := r.stages[name]
	if !ok {
		panic(fmt.Sprintf("stage %q not registered", name))
	}
	return s
}

// Names returns the registered stage names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.stages))
	for name := range r.stages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered stages.
func (r *Registry) Len() int { return len(r.stages) }
