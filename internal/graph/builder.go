package graph

import (
	"errors"
	"fmt"

	"github.com/meridian-ai/meridian/internal/types"
)

// Builder provides a fluent interface for assembling a Graph. Methods
// accumulate errors instead of returning them so wiring reads as a
// single chain; Build reports everything that went wrong at once.
type Builder struct {
	graph  *Graph
	errors []error
}

// NewBuilder creates a builder for a graph with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		graph: &Graph{
			name:       name,
			stages:     make(map[string]Stage),
			edges:      make(map[string]string),
			branches:   make(map[string]branch),
			interrupts: make(map[string]bool),
		},
		errors: make([]error, 0),
	}
}

// AddStage registers a stage under its own name.
func (b *Builder) AddStage(s Stage) *Builder {
	if s == nil {
		b.errors = append(b.errors, errors.New("cannot add nil stage"))
		return b
	}
	name := s.Name()
	if name == "" {
		b.errors = append(b.errors, errors.New("cannot add stage with empty name"))
		return b
	}
	if name == Start || name == End {
		b.errors = append(b.errors, fmt.Errorf("stage name %q is reserved", name))
		return b
	}
	if _, exists := b.graph.stages[name]; exists {
		b.errors = append(b.errors, fmt.Errorf("duplicate stage name: %s", name))
		return b
	}
	b.graph.stages[name] = s
	return b
}

// SetEntry declares the stage a fresh run starts from.
func (b *Builder) SetEntry(name string) *Builder {
	if b.graph.entry != "" && b.graph.entry != name {
		b.errors = append(b.errors, fmt.Errorf("entry already set to %q, cannot set to %q", b.graph.entry, name))
		return b
	}
	b.graph.entry = name
	return b
}

// AddEdge adds a fixed edge between two stages. An edge from Start sets
// the graph entry and an edge to End marks the source as terminal.
func (b *Builder) AddEdge(from, to string) *Builder {
	if from == End {
		b.errors = append(b.errors, errors.New("cannot add edge from the end sentinel"))
		return b
	}
	if to == Start {
		b.errors = append(b.errors, errors.New("cannot add edge to the start sentinel"))
		return b
	}
	if from == Start {
		return b.SetEntry(to)
	}
	if _, exists := b.graph.edges[from]; exists {
		b.errors = append(b.errors, fmt.Errorf("stage %q already has an outgoing edge", from))
		return b
	}
	b.graph.edges[from] = to
	return b
}

// AddConditionalEdges attaches a routing decision to a stage. After the
// stage completes, decide is called with the merged state and its label
// is looked up in targets to find the next stage. Labels may map to End.
func (b *Builder) AddConditionalEdges(from string, decide RouteFunc, targets map[string]string) *Builder {
	if decide == nil {
		b.errors = append(b.errors, fmt.Errorf("conditional edge from %q has a nil decision function", from))
		return b
	}
	if len(targets) == 0 {
		b.errors = append(b.errors, fmt.Errorf("conditional edge from %q has no targets", from))
		return b
	}
	if from == Start || from == End {
		b.errors = append(b.errors, errors.New("conditional edges cannot start from a sentinel"))
		return b
	}
	if _, exists := b.graph.branches[from]; exists {
		b.errors = append(b.errors, fmt.Errorf("stage %q already has a conditional edge", from))
		return b
	}
	copied := make(map[string]string, len(targets))
	for label, to := range targets {
		copied[label] = to
	}
	b.graph.branches[from] = branch{decide: decide, targets: copied}
	return b
}

// InterruptBefore marks stages the engine must suspend in front of
// instead of executing. The run checkpoints with the stage pending and
// returns; Resume picks it up from there.
func (b *Builder) InterruptBefore(names ...string) *Builder {
	for _, name := range names {
		if name == Start || name == End {
			b.errors = append(b.errors, fmt.Errorf("cannot interrupt before sentinel %q", name))
			continue
		}
		b.graph.interrupts[name] = true
	}
	return b
}

// Build validates the accumulated graph and returns it. Validation
// covers dangling edge references, stages without an outgoing route,
// stages unreachable from the entry, and conflicting edge kinds.
// Cycles are allowed; the engine bounds them with its step limit.
func (b *Builder) Build() (*Graph, error) {
	errs := make([]error, 0, len(b.errors))
	errs = append(errs, b.errors...)

	if len(b.graph.stages) == 0 {
		errs = append(errs, errors.New("graph has no stages"))
	}
	if b.graph.entry == "" {
		errs = append(errs, errors.New("graph has no entry stage"))
	} else if !b.graph.hasDestination(b.graph.entry) {
		errs = append(errs, fmt.Errorf("entry stage %q is not registered", b.graph.entry))
	}

	for from, to := range b.graph.edges {
		if _, ok := b.graph.stages[from]; !ok {
			errs = append(errs, fmt.Errorf("edge from unknown stage %q", from))
		}
		if !b.graph.hasDestination(to) {
			errs = append(errs, fmt.Errorf("edge from %q to unknown stage %q", from, to))
		}
		if _, both := b.graph.branches[from]; both {
			errs = append(errs, fmt.Errorf("stage %q has both a fixed and a conditional edge", from))
		}
	}
	for from, br := range b.graph.branches {
		if _, ok := b.graph.stages[from]; !ok {
			errs = append(errs, fmt.Errorf("conditional edge from unknown stage %q", from))
		}
		for label, to := range br.targets {
			if !b.graph.hasDestination(to) {
				errs = append(errs, fmt.Errorf("conditional edge from %q routes label %q to unknown stage %q", from, label, to))
			}
		}
	}
	for name := range b.graph.interrupts {
		if _, ok := b.graph.stages[name]; !ok {
			errs = append(errs, fmt.Errorf("interrupt before unknown stage %q", name))
		}
	}

	for name := range b.graph.stages {
		_, hasEdge := b.graph.edges[name]
		_, hasBranch := b.graph.branches[name]
		if !hasEdge && !hasBranch {
			errs = append(errs, fmt.Errorf("stage %q has no outgoing edge", name))
		}
	}

	if len(errs) == 0 {
		for _, name := range unreachableStages(b.graph) {
			errs = append(errs, fmt.Errorf("stage %q is unreachable from the entry", name))
		}
	}

	if len(errs) > 0 {
		return nil, types.WrapError(types.GRAPH_BUILD_FAILED,
			fmt.Sprintf("graph %q failed validation", b.graph.name), errors.Join(errs...))
	}
	return b.graph, nil
}

// hasDestination reports whether name is a valid edge destination: a
// registered stage or the end sentinel.
func (g *Graph) hasDestination(name string) bool {
	if name == End {
		return true
	}
	_, ok := g.stages[name]
	return ok
}

// unreachableStages walks fixed edges and branch targets from the entry
// and returns the registered stages the walk never visits, in sorted
// order via StageNames.
func unreachableStages(g *Graph) []string {
	seen := map[string]bool{}
	queue := []string{g.entry}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == End || seen[current] {
			continue
		}
		seen[current] = true
		if to, ok := g.edges[current]; ok {
			queue = append(queue, to)
		}
		if br, ok := g.branches[current]; ok {
			for _, to := range br.targets {
				queue = append(queue, to)
			}
		}
	}
	var missing []string
	for _, name := range g.StageNames() {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
