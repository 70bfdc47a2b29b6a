// Package graph implements the workflow engine that drives report
// generation. A Graph is a set of named stages connected by fixed and
// conditional edges; an Engine walks the graph from its entry stage,
// merging each stage's delta into the shared state and checkpointing
// after every step so a run can suspend at an interrupt stage and be
// resumed later on the same thread.
package graph

import (
	"context"
	"sort"

	"github.com/meridian-ai/meridian/internal/state"
)

// Sentinel stage names. Start marks the graph entry when wiring edges
// and End marks run completion as an edge target. Neither is a real
// stage and neither can be registered as one.
const (
	Start = "__start__"
	End   = "__end__"
)

// Stage is a single unit of work in the graph. Execute receives a
// read-only snapshot of the shared state and returns a delta describing
// the fields it wants to change. Stages do not return errors; a stage
// that cannot do its work reports the failure inside the delta (an
// appended error, a fallback value) so the run can continue.
type Stage interface {
	Name() string
	Execute(ctx context.Context, st state.State) state.Delta
}

// RouteFunc inspects the state after a stage completes and returns a
// routing label. The label is resolved to a destination stage through
// the target map registered with the branch.
type RouteFunc func(st state.State) string

// branch is a conditional edge: a decision function plus the mapping
// from its labels to destination stages.
type branch struct {
	decide  RouteFunc
	targets map[string]string
}

// Graph is an immutable stage topology produced by a Builder. It is
// safe for concurrent use; all mutation happens before Build returns.
type Graph struct {
	name       string
	stages     map[string]Stage
	edges      map[string]string
	branches   map[string]branch
	entry      string
	interrupts map[string]bool
}

// Name returns the graph name given at build time.
func (g *Graph) Name() string { return g.name }

// Entry returns the stage a fresh run starts from.
func (g *Graph) Entry() string { return g.entry }

// StageNames returns the registered stage names in sorted order.
func (g *Graph) StageNames() []string {
	names := make([]string, 0, len(g.stages))
	for name := range g.stages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasStage reports whether a stage with the given name is registered.
func (g *Graph) HasStage(name string) bool {
	_, ok := g.stages[name]
	return ok
}

// InterruptsBefore reports whether the engine should suspend the run
// before executing the named stage.
func (g *Graph) InterruptsBefore(name string) bool {
	return g.interrupts[name]
}

// stage returns the registered stage implementation.
func (g *Graph) stage(name string) (Stage, bool) {
	s, ok := g.stages[name]
	return s, ok
}

// route resolves the next stage after the named stage completed, using
// the conditional branch when one is registered and the fixed edge
// otherwise. The second return is the routing label that was chosen
// (empty for fixed edges) and ok reports whether a destination exists.
func (g *Graph) route(from string, st state.State) (next, label string, ok bool) {
	if br, exists := g.branches[from]; exists {
		label = br.decide(st)
		next, ok = br.targets[label]
		return next, label, ok
	}
	next, ok = g.edges[from]
	return next, "", ok
}
