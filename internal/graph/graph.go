// Package graph models the module dependency graph: edge A→B means
// "A requires B built first". The graph must be acyclic; a cycle is a
// fatal configuration error reported with the full cycle path.
package graph

import (
	"fmt"

	"github.com/dshills/cppbind/pkg/types"
)

// Graph is a directed dependency graph over module names. Declaration
// order is preserved and used as the deterministic tie-break for
// scheduling.
type Graph struct {
	order []string
	deps  map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{deps: make(map[string][]string)}
}

// AddModule registers a module in declaration order. Re-adding a known
// module is an error: module names are unique per build.
func (g *Graph) AddModule(name string) error {
	if _, ok := g.deps[name]; ok {
		return fmt.Errorf("duplicate module %q", name)
	}
	g.order = append(g.order, name)
	g.deps[name] = nil
	return nil
}

// AddDependency records that from requires to built first. Both modules
// must already be registered.
func (g *Graph) AddDependency(from, to string) error {
	if _, ok := g.deps[from]; !ok {
		return fmt.Errorf("unknown module %q", from)
	}
	if _, ok := g.deps[to]; !ok {
		return fmt.Errorf("module %q depends on unknown module %q", from, to)
	}
	g.deps[from] = append(g.deps[from], to)
	return nil
}

// Modules returns the module names in declaration order.
func (g *Graph) Modules() []string {
	return g.order
}

// DependenciesOf returns the direct prerequisites of a module.
func (g *Graph) DependenciesOf(name string) []string {
	return g.deps[name]
}

// DetectCycle runs a depth-first traversal with a recursion-stack set
// and returns the first cycle found, with the full module path. A nil
// return means the graph is acyclic.
func (g *Graph) DetectCycle() *types.DependencyCycleError {
	const (
		white = 0 // unvisited
		gray  = 1 // on the recursion stack
		black = 2 // fully explored
	)
	color := make(map[string]int, len(g.order))
	var stack []string

	var visit func(name string) *types.DependencyCycleError
	visit = func(name string) *types.DependencyCycleError {
		color[name] = gray
		stack = append(stack, name)

		for _, dep := range g.deps[name] {
			switch color[dep] {
			case gray:
				// Found the back edge; slice the stack from the first
				// occurrence of dep to report the complete cycle.
				for i, n := range stack {
					if n == dep {
						cycle := append(append([]string{}, stack[i:]...), dep)
						return &types.DependencyCycleError{Cycle: cycle}
					}
				}
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[name] = black
		return nil
	}

	for _, name := range g.order {
		if color[name] == white {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// TopoOrder returns a stable topological order: every module is placed
// after all of its dependencies, ties broken by declaration order.
func (g *Graph) TopoOrder() ([]string, error) {
	if err := g.DetectCycle(); err != nil {
		return nil, err
	}

	done := make(map[string]bool, len(g.order))
	result := make([]string, 0, len(g.order))

	for len(result) < len(g.order) {
		progressed := false
		for _, name := range g.order {
			if done[name] {
				continue
			}
			ready := true
			for _, dep := range g.deps[name] {
				if !done[dep] {
					ready = false
					break
				}
			}
			if ready {
				done[name] = true
				result = append(result, name)
				progressed = true
			}
		}
		if !progressed {
			// Not reachable when the graph is acyclic.
			return nil, fmt.Errorf("topological sort stalled")
		}
	}
	return result, nil
}

// Levels groups modules by graph depth: level 0 has no dependencies,
// level n+1 depends only on levels <= n. Modules within one level have
// no dependency relationship and may build concurrently; order within a
// level follows declaration order.
func (g *Graph) Levels() ([][]string, error) {
	topo, err := g.TopoOrder()
	if err != nil {
		return nil, err
	}

	depth := make(map[string]int, len(topo))
	maxDepth := 0
	for _, name := range topo {
		d := 0
		for _, dep := range g.deps[name] {
			if depth[dep]+1 > d {
				d = depth[dep] + 1
			}
		}
		depth[name] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]string, maxDepth+1)
	for _, name := range g.order {
		if d, ok := depth[name]; ok {
			levels[d] = append(levels[d], name)
		}
	}
	return levels, nil
}
