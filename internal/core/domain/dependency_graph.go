package domain

import (
	"iter"

	"go.trai.ch/zerr"
)

// DependencyGraph is the ordered, de-duplicated set of a package's dependencies.
type DependencyGraph struct {
	deps  map[string]DependencyDeclaration
	order []string
	// declared holds every declaration seen per name, in order.
	declared map[string][]DependencyDeclaration
}

// NewDependencyGraph creates an empty DependencyGraph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		deps:     make(map[string]DependencyDeclaration),
		declared: make(map[string][]DependencyDeclaration),
	}
}

// BuildDependencyGraph adds decls to a new graph in order.
func BuildDependencyGraph(decls []DependencyDeclaration) (*DependencyGraph, error) {
	g := NewDependencyGraph()
	for _, d := range decls {
		if err := g.Add(d); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Add records a declaration. A repeated name keeps the position of its first
// declaration and takes the fields of the latest one. A runtime dependency stays
// runtime when it is redeclared with another kind.
//
// d is checked against every earlier declaration of the same name, so the
// outcome does not depend on declaration order.
func (g *DependencyGraph) Add(d DependencyDeclaration) error {
	existing, exists := g.deps[d.Name]
	if !exists {
		g.deps[d.Name] = d.clone()
		g.order = append(g.order, d.Name)
		g.declared[d.Name] = []DependencyDeclaration{d.clone()}
		return nil
	}

	for _, prior := range g.declared[d.Name] {
		if !prior.Constraint.Compatible(d.Constraint) {
			return conflictError(prior, d, "incompatible version constraints")
		}
	}
	for _, prior := range g.declared[d.Name] {
		if prior.Kind != d.Kind && !prior.Constraint.Equivalent(d.Constraint) {
			return conflictError(prior, d, "declared with different kinds and constraints")
		}
	}
	g.declared[d.Name] = append(g.declared[d.Name], d.clone())

	merged := d.clone()
	if existing.IsRuntime() {
		merged.Kind = KindRuntime
	}
	g.deps[d.Name] = merged
	return nil
}

func conflictError(a, b DependencyDeclaration, reason string) error {
	err := zerr.With(zerr.Wrap(ErrDependencyConflict, reason), "dependency", a.Name)
	err = zerr.With(err, "constraints", []string{a.Constraint.String(), b.Constraint.String()})
	return zerr.With(err, "kinds", []string{string(a.Kind), string(b.Kind)})
}

// Len returns the number of distinct dependencies.
func (g *DependencyGraph) Len() int {
	return len(g.order)
}

// Lookup returns the effective declaration for name.
func (g *DependencyGraph) Lookup(name string) (DependencyDeclaration, bool) {
	d, ok := g.deps[name]
	if !ok {
		return DependencyDeclaration{}, false
	}
	return d.clone(), true
}

// Walk yields the effective declarations in first-declaration order.
func (g *DependencyGraph) Walk() iter.Seq[DependencyDeclaration] {
	return func(yield func(DependencyDeclaration) bool) {
		for _, name := range g.order {
			if !yield(g.deps[name].clone()) {
				return
			}
		}
	}
}
