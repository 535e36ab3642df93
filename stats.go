package container

import (
	"sort"
)

// Stats is a diagnostics snapshot of registry and cache sizes. It is meant
// for observability only, never for control decisions.
type Stats struct {
	Definitions int  `json:"definitions"`
	Instances   int  `json:"instances"`
	Singletons  int  `json:"singletons"`
	Factories   int  `json:"factories"`
	Aliases     int  `json:"aliases"`
	Strategies  int  `json:"strategies"`
	Types       int  `json:"types"`
	Compiled    bool `json:"compiled"`
}

// Stats returns current registry and cache counts.
func (c *Container) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Definitions: len(c.definitions),
		Instances:   len(c.instances),
		Singletons:  len(c.singletons),
		Factories:   len(c.factories),
		Aliases:     len(c.aliases),
		Strategies:  len(c.strategies),
		Types:       len(c.types),
		Compiled:    c.compiled,
	}
}

// BindingSnapshot describes one compiled definition: the identifier, its
// concrete target, the lifetime, and the ordered dependency identifiers.
// The build-time code generator consumes this to emit an equivalent
// precompiled lookup table; the engine itself never reads it back.
type BindingSnapshot struct {
	ID           string
	Target       string // type name, "factory", or "literal"
	Singleton    bool
	Dependencies []string
}

// Snapshot compiles the registry if needed and returns a read-only view of
// every definition, sorted by identifier.
func (c *Container) Snapshot() []BindingSnapshot {
	c.mu.Lock()
	c.compile()

	out := make([]BindingSnapshot, 0, len(c.definitions))
	for id, def := range c.definitions {
		snap := BindingSnapshot{ID: id, Singleton: def.singleton}
		switch def.kind {
		case concreteFactory:
			snap.Target = "factory"
		case concreteLiteral:
			snap.Target = "literal"
		case concreteConstructor:
			if def.ctorType != nil {
				snap.Target = typeKey(def.ctorType.Out(0))
			}
		case concreteType:
			t := def.typ
			if t == nil {
				t = c.types[id]
			}
			if t != nil {
				snap.Target = typeKey(t)
			}
		}
		for _, dep := range c.graph[id] {
			if dep.container || dep.err != nil {
				continue
			}
			snap.Dependencies = append(snap.Dependencies, dep.id)
		}
		out = append(out, snap)
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Graph returns the compiled dependency graph as identifier → ordered
// dependency identifiers. Container slots and slots carrying deferred
// configuration errors are excluded; builtin slots appear when their inject
// tag names an explicit identifier.
func (c *Container) Graph() map[string][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compile()

	out := make(map[string][]string, len(c.graph))
	for id, deps := range c.graph {
		ids := make([]string, 0, len(deps))
		for _, dep := range deps {
			if dep.container || dep.err != nil || dep.id == "" {
				continue
			}
			ids = append(ids, dep.id)
		}
		out[id] = ids
	}
	return out
}
