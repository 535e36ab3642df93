package container

import (
	"fmt"
	"log/slog"
	"maps"
	"reflect"
)

// strategyKind selects how an instantiation plan executes: a direct closure
// call or a reflective construct driven by the dependency graph.
type strategyKind uint8

const (
	strategyFactory strategyKind = iota
	strategyConstruct
)

// strategy is the compiled instantiation plan for one identifier.
type strategy struct {
	kind      strategyKind
	singleton bool

	factory Factory // strategyFactory

	// strategyConstruct: either typ (reflect.New + field injection) or
	// ctor (function call with resolved arguments) is set.
	typ        reflect.Type
	ctor       reflect.Value
	returnsErr bool
	deps       []dependency

	// err is a configuration error recorded at bind time and surfaced on Get.
	err error
}

// Compile rebuilds the dependency graph, the strategy cache, and the factory
// cache as one atomic step, and clears materialized singletons so they are
// reconstructed against the fresh definitions. Compiling an already-compiled
// registry is a no-op; any binding mutation resets the compiled flag so the
// next Get triggers a fresh, whole-registry compile.
func (c *Container) Compile() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compile()
}

// compile must be called with mu held for writing.
func (c *Container) compile() {
	if c.compiled {
		return
	}

	c.graph = buildGraph(c.definitions, c.types)

	strategies := make(map[string]*strategy, len(c.definitions))
	for id, def := range c.definitions {
		st := &strategy{singleton: def.singleton, err: def.err}
		switch def.kind {
		case concreteFactory:
			st.kind = strategyFactory
			st.factory = def.factory
		case concreteLiteral:
			lit := def.literal
			st.kind = strategyFactory
			st.factory = func(*Container) (any, error) { return lit, nil }
		case concreteType:
			t := def.typ
			if t == nil {
				t = c.types[id] // self-binding
			}
			if t == nil {
				if st.err == nil {
					st.err = fmt.Errorf("no type registered for self-binding [%s]", id)
				}
				if c.debug {
					c.log.Debug("definition not loadable",
						slog.String("id", def.id),
						slog.String("kind", def.kind.String()),
						slog.String("reason", st.err.Error()))
				}
				break
			}
			st.kind = strategyConstruct
			st.typ = t
			st.deps = c.graph[id]
		case concreteConstructor:
			st.kind = strategyConstruct
			st.ctor = def.ctor
			st.returnsErr = def.returnsErr
			st.deps = c.graph[id]
		}
		strategies[id] = st
	}

	c.strategies = strategies
	c.factoryCache = maps.Clone(c.factories)
	c.singletons = make(map[string]any)
	c.compiled = true

	if c.debug {
		c.log.Debug("container compiled",
			slog.Int("definitions", len(c.definitions)),
			slog.Int("strategies", len(strategies)),
			slog.Int("factories", len(c.factoryCache)))
	}
}
