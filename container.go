package container

import (
	"log/slog"
	"reflect"
	"sort"
	"sync"
)

// SelfID is the identifier under which every container registers itself at
// construction time. Flush preserves this registration.
const SelfID = "container"

// Recycler supplies reusable zero-argument-constructible instances.
// A miss is treated exactly like constructing fresh. See the pool package
// for the provided implementation.
type Recycler interface {
	Acquire(t reflect.Type) (any, bool)
	Release(v any)
}

// Container is the service registry and resolver.
//
// It maps string identifiers to definitions (type, constructor, factory, or
// literal targets), builds the dependency graph from constructor signatures
// and inject-tagged struct fields, compiles per-identifier instantiation
// strategies, and caches singleton results.
//
// Registration and lookup are guarded by one RWMutex per container. The
// resolution stack used for cycle detection is not: a single container runs
// one resolution at a time, and concurrent top-level Get calls require
// external synchronization (or one container per goroutine).
type Container struct {
	mu sync.RWMutex

	// registry state, mutated by binding operations
	definitions map[string]*definition
	factories   map[string]Factory
	instances   map[string]any // explicit Instance() registrations
	aliases     map[string]string
	extenders   map[string][]Extender
	tags        map[string][]string
	types       map[string]reflect.Type
	contextual  map[string]map[string]Factory

	afterResolving []func(id string, instance any)

	// derived state, rebuilt as a whole by Compile
	graph        map[string][]dependency
	strategies   map[string]*strategy
	factoryCache map[string]Factory
	singletons   map[string]any // materialized singleton results
	compiled     bool

	// per-resolution state; empty before and after every top-level Get
	stack []string

	maxDepth int
	recycler Recycler
	log      *slog.Logger
	debug    bool
}

// DefaultMaxDepth bounds recursive resolution as a safety net beyond cycle
// detection (a cycle is caught earlier; this stops pathological fan-out).
const DefaultMaxDepth = 64

// Option configures a Container at construction time.
type Option func(*Container)

// WithMaxDepth overrides the resolution depth bound.
func WithMaxDepth(n int) Option {
	return func(c *Container) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithRecycler installs an object recycler consulted before allocating
// fresh zero-dependency instances.
func WithRecycler(r Recycler) Option {
	return func(c *Container) { c.recycler = r }
}

// WithLogger overrides the slog logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) { c.log = l }
}

// WithDebug enables debug logging of compile and fallback events.
func WithDebug() Option {
	return func(c *Container) { c.debug = true }
}

// New creates an empty container and registers it under SelfID.
func New(opts ...Option) *Container {
	c := &Container{
		definitions:  make(map[string]*definition),
		factories:    make(map[string]Factory),
		instances:    make(map[string]any),
		aliases:      make(map[string]string),
		extenders:    make(map[string][]Extender),
		tags:         make(map[string][]string),
		types:        make(map[string]reflect.Type),
		contextual:   make(map[string]map[string]Factory),
		strategies:   make(map[string]*strategy),
		factoryCache: make(map[string]Factory),
		singletons:   make(map[string]any),
		maxDepth:     DefaultMaxDepth,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	// Explicit bootstrap: the container resolves itself by name.
	c.instances[SelfID] = c
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient definition. The target may be a typed nil
// pointer ((*T)(nil)), a reflect.Type, a constructor function, a factory
// closure, or a literal value; nil self-binds the identifier to the type
// registered for it (see RegisterType). Rebinding an identifier discards its
// cached singleton and marks the registry for recompilation.
func (c *Container) Bind(id string, target any) {
	c.bindAs(id, target, false)
}

// Singleton registers a definition whose result is cached after the first
// resolution and shared by all subsequent lookups.
func (c *Container) Singleton(id string, target any) {
	c.bindAs(id, target, true)
}

func (c *Container) bindAs(id string, target any, singleton bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.canonical(id)
	def := discriminate(key, target, singleton)
	if def.kind == concreteType && def.typ != nil {
		c.types[typeKey(def.typ)] = def.typ
		c.types[key] = def.typ
	}

	delete(c.instances, key)
	delete(c.singletons, key)
	c.definitions[key] = def
	c.compiled = false
}

// Factory registers a callable producing a fresh value on every Get. Factory
// registrations live beside class definitions in the same identifier
// namespace, and updating one does not discard singletons cached for other
// identifiers.
func (c *Container) Factory(id string, fn Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.canonical(id)
	c.factories[key] = fn
	if c.compiled {
		c.factoryCache[key] = fn
	}
}

// forgetFactory removes a factory registration; used by deferred providers
// to drop their interceptor once the real bindings are in place.
func (c *Container) forgetFactory(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.canonical(id)
	delete(c.factories, key)
	delete(c.factoryCache, key)
}

// Instance registers a pre-built value as a resolved singleton. Subsequent
// Get calls return the value directly without invoking any strategy.
func (c *Container) Instance(id string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.canonical(id)
	delete(c.definitions, key)
	delete(c.singletons, key)
	c.instances[key] = value
}

// Alias records a single-hop rename: Get(alias) behaves like Get(id).
// Chained aliases are not followed; only one indirection is resolved.
func (c *Container) Alias(id, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == alias {
		return
	}
	c.aliases[alias] = id
}

// RegisterType adds types to the type table so their TypeKey identifiers can
// be resolved reflectively without an explicit definition. Values are typed
// nil pointers: RegisterType((*Logger)(nil), (*Service)(nil)).
func (c *Container) RegisterType(values ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, v := range values {
		t, ok := v.(reflect.Type)
		if !ok {
			t = reflect.TypeOf(v)
		}
		if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
			continue
		}
		c.types[typeKey(t)] = t
	}
}

// Extend decorates the resolved instance of an identifier. The decorator
// composes with earlier extenders in registration order. Extending an
// unbound identifier fails with NotFoundError.
func (c *Container) Extend(id string, fn Extender) error {
	c.mu.Lock()
	key := c.canonical(id)
	if !c.has(key) {
		c.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	c.extenders[key] = append(c.extenders[key], fn)

	// Re-apply immediately when the instance already exists, so the decorator
	// is never observably missing from an already-shared singleton.
	if inst, ok := c.singletons[key]; ok {
		c.singletons[key] = fn(inst, c)
	} else if inst, ok := c.instances[key]; ok && key != SelfID {
		c.instances[key] = fn(inst, c)
	}
	c.mu.Unlock()
	return nil
}

// Tag associates identifiers with a named group.
func (c *Container) Tag(ids []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], ids...)
}

// Tagged resolves every identifier registered under a tag, in tag order.
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.RLock()
	ids := append([]string(nil), c.tags[tag]...)
	c.mu.RUnlock()

	out := make([]any, 0, len(ids))
	for _, id := range ids {
		v, err := c.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// AfterResolving registers a callback fired after any identifier resolves.
func (c *Container) AfterResolving(fn func(id string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, fn)
}

// ── Introspection ─────────────────────────────────────────────────────────────

// Has reports whether a definition, instance, factory, or registered type
// exists for the identifier.
func (c *Container) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.has(c.canonical(id))
}

// has must be called with mu held.
func (c *Container) has(key string) bool {
	if _, ok := c.definitions[key]; ok {
		return true
	}
	if _, ok := c.instances[key]; ok {
		return true
	}
	if _, ok := c.factories[key]; ok {
		return true
	}
	_, ok := c.types[key]
	return ok
}

// Bindings returns the sorted set of registered identifiers: definitions,
// instances, and factories.
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{}, len(c.definitions)+len(c.instances)+len(c.factories))
	for k := range c.definitions {
		seen[k] = struct{}{}
	}
	for k := range c.instances {
		seen[k] = struct{}{}
	}
	for k := range c.factories {
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Flush resets the container to its freshly-constructed state, keeping only
// the self-registration under SelfID.
func (c *Container) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.definitions = make(map[string]*definition)
	c.factories = make(map[string]Factory)
	c.instances = map[string]any{SelfID: c}
	c.aliases = make(map[string]string)
	c.extenders = make(map[string][]Extender)
	c.tags = make(map[string][]string)
	c.types = make(map[string]reflect.Type)
	c.contextual = make(map[string]map[string]Factory)
	c.graph = nil
	c.strategies = make(map[string]*strategy)
	c.factoryCache = make(map[string]Factory)
	c.singletons = make(map[string]any)
	c.compiled = false
}

// canonical resolves an alias to its canonical key. Must hold mu.
func (c *Container) canonical(id string) string {
	if target, ok := c.aliases[id]; ok {
		return target
	}
	return id
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve calls Get and type-asserts the result, panicking on failure.
// Use it at bootstrap where a missing binding is a programming error.
//
//	logger := container.Resolve[*Logger](c, "logger")
func Resolve[T any](c *Container, id string) T {
	v, err := c.Get(id)
	if err != nil {
		panic(err)
	}
	typed, ok := v.(T)
	if !ok {
		panic(&UnresolvableParameterError{
			ID:     id,
			Param:  "result",
			Reason: "resolved value has unexpected type",
		})
	}
	return typed
}

// MustResolve is like Resolve but reports failure with a bool instead of
// panicking.
func MustResolve[T any](c *Container, id string) (T, bool) {
	v, err := c.Get(id)
	if err != nil {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
