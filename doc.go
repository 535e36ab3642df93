// Package container provides a service registry and resolver: given string
// identifiers, it produces fully-constructed object graphs, resolving
// dependencies automatically, managing lifetime (transient vs. shared
// singleton), and caching instantiation strategies for repeated lookups.
//
// # Lifecycle
//
//  1. Create: c := container.New()
//  2. Register bindings (or ServiceProviders via a ProviderRegistry)
//  3. Resolve: the first Get after any mutation compiles the whole registry
//     — dependency graph, strategy cache, and factory cache in one step.
//
// # Bindings
//
// A bind target is discriminated once, at registration time:
//
//	// Type target — built reflectively, inject-tagged fields resolved
//	type Service struct {
//	    Logger *Logger `inject:"logger"`
//	}
//	c.Bind("service", (*Service)(nil))
//
//	// Constructor target — parameters resolved by type key
//	c.Singleton("repo", NewUserRepository) // func(*DB) (*UserRepository, error)
//
//	// Factory target — closure called on every Get
//	c.Factory("request-id", func(c *container.Container) (any, error) {
//	    return nextID(), nil
//	})
//
//	// Pre-built value
//	c.Instance("config", cfg)
//
//	// Alias (single hop)
//	c.Alias("logger", "log")
//
// # Resolving
//
//	raw, err := c.Get("service")
//	svc := container.Resolve[*Service](c, "service") // panics on failure
//
// Lookup order after alias resolution: materialized singleton, explicit
// instance, compiled strategy, factory, reflective fallback from the type
// table. Cycles are detected by the resolution stack and reported as
// CircularDependencyError; construction failures never leave a partial
// cache entry behind.
//
// # Inject tags
//
//	type Handler struct {
//	    Log   *Logger  `inject:"logger"`          // explicit identifier
//	    Repo  *Repo    `inject:""`                // identifier = TypeKey(*Repo)
//	    Cache *Cache   `inject:"cache,optional"`  // nil when unbound
//	    port  int      // untagged: excluded, keeps zero value
//	}
//
// # Decoration, tags, contextual bindings, providers
//
//	c.Extend("logger", func(v any, c *container.Container) any {
//	    return NewTimestampLogger(v.(*Logger))
//	})
//	c.Tag([]string{"gzip", "cors"}, "middleware")
//	c.When("PhotoController").Needs("fs").GiveValue(localFS)
//
// ServiceProvider and ProviderRegistry group bindings behind a Register/Boot
// lifecycle with optional deferred loading; see provider.go.
//
// # Collaborators
//
// The pool package supplies an object recycler for zero-dependency types
// (WithRecycler), codegen emits a precompiled lookup table from Snapshot,
// memo memoizes JSON responses, and pipeline compiles container-resolved
// middleware chains into an HTTP router. The engine depends on none of them
// at resolution time.
package container
