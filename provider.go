package container

// ServiceProvider groups related bindings behind a two-phase lifecycle.
//
// Register binds services into the container; resolving other bindings there
// is unsafe because registration order is unspecified. Boot runs after ALL
// providers have been registered, so it may resolve anything.
type ServiceProvider interface {
	Register(app *Container)

	// Boot is called after all providers are registered.
	Boot(app *Container)

	// Provides returns the identifiers this provider registers. Used for
	// deferred (lazy) loading; empty means the provider is always eager.
	Provides() []string

	// IsDeferred reports whether the provider should load lazily, on the
	// first Get of one of its Provides identifiers.
	IsDeferred() bool
}

// BaseProvider is an embeddable struct with no-op implementations of Boot,
// Provides, and IsDeferred. Embed it and override only what you need.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container)  {}
func (p *BaseProvider) Provides() []string { return nil }
func (p *BaseProvider) IsDeferred() bool   { return false }

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred providers whose registration is intercepted until one
// of their identifiers is first resolved.
type ProviderRegistry struct {
	app        *Container
	eager      []ServiceProvider
	deferred   map[string]ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		deferred:   make(map[string]ServiceProvider),
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register method, unless the
// provider is deferred. Registering the same provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	if r.registered[provider] {
		return
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		for _, id := range provider.Provides() {
			r.deferred[id] = provider
		}
		r.interceptDeferred(provider)
		return
	}

	provider.Register(r.app)
	r.eager = append(r.eager, provider)

	// Late registration after Boot: boot this provider immediately.
	if r.booted {
		provider.Boot(r.app)
	}
}

// interceptDeferred installs a lazy factory for each deferred identifier.
// The first Get drops the interceptor, performs the real registration (and
// boot, if the registry is already booted), then resolves again through the
// provider's own bindings.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	for _, id := range provider.Provides() {
		r.app.Factory(id, func(c *Container) (any, error) {
			if _, pending := r.deferred[id]; pending {
				for _, provided := range provider.Provides() {
					delete(r.deferred, provided)
					c.forgetFactory(provided)
				}
				provider.Register(c)
				if r.booted {
					provider.Boot(c)
				}
			}
			v, err := c.reenter(func() (any, error) { return c.Get(id) })
			if err != nil {
				return nil, err
			}
			// The nested Get already ran extenders and callbacks.
			return finished{value: v}, nil
		})
	}
}

// Boot calls Boot on all eager providers. Call after every provider has
// been registered; a second Boot is a no-op.
func (r *ProviderRegistry) Boot() {
	if r.booted {
		return
	}
	r.booted = true
	for _, provider := range r.eager {
		provider.Boot(r.app)
	}
}

// Booted reports whether Boot has run.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }
