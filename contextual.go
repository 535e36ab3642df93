package container

// ContextualBuilder implements the fluent contextual binding API:
//
//	c.When("PhotoController").Needs("Filesystem").Give(func(c *container.Container) (any, error) {
//	    return NewS3Filesystem(), nil
//	})
//
// While "PhotoController" is under construction, its request for
// "Filesystem" is served by the given factory instead of the global binding.
type ContextualBuilder struct {
	container *Container
	concrete  string
	needs     string
}

// When starts a contextual binding chain for the identifier that will be
// under construction.
func (c *Container) When(concrete string) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

// Needs specifies which identifier the concrete target depends on.
func (b *ContextualBuilder) Needs(id string) *ContextualBuilder {
	b.needs = id
	return b
}

// Give provides the factory used when the concrete target resolves the
// needed identifier.
func (b *ContextualBuilder) Give(factory Factory) {
	c := b.container
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.contextual[b.concrete]; !ok {
		c.contextual[b.concrete] = make(map[string]Factory)
	}
	c.contextual[b.concrete][b.needs] = factory
}

// GiveValue is shorthand for Give with a pre-built value.
func (b *ContextualBuilder) GiveValue(value any) {
	b.Give(func(*Container) (any, error) { return value, nil })
}

// contextualFor returns the contextual factory for (concrete, id), or nil.
func (c *Container) contextualFor(concrete, id string) Factory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.contextual[concrete]; ok {
		return m[id]
	}
	return nil
}
