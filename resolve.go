package container

import (
	"errors"
	"fmt"
	"reflect"
)

// Get resolves an identifier to a fully-constructed instance.
//
// Lookup order after alias resolution: materialized singleton, explicit
// instance, compiled strategy, registered factory, reflective fallback from
// the type table. An uncompiled registry is compiled on the first Get after
// any mutation. Failed constructions leave no cache entry behind; the next
// Get re-attempts from scratch.
func (c *Container) Get(id string) (any, error) {
	c.mu.RLock()
	key := c.canonical(id)
	if v, ok := c.singletons[key]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	if v, ok := c.instances[key]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	compiled := c.compiled
	c.mu.RUnlock()

	if !compiled {
		c.Compile()
	}

	// Contextual binding: keyed by the identifier whose construction is
	// currently on top of the stack.
	var contextual Factory
	if parent, ok := c.parent(); ok {
		contextual = c.contextualFor(parent, key)
	}

	if err := c.enter(key); err != nil {
		return nil, err
	}
	defer c.leave()

	if contextual != nil {
		v, err := contextual(c)
		if err != nil {
			return nil, &UnresolvableError{ID: key, Cause: err}
		}
		return c.finish(key, v, false)
	}

	c.mu.RLock()
	known := c.has(key)
	st := c.strategies[key]
	fn := c.factoryCache[key]
	typ := c.types[key]
	c.mu.RUnlock()

	if !known {
		return nil, &NotFoundError{ID: id}
	}

	switch {
	case st != nil:
		return c.execute(key, st)
	case fn != nil:
		v, err := fn(c)
		if err != nil {
			return nil, &UnresolvableError{ID: key, Cause: err}
		}
		if f, ok := v.(finished); ok {
			return f.value, nil
		}
		return c.finish(key, v, false)
	case typ != nil:
		// Legacy reflective resolution: no compiled strategy, the type table
		// alone drives construction.
		if c.debug {
			c.log.Debug("reflective fallback", "id", key)
		}
		v, err := c.construct(key, typ, typeDependencies(typ))
		if err != nil {
			return nil, err
		}
		return c.finish(key, v, false)
	default:
		return nil, &UnresolvableError{ID: key, Cause: fmt.Errorf("definition has no usable target")}
	}
}

// execute runs a compiled instantiation strategy.
func (c *Container) execute(key string, st *strategy) (any, error) {
	if st.err != nil {
		return nil, &UnresolvableError{ID: key, Cause: st.err}
	}

	var (
		v   any
		err error
	)
	switch st.kind {
	case strategyFactory:
		v, err = st.factory(c)
		if err != nil {
			return nil, &UnresolvableError{ID: key, Cause: err}
		}
	case strategyConstruct:
		if st.typ != nil {
			v, err = c.construct(key, st.typ, st.deps)
		} else {
			v, err = c.call(key, st.ctor, st.returnsErr, st.deps)
		}
		if err != nil {
			return nil, err
		}
	}
	return c.finish(key, v, st.singleton)
}

// construct builds a pointer-to-struct value, injecting resolved
// dependencies into tagged fields. Zero-dependency types may come from the
// recycler instead of a fresh allocation; a recycler miss is identical to
// constructing fresh.
func (c *Container) construct(key string, t reflect.Type, deps []dependency) (any, error) {
	if len(deps) == 0 && c.recycler != nil {
		if v, ok := c.recycler.Acquire(t); ok {
			return v, nil
		}
	}

	v := reflect.New(t.Elem())
	for _, dep := range deps {
		rv, err := c.resolveDependency(key, dep)
		if err != nil {
			return nil, err
		}
		if !rv.IsValid() {
			continue // optional miss keeps the zero value
		}
		field := v.Elem().Field(dep.index)
		if !rv.Type().AssignableTo(field.Type()) {
			return nil, &UnresolvableParameterError{
				ID:     key,
				Param:  dep.name,
				Reason: fmt.Sprintf("resolved %v is not assignable to %v", rv.Type(), field.Type()),
			}
		}
		field.Set(rv)
	}
	return v.Interface(), nil
}

// call invokes a constructor function with resolved positional arguments.
func (c *Container) call(key string, fn reflect.Value, returnsErr bool, deps []dependency) (any, error) {
	args := make([]reflect.Value, len(deps))
	for i, dep := range deps {
		rv, err := c.resolveDependency(key, dep)
		if err != nil {
			return nil, err
		}
		if !rv.IsValid() {
			rv = reflect.Zero(dep.typ)
		}
		if !rv.Type().AssignableTo(dep.typ) {
			return nil, &UnresolvableParameterError{
				ID:     key,
				Param:  dep.name,
				Reason: fmt.Sprintf("resolved %v is not assignable to %v", rv.Type(), dep.typ),
			}
		}
		args[i] = rv
	}

	out := fn.Call(args)
	if returnsErr && !out[1].IsNil() {
		return nil, &UnresolvableError{ID: key, Cause: out[1].Interface().(error)}
	}
	return out[0].Interface(), nil
}

// resolveDependency produces the value for one dependency slot. An invalid
// reflect.Value result means "use the zero value" (optional fallback).
func (c *Container) resolveDependency(key string, dep dependency) (reflect.Value, error) {
	if dep.err != nil {
		if dep.optional {
			return reflect.Value{}, nil
		}
		var pe *UnresolvableParameterError
		if errors.As(dep.err, &pe) {
			return reflect.Value{}, &UnresolvableParameterError{ID: key, Param: pe.Param, Reason: pe.Reason}
		}
		return reflect.Value{}, &UnresolvableError{ID: key, Cause: dep.err}
	}
	if dep.container {
		return reflect.ValueOf(c), nil
	}

	v, err := c.Get(dep.id)
	if err != nil {
		if dep.optional {
			return reflect.Value{}, nil
		}
		var cyc *CircularDependencyError
		if errors.As(err, &cyc) {
			return reflect.Value{}, err // keep the full cycle path intact
		}
		return reflect.Value{}, &UnresolvableError{ID: key, Cause: err}
	}
	if v == nil {
		return reflect.Zero(dep.typ), nil
	}
	return reflect.ValueOf(v), nil
}

// finished marks a factory result whose extenders, caching, and callbacks
// already ran in a nested Get. The outer factory branch must return it as-is
// instead of running finish a second time.
type finished struct {
	value any
}

// finish applies extenders, materializes singleton results, and fires
// after-resolve callbacks.
func (c *Container) finish(key string, v any, singleton bool) (any, error) {
	c.mu.RLock()
	exts := append([]Extender(nil), c.extenders[key]...)
	callbacks := append([]func(string, any){}, c.afterResolving...)
	c.mu.RUnlock()

	for _, ext := range exts {
		v = ext(v, c)
	}
	if singleton {
		c.mu.Lock()
		c.singletons[key] = v
		c.mu.Unlock()
	}
	for _, cb := range callbacks {
		cb(key, v)
	}
	return v, nil
}

// ── Resolution stack ──────────────────────────────────────────────────────────

// enter pushes an identifier onto the resolution stack, failing on a revisit
// (cycle) or when the depth bound is exceeded. Every successful enter is
// paired with a deferred leave, so the stack never retains a stale entry
// after an error unwinds past it.
func (c *Container) enter(key string) error {
	for _, s := range c.stack {
		if s == key {
			path := append(append([]string(nil), c.stack...), key)
			return &CircularDependencyError{ID: key, Path: path}
		}
	}
	if len(c.stack) >= c.maxDepth {
		return &UnresolvableError{
			ID:    key,
			Cause: fmt.Errorf("maximum resolution depth %d exceeded", c.maxDepth),
		}
	}
	c.stack = append(c.stack, key)
	return nil
}

func (c *Container) leave() {
	c.stack = c.stack[:len(c.stack)-1]
}

// reenter pops the identifier currently under construction around fn, so a
// deferred-provider interceptor can resolve the very identifier it was
// invoked for without tripping the cycle guard.
func (c *Container) reenter(fn func() (any, error)) (any, error) {
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	v, err := fn()
	c.stack = append(c.stack, top)
	return v, err
}

func (c *Container) parent() (string, bool) {
	if len(c.stack) == 0 {
		return "", false
	}
	return c.stack[len(c.stack)-1], true
}
