// Package pipeline compiles container-resolved middleware chains and
// handlers into an HTTP router. It is a demonstration consumer of the
// resolution engine: middleware and handlers are registered as container
// bindings and referenced here purely by identifier, so swapping an
// implementation is a rebind, not a code change.
package pipeline

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/highperapp/container"
)

// Middleware is the shape every middleware binding must resolve to.
type Middleware func(http.Handler) http.Handler

// Route maps an HTTP method and pattern to a handler identifier. The
// identifier must resolve to an http.Handler or http.HandlerFunc.
type Route struct {
	Method  string
	Pattern string
	Handler string
}

// Spec describes one pipeline: global middleware by identifier, an optional
// tag whose members are appended in tag order, and the routes.
type Spec struct {
	Middleware    []string
	MiddlewareTag string
	Routes        []Route
}

// Compiler builds routers from pipeline specs.
type Compiler struct {
	c *container.Container
}

// New creates a Compiler backed by c.
func New(c *container.Container) *Compiler {
	return &Compiler{c: c}
}

// Compile resolves every referenced identifier and assembles a chi router.
// Recoverer is always installed first so a panicking handler cannot take the
// process down.
func (p *Compiler) Compile(spec Spec) (chi.Router, error) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	for _, id := range spec.Middleware {
		mw, err := p.middleware(id)
		if err != nil {
			return nil, err
		}
		r.Use(mw)
	}

	if spec.MiddlewareTag != "" {
		tagged, err := p.c.Tagged(spec.MiddlewareTag)
		if err != nil {
			return nil, fmt.Errorf("pipeline: middleware tag %q: %w", spec.MiddlewareTag, err)
		}
		for _, v := range tagged {
			mw, err := asMiddleware(v)
			if err != nil {
				return nil, fmt.Errorf("pipeline: middleware tag %q: %w", spec.MiddlewareTag, err)
			}
			r.Use(mw)
		}
	}

	for _, route := range spec.Routes {
		h, err := p.handler(route.Handler)
		if err != nil {
			return nil, err
		}
		r.Method(route.Method, route.Pattern, h)
	}
	return r, nil
}

func (p *Compiler) middleware(id string) (func(http.Handler) http.Handler, error) {
	v, err := p.c.Get(id)
	if err != nil {
		return nil, fmt.Errorf("pipeline: middleware %q: %w", id, err)
	}
	mw, err := asMiddleware(v)
	if err != nil {
		return nil, fmt.Errorf("pipeline: middleware %q: %w", id, err)
	}
	return mw, nil
}

func asMiddleware(v any) (func(http.Handler) http.Handler, error) {
	switch mw := v.(type) {
	case Middleware:
		return mw, nil
	case func(http.Handler) http.Handler:
		return mw, nil
	default:
		return nil, fmt.Errorf("resolved to %T, want Middleware", v)
	}
}

func (p *Compiler) handler(id string) (http.Handler, error) {
	v, err := p.c.Get(id)
	if err != nil {
		return nil, fmt.Errorf("pipeline: handler %q: %w", id, err)
	}
	switch h := v.(type) {
	case http.Handler:
		return h, nil
	case func(http.ResponseWriter, *http.Request):
		return http.HandlerFunc(h), nil
	default:
		return nil, fmt.Errorf("pipeline: handler %q resolved to %T, want http.Handler", id, v)
	}
}
