package container

import (
	"fmt"
	"reflect"
)

// Factory is a function that builds a concrete value from the container.
type Factory func(c *Container) (any, error)

// Extender wraps an already-resolved instance with decorator logic.
type Extender func(instance any, c *Container) any

// concreteKind is the closed discriminant for a binding target, decided once
// at bind time so resolution never re-inspects the raw value.
type concreteKind uint8

const (
	concreteType        concreteKind = iota // pointer-to-struct, built reflectively
	concreteConstructor                     // func(deps...) *T or (*T, error)
	concreteFactory                         // func(*Container) (any, error)
	concreteLiteral                         // any other value, resolved as itself
)

func (k concreteKind) String() string {
	switch k {
	case concreteType:
		return "type"
	case concreteConstructor:
		return "constructor"
	case concreteFactory:
		return "factory"
	case concreteLiteral:
		return "literal"
	}
	return "unknown"
}

// definition holds a registered service: its identifier, the discriminated
// concrete target, and the lifetime flag.
type definition struct {
	id        string
	kind      concreteKind
	singleton bool

	typ reflect.Type // concreteType: the *T pointer type

	ctor        reflect.Value // concreteConstructor
	ctorType    reflect.Type
	returnsErr  bool

	factory Factory // concreteFactory
	literal any     // concreteLiteral

	// err records a malformed target (e.g. a constructor with an invalid
	// signature). Binding always succeeds; the error surfaces on Get.
	err error
}

var (
	errType      = reflect.TypeOf((*error)(nil)).Elem()
	containerTyp = reflect.TypeOf((*Container)(nil))
)

// discriminate classifies a bind target into the concrete variant.
// A nil target self-binds: the type table supplies the concrete type at
// compile time (see compileLocked).
func discriminate(id string, target any, singleton bool) *definition {
	def := &definition{id: id, singleton: singleton}

	switch t := target.(type) {
	case nil:
		def.kind = concreteType // typ filled from the type table on compile
		return def
	case reflect.Type:
		return discriminateType(def, t)
	case Factory:
		def.kind = concreteFactory
		def.factory = t
		return def
	case func(*Container) (any, error):
		def.kind = concreteFactory
		def.factory = t
		return def
	case func(*Container) any:
		def.kind = concreteFactory
		def.factory = func(c *Container) (any, error) { return t(c), nil }
		return def
	}

	rt := reflect.TypeOf(target)
	switch {
	case rt.Kind() == reflect.Func:
		return discriminateConstructor(def, target)
	case rt.Kind() == reflect.Ptr && rt.Elem().Kind() == reflect.Struct && reflect.ValueOf(target).IsNil():
		// Typed nil pointer, e.g. (*Logger)(nil): a type reference, not a value.
		return discriminateType(def, rt)
	default:
		def.kind = concreteLiteral
		def.literal = target
		return def
	}
}

func discriminateType(def *definition, t reflect.Type) *definition {
	def.kind = concreteType
	if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		def.err = fmt.Errorf("target type must be a pointer to struct, got %v", t)
		return def
	}
	def.typ = t
	return def
}

// discriminateConstructor validates a constructor function the way nasc-style
// containers do: one or two results, first a pointer or interface, second
// (if present) an error.
func discriminateConstructor(def *definition, fn any) *definition {
	def.kind = concreteConstructor
	v := reflect.ValueOf(fn)
	t := v.Type()

	switch t.NumOut() {
	case 1:
	case 2:
		if !t.Out(1).Implements(errType) {
			def.err = fmt.Errorf("constructor second result must be error, got %v", t.Out(1))
			return def
		}
		def.returnsErr = true
	default:
		def.err = fmt.Errorf("constructor must return (*T) or (*T, error), got %d results", t.NumOut())
		return def
	}

	out := t.Out(0)
	if out.Kind() != reflect.Ptr && out.Kind() != reflect.Interface {
		def.err = fmt.Errorf("constructor must return a pointer or interface, got %v", out)
		return def
	}

	def.ctor = v
	def.ctorType = t
	return def
}

// TypeKey returns the package-qualified type name of v, useful as a stable
// identifier when binding by type rather than by hand-picked name.
//
//	key := container.TypeKey((*UserRepository)(nil))  // "main.UserRepository"
//	c.Singleton(key, (*EloquentUserRepository)(nil))
func TypeKey(v any) string {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	return typeKey(t)
}

func typeKey(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
