package container

import (
	"fmt"
	"reflect"
	"strings"
)

// dependency is one slot in an identifier's ordered dependency list. Order
// matters: it is the positional binding order during construction.
type dependency struct {
	id        string       // identifier to resolve; empty for container/deferred slots
	typ       reflect.Type // declared type of the slot
	index     int          // struct field index or constructor parameter position
	name      string       // field name or "#n" for parameters, used in errors
	optional  bool         // fall back to the zero value when unresolved
	container bool         // the slot receives the container itself
	err       error        // configuration error deferred to resolution time
}

// buildGraph derives the dependency list for every class-bound definition.
// Factory and literal definitions have no graph entry. The graph is rebuilt
// whole on every compile and never mutated incrementally.
func buildGraph(defs map[string]*definition, types map[string]reflect.Type) map[string][]dependency {
	graph := make(map[string][]dependency)
	for id, def := range defs {
		switch def.kind {
		case concreteType:
			t := def.typ
			if t == nil {
				// Self-binding: the type table supplies the target.
				t = types[id]
			}
			if t == nil {
				continue
			}
			graph[id] = typeDependencies(t)
		case concreteConstructor:
			if def.err != nil {
				continue
			}
			graph[id] = ctorDependencies(def.ctorType)
		}
	}
	return graph
}

// typeDependencies records the inject-tagged fields of a pointer-to-struct
// type, in field order. Untagged fields are excluded and keep their zero
// value; that is the Go analog of an untyped parameter with a default.
func typeDependencies(t reflect.Type) []dependency {
	elem := t.Elem()
	var deps []dependency
	for i := 0; i < elem.NumField(); i++ {
		field := elem.Field(i)
		tag, tagged := field.Tag.Lookup("inject")
		if !tagged {
			continue
		}

		dep := dependency{typ: field.Type, index: i, name: field.Name}
		id, opts, _ := strings.Cut(tag, ",")
		dep.id = id
		dep.optional = opts == "optional"

		switch {
		case field.PkgPath != "":
			dep.err = fmt.Errorf("inject field %s is unexported", field.Name)
		case field.Type == containerTyp:
			dep.container = true
		case isUntyped(field.Type):
			// The empty interface carries no type to resolve by — the analog
			// of a union-typed parameter. Deferred, not a graph-build error.
			dep.err = &UnresolvableParameterError{
				Param:  field.Name,
				Reason: "untyped (any) dependencies are unsupported",
			}
		case isBuiltin(field.Type):
			if dep.id == "" {
				dep.err = &UnresolvableParameterError{
					Param:  field.Name,
					Reason: fmt.Sprintf("builtin type %v needs an explicit identifier in its inject tag", field.Type),
				}
			}
		default:
			if dep.id == "" {
				dep.id = typeKey(field.Type)
			}
		}
		deps = append(deps, dep)
	}
	return deps
}

// ctorDependencies records a constructor function's parameters in positional
// order. Go signatures have no defaults, so builtin parameters are
// unresolvable unless bound under an explicit identifier — which parameters
// cannot carry, so the error is deferred to resolution time.
func ctorDependencies(t reflect.Type) []dependency {
	deps := make([]dependency, 0, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		in := t.In(i)
		dep := dependency{typ: in, index: i, name: fmt.Sprintf("#%d", i)}

		switch {
		case in == containerTyp:
			dep.container = true
		case isUntyped(in):
			dep.err = &UnresolvableParameterError{
				Param:  dep.name,
				Reason: "untyped (any) parameters are unsupported",
			}
		case isBuiltin(in):
			dep.err = &UnresolvableParameterError{
				Param:  dep.name,
				Reason: fmt.Sprintf("builtin parameter type %v has no bound identifier", in),
			}
		default:
			dep.id = typeKey(in)
		}
		deps = append(deps, dep)
	}
	return deps
}

// isBuiltin reports whether t is a primitive kind excluded from the graph.
func isBuiltin(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	}
	return false
}

// isUntyped reports whether t is an empty interface.
func isUntyped(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}
