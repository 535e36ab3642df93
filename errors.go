package container

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when an identifier has no definition, instance,
// factory, or registered type. Callers may probe with Has first to avoid it.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("container: no binding registered for [%s]", e.ID)
}

// CircularDependencyError indicates that a construction chain revisited an
// identifier already under construction. ID names the identifier that closed
// the cycle; Path is the full chain from the top-level Get down to it.
type CircularDependencyError struct {
	ID   string
	Path []string
}

func (e *CircularDependencyError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("container: circular dependency on [%s]", e.ID)
	}
	return fmt.Sprintf("container: circular dependency on [%s]: %s", e.ID, strings.Join(e.Path, " -> "))
}

// UnresolvableParameterError indicates a dependency slot that can never be
// satisfied: an untyped (any) field or parameter, a builtin-typed field with
// no bound identifier, or a resolved value that does not fit the slot.
type UnresolvableParameterError struct {
	ID     string // identifier whose construction failed
	Param  string // field name or positional parameter, e.g. "Logger" or "#1"
	Reason string
}

func (e *UnresolvableParameterError) Error() string {
	return fmt.Sprintf("container: [%s] parameter %s: %s", e.ID, e.Param, e.Reason)
}

// UnresolvableError wraps the failure to produce an instance for an
// identifier: a nested dependency failed, a constructor returned an error, or
// the maximum resolution depth was exceeded.
type UnresolvableError struct {
	ID    string
	Cause error
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("container: unable to resolve [%s]: %v", e.ID, e.Cause)
}

// Unwrap exposes the underlying cause so errors.Is and errors.As see through
// nested resolution failures.
func (e *UnresolvableError) Unwrap() error {
	return e.Cause
}
