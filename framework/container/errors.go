package container

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors below, for use with errors.Is.
var (
	ErrRegistrationConflict  = errors.New("registration conflict")
	ErrInvalidRegistration   = errors.New("invalid registration")
	ErrContainerNameConflict = errors.New("container name conflict")
	ErrNotFound              = errors.New("not found")
	ErrNotVisible            = errors.New("not visible")
	ErrCyclicDependency      = errors.New("cyclic dependency")
	ErrUndeclaredDependency  = errors.New("undeclared dependency")
)

// ── Registration ──────────────────────────────────────────────────────────────

// RegistrationConflictError is returned when a name is already taken by a
// factory, value or module of the same module.
type RegistrationConflictError struct {
	Name     string
	Existing string // "factory", "value" or "module"
}

func (e *RegistrationConflictError) Error() string {
	return fmt.Sprintf("cannot register '%s': already registered as a %s", e.Name, e.Existing)
}

func (e *RegistrationConflictError) Is(target error) bool { return target == ErrRegistrationConflict }

// InvalidRegistrationError is returned for malformed registration input.
type InvalidRegistrationError struct {
	Name   string
	Reason string
}

func (e *InvalidRegistrationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid registration: %s", e.Reason)
	}
	return fmt.Sprintf("cannot register '%s': %s", e.Name, e.Reason)
}

func (e *InvalidRegistrationError) Is(target error) bool { return target == ErrInvalidRegistration }

// ContainerNameConflictError is returned by Child when the requested name is
// already used somewhere on the ancestor chain.
type ContainerNameConflictError struct {
	Name string
	Path []string // from the would-be parent up to the clashing container
}

func (e *ContainerNameConflictError) Error() string {
	return fmt.Sprintf("cannot use container name '%s': parent container named '%s' already exists: %s",
		e.Name, e.Name, strings.Join(e.Path, " -> "))
}

func (e *ContainerNameConflictError) Is(target error) bool { return target == ErrContainerNameConflict }

// ── Resolution ────────────────────────────────────────────────────────────────

// NotFoundError is returned when an identifier cannot be located anywhere in
// the scope visible to the requester.
type NotFoundError struct {
	ID     string
	Reason string   // optional detail, e.g. "'x' is a module"
	Scope  []string // containers searched, innermost first
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "'%s' not found", e.ID)
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if len(e.Scope) > 0 {
		fmt.Fprintf(&b, " (searched %s)", strings.Join(e.Scope, " -> "))
	}
	return b.String()
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotVisibleError is returned when an identifier exists but is private to a
// module the requester is not part of.
type NotVisibleError struct {
	ID        string
	Module    string // dotted path of the offending module ("" for the root)
	Container string
	Entry     string // offending module or entry name
}

func (e *NotVisibleError) Error() string {
	where := e.Module
	if where == "" {
		where = "<root>"
	}
	return fmt.Sprintf("cannot resolve '%s': '%s' in module '%s' of container '%s' is not visible from here",
		e.ID, e.Entry, where, e.Container)
}

func (e *NotVisibleError) Is(target error) bool { return target == ErrNotVisible }

// CyclicDependencyError names every member of the cycle, in order, with the
// repeated identifier at both ends.
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	if len(e.Cycle) == 0 {
		return "cyclic dependency detected"
	}
	return fmt.Sprintf("cyclic dependency detected: %s", strings.Join(e.Cycle, " -> "))
}

func (e *CyclicDependencyError) Is(target error) bool { return target == ErrCyclicDependency }

// UndeclaredDependencyError is returned when a factory asks its Deps for an
// identifier it did not list with Needs.
type UndeclaredDependencyError struct {
	Factory string
	ID      string
}

func (e *UndeclaredDependencyError) Error() string {
	return fmt.Sprintf("factory '%s' requested '%s' without declaring it", e.Factory, e.ID)
}

func (e *UndeclaredDependencyError) Is(target error) bool { return target == ErrUndeclaredDependency }

// ValidationError aggregates every problem found by Validate.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation failed: %v", e.Errors[0])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "validation failed with %d errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %v\n", i+1, err)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() []error { return e.Errors }
