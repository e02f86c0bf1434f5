package container

import "github.com/pkg/errors"

// Deps is the injection object handed to a Factory. Each declared dependency
// is resolved lazily, on Get, from the factory's own module, sharing the
// in-flight dependency path of the resolution that invoked the factory.
type Deps struct {
	owner   *Container
	from    []string
	factory string
	needs   []string
	st      *resolution
}

// Names returns the dependency identifiers the factory declared, in order.
func (d *Deps) Names() []string {
	return append([]string(nil), d.needs...)
}

// Get resolves one declared dependency.
func (d *Deps) Get(id string) (any, error) {
	if !d.declared(id) {
		return nil, &UndeclaredDependencyError{Factory: d.factory, ID: id}
	}
	return d.owner.resolve(d.st, d.from, id)
}

// Map resolves every declared dependency, keyed by identifier.
func (d *Deps) Map() (map[string]any, error) {
	out := make(map[string]any, len(d.needs))
	for _, id := range d.needs {
		v, err := d.Get(id)
		if err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, nil
}

func (d *Deps) declared(id string) bool {
	for _, n := range d.needs {
		if n == id {
			return true
		}
	}
	return false
}

// Dep resolves a declared dependency and type-asserts it.
//
//	cfg, err := container.Dep[*config.Config](d, "config.all")
func Dep[T any](d *Deps, id string) (T, error) {
	var zero T
	v, err := d.Get(id)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.Errorf("container: factory '%s': dependency '%s' is %T, not %T", d.factory, id, v, zero)
	}
	return typed, nil
}
