package container

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ── Registrar ─────────────────────────────────────────────────────────────────

// Registrar registers factories, values and sub-modules into one module of a
// container. Every method returns a Registrar so calls can be chained through
// Must:
//
//	billing := container.Must(c.CreateSubModule("billing", container.Public))
//	container.Must(billing.RegisterValue("currency", "EUR"))
//	container.Must(billing.RegisterFactory("invoices", newInvoices,
//	    container.Needs("currency"),
//	    container.WithVisibility(container.Public),
//	))
//
// A rejected call leaves the module tree exactly as it was.
type Registrar struct {
	container *Container
	path      []string
}

// Registrar returns the handle for the container's root module.
func (c *Container) Registrar() *Registrar {
	return &Registrar{container: c}
}

// Path returns the dotted module path this handle registers into.
func (r *Registrar) Path() string { return joinPath(r.path) }

// Container returns the container this handle registers into.
func (r *Registrar) Container() *Container { return r.container }

// Must unwraps a (Registrar, error) pair, panicking on error. It keeps
// fluent setup code short where a registration error is a programming bug.
func Must(r *Registrar, err error) *Registrar {
	if err != nil {
		panic(err)
	}
	return r
}

// CreateSubModule adds a module under the current one and returns a handle
// scoped to it. Visibility defaults to Public.
func (r *Registrar) CreateSubModule(name string, visibility ...Visibility) (*Registrar, error) {
	vis := Public
	if len(visibility) > 0 {
		vis = visibility[0]
	}
	if !vis.valid() {
		return nil, &InvalidRegistrationError{Name: name, Reason: fmt.Sprintf("invalid visibility %d", int(vis))}
	}

	err := r.mutate(name, func(m *module) {
		m.modules[name] = newModule(vis)
	})
	if err != nil {
		return nil, err
	}
	r.container.log.WithField("module", joinPath(extend(r.path, name))).Debug("module created")
	return &Registrar{container: r.container, path: extend(r.path, name)}, nil
}

// ── Factories ─────────────────────────────────────────────────────────────────

// FactoryOption configures a factory registration.
type FactoryOption func(*factoryEntry)

// WithLifetime sets the factory's lifetime. Default Transient.
func WithLifetime(lifetime Lifetime) FactoryOption {
	return func(f *factoryEntry) { f.lifetime = lifetime }
}

// WithVisibility sets the factory's visibility. Default Private.
func WithVisibility(visibility Visibility) FactoryOption {
	return func(f *factoryEntry) { f.visibility = visibility }
}

// Needs declares the identifiers the factory will ask its Deps for.
// Identifiers are resolved relative to the factory's own module.
func Needs(ids ...string) FactoryOption {
	return func(f *factoryEntry) { f.needs = append(f.needs, ids...) }
}

// RegisterFactory registers a factory under name in the current module.
//
//	r.RegisterFactory("public", func(d *container.Deps) (any, error) {
//	    p, err := container.Dep[string](d, "private")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return "publicInstance -> " + p, nil
//	}, container.Needs("private"), container.WithVisibility(container.Public))
func (r *Registrar) RegisterFactory(name string, factory Factory, opts ...FactoryOption) (*Registrar, error) {
	if factory == nil {
		return nil, &InvalidRegistrationError{Name: name, Reason: "factory is nil"}
	}

	entry := &factoryEntry{factory: factory, lifetime: Transient, visibility: Private}
	for _, opt := range opts {
		opt(entry)
	}
	if !entry.lifetime.valid() {
		return nil, &InvalidRegistrationError{Name: name, Reason: fmt.Sprintf("unknown lifetime %d", int(entry.lifetime))}
	}
	if !entry.visibility.valid() {
		return nil, &InvalidRegistrationError{Name: name, Reason: fmt.Sprintf("invalid visibility %d", int(entry.visibility))}
	}
	for _, id := range entry.needs {
		if splitID(id) == nil {
			return nil, &InvalidRegistrationError{Name: name, Reason: fmt.Sprintf("malformed dependency '%s'", id)}
		}
	}
	entry.needs = append([]string(nil), entry.needs...)

	err := r.mutate(name, func(m *module) {
		m.factories[name] = entry
	})
	if err != nil {
		return nil, err
	}
	r.container.log.WithFields(logrus.Fields{
		"id":       joinPath(extend(r.path, name)),
		"lifetime": entry.lifetime.String(),
	}).Debug("factory registered")
	return r, nil
}

// ── Values ────────────────────────────────────────────────────────────────────

// RegisterValue registers a pre-built value under name in the current module.
// Visibility defaults to Private. An untyped nil value is rejected as missing.
func (r *Registrar) RegisterValue(name string, value any, visibility ...Visibility) (*Registrar, error) {
	if value == nil {
		return nil, &InvalidRegistrationError{Name: name, Reason: "value not defined"}
	}
	vis := Private
	if len(visibility) > 0 {
		vis = visibility[0]
	}
	if !vis.valid() {
		return nil, &InvalidRegistrationError{Name: name, Reason: fmt.Sprintf("invalid visibility %d", int(vis))}
	}

	err := r.mutate(name, func(m *module) {
		m.values[name] = &valueEntry{value: value, visibility: vis}
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// mutate validates name against the current module and, only if every check
// passes, applies fn under the container's write lock.
func (r *Registrar) mutate(name string, fn func(m *module)) error {
	if !validName(name) {
		return &InvalidRegistrationError{Name: name, Reason: "name must be a non-empty identifier without '.' or spaces"}
	}

	r.container.mu.Lock()
	defer r.container.mu.Unlock()

	m := r.container.root.descendant(r.path)
	if m == nil {
		return &InvalidRegistrationError{Name: name, Reason: fmt.Sprintf("module '%s' does not exist", joinPath(r.path))}
	}
	if kind := m.kindOf(name); kind != "" {
		return &RegistrationConflictError{Name: name, Existing: kind}
	}
	fn(m)
	return nil
}

// ── Root-module sugar ─────────────────────────────────────────────────────────

// CreateSubModule adds a module to the container's root module.
func (c *Container) CreateSubModule(name string, visibility ...Visibility) (*Registrar, error) {
	return c.Registrar().CreateSubModule(name, visibility...)
}

// RegisterFactory registers a factory in the container's root module.
func (c *Container) RegisterFactory(name string, factory Factory, opts ...FactoryOption) (*Registrar, error) {
	return c.Registrar().RegisterFactory(name, factory, opts...)
}

// RegisterValue registers a value in the container's root module.
func (c *Container) RegisterValue(name string, value any, visibility ...Visibility) (*Registrar, error) {
	return c.Registrar().RegisterValue(name, value, visibility...)
}
