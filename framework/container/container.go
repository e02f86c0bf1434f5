package container

import (
	"sync"

	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is one node in a tree of containers. It owns a module tree of
// factories, values and nested modules, and resolves identifiers against that
// tree first and its ancestors' trees second.
//
//	root, _ := container.New("root")
//	root.RegisterValue("dsn", "postgres://...", container.Public)
//
//	req, _ := root.Child("request")
//	dsn, err := req.Resolve("dsn") // found in "root"
type Container struct {
	// mu guards the module tree. It is never held while a factory runs.
	mu sync.RWMutex

	name   string
	parent *Container
	root   *module

	cache   *singletonCache
	log     *logrus.Entry
	metrics metrics.Registry
	stats   *instruments
}

// New creates a root container. The name is required.
//
//	c, err := container.New("app", container.WithLogger(logger))
func New(name string, opts ...Option) (*Container, error) {
	if name == "" {
		return nil, &InvalidRegistrationError{Reason: "must provide container name"}
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logrus.StandardLogger()
	}
	if o.registry == nil {
		o.registry = metrics.NewRegistry()
	}

	return newContainer(name, nil, o.logger.WithField("container", name), o.registry), nil
}

func newContainer(name string, parent *Container, log *logrus.Entry, registry metrics.Registry) *Container {
	return &Container{
		name:    name,
		parent:  parent,
		root:    newModule(Public),
		cache:   newSingletonCache(),
		log:     log,
		metrics: registry,
		stats:   newInstruments(registry),
	}
}

// Child creates a container whose parent is c. The name must not be used by
// c or any of its ancestors.
func (c *Container) Child(name string) (*Container, error) {
	if name == "" {
		return nil, &InvalidRegistrationError{Reason: "must provide container name"}
	}
	if path, found := c.VisiblePathToContainer(name); found {
		return nil, &ContainerNameConflictError{Name: name, Path: path}
	}

	child := newContainer(
		name,
		c,
		c.log.WithField("container", name),
		metrics.NewPrefixedChildRegistry(c.metrics, name+"."),
	)
	c.log.WithField("child", name).Debug("child container created")
	return child, nil
}

// Name returns the container's name.
func (c *Container) Name() string { return c.name }

// Parent returns the parent container, or nil for a root.
func (c *Container) Parent() *Container { return c.parent }

// Metrics returns the registry the container records its instruments into.
func (c *Container) Metrics() metrics.Registry { return c.metrics }

// ── Scope chain ───────────────────────────────────────────────────────────────

// VisibleScope lists container names from c up to the outermost ancestor,
// in the order resolution searches them.
func (c *Container) VisibleScope() []string {
	var names []string
	for cur := c; cur != nil; cur = cur.parent {
		names = append(names, cur.name)
	}
	return names
}

// VisiblePathToContainer returns the names from c up to the container called
// target, inclusive. found is false if target is neither c nor an ancestor.
func (c *Container) VisiblePathToContainer(target string) (path []string, found bool) {
	for cur := c; cur != nil; cur = cur.parent {
		path = append(path, cur.name)
		if cur.name == target {
			return path, true
		}
	}
	return nil, false
}

// ── Resolution entry points ───────────────────────────────────────────────────

// Resolver is anything identifiers can be resolved against: a Container or a
// Scope returned by FromModule.
type Resolver interface {
	Resolve(id string) (any, error)
}

// Resolve builds or returns the value registered under id, searching from
// this container's root module outward through its ancestors.
//
//	svc, err := c.Resolve("billing.invoices")
func (c *Container) Resolve(id string) (any, error) {
	return c.resolveTop(nil, id)
}

// FromModule returns a resolution context pinned to the dotted module path,
// so identifiers resolve as if requested from inside that module.
//
//	c.FromModule("billing").Resolve("invoices")
func (c *Container) FromModule(path string) *Scope {
	return &Scope{container: c, path: path}
}

// Scope resolves identifiers from inside one module of a container.
type Scope struct {
	container *Container
	path      string
}

// Resolve resolves id as if requested from inside the scope's module.
func (s *Scope) Resolve(id string) (any, error) {
	var from []string
	if s.path != "" {
		from = splitID(s.path)
		if from == nil {
			return nil, &NotFoundError{ID: s.path, Reason: "malformed module path"}
		}
	}

	s.container.mu.RLock()
	m := s.container.root.descendant(from)
	s.container.mu.RUnlock()
	if m == nil {
		return nil, &NotFoundError{ID: s.path, Reason: "no such module", Scope: []string{s.container.name}}
	}
	return s.container.resolveTop(from, id)
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve is a generic helper that resolves id and type-asserts the result.
//
//	db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](r Resolver, id string) (T, error) {
	var zero T
	instance, err := r.Resolve(id)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, errors.Errorf("container: Resolve[%T]: '%s' resolved to %T", zero, id, instance)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on any error.
func MustResolve[T any](r Resolver, id string) T {
	typed, err := Resolve[T](r, id)
	if err != nil {
		panic(err)
	}
	return typed
}

// ── Singleton cache ───────────────────────────────────────────────────────────

// singletonCache holds singleton instances of one container, keyed by the
// entry's canonical path.
type singletonCache struct {
	mu        sync.Mutex
	instances map[string]any
}

func newSingletonCache() *singletonCache {
	return &singletonCache{instances: make(map[string]any)}
}

func (sc *singletonCache) get(key string) (any, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	v, ok := sc.instances[key]
	return v, ok
}

// store keeps the first instance stored under key and returns it, so racing
// builders all hand out the same value.
func (sc *singletonCache) store(key string, instance any) any {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if existing, ok := sc.instances[key]; ok {
		return existing
	}
	sc.instances[key] = instance
	return instance
}
