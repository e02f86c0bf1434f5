package container

import (
	"sort"

	"github.com/pkg/errors"
)

// Validate checks the declared dependency graph of every factory registered
// in c without invoking any factory. It reports every dependency that cannot
// be located (not found or not visible from the factory's module) and every
// cycle among declared dependencies.
//
//	if err := c.Validate(); err != nil {
//	    log.Fatal(err)
//	}
func (c *Container) Validate() error {
	v := &validator{state: make(map[string]int), seen: make(map[string]bool)}
	for _, loc := range c.ownFactories() {
		v.visit(loc, nil)
	}
	if len(v.errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errs}
}

const (
	unvisited = iota
	active
	done
)

type validator struct {
	state map[string]int
	seen  map[string]bool
	errs  []error
}

func (v *validator) add(err error) {
	if v.seen[err.Error()] {
		return
	}
	v.seen[err.Error()] = true
	v.errs = append(v.errs, err)
}

func (v *validator) visit(loc *located, stack []string) {
	key := loc.key()
	switch v.state[key] {
	case done:
		return
	case active:
		for i, k := range stack {
			if k == key {
				cycle := append(append([]string(nil), stack[i:]...), key)
				v.add(&CyclicDependencyError{Cycle: cycle})
				break
			}
		}
		return
	}

	v.state[key] = active
	stack = append(stack, key)
	for _, id := range loc.factory.needs {
		dep, err := loc.owner.locate(loc.module, id)
		if err != nil {
			v.add(errors.Wrapf(err, "factory '%s'", key))
			continue
		}
		if dep.factory != nil {
			v.visit(dep, stack)
		}
	}
	v.state[key] = done
}

// ownFactories lists every factory in c's module tree, sorted by path.
func (c *Container) ownFactories() []*located {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*located
	var walk func(m *module, path []string)
	walk = func(m *module, path []string) {
		for _, name := range sortedKeys(m.factories) {
			out = append(out, &located{owner: c, module: path, name: name, factory: m.factories[name]})
		}
		for _, name := range sortedKeys(m.modules) {
			walk(m.modules[name], extend(path, name))
		}
	}
	walk(c.root, nil)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
