package container

import (
	"fmt"
	"time"

	uuid "github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// origin is the location a request comes from.
type origin struct {
	container *Container
	path      []string
}

// resolution is the state of one top-level Resolve call. It is threaded
// through every nested resolution and never shared between calls.
type resolution struct {
	log  *logrus.Entry
	path []string // canonical keys of the factories under construction
}

// located is an entry found by lookup, together with where it lives.
type located struct {
	owner   *Container
	module  []string
	name    string
	factory *factoryEntry
	value   *valueEntry
}

func (l *located) id() string  { return joinPath(extend(l.module, l.name)) }
func (l *located) key() string { return l.owner.name + ":" + l.id() }

// ── Entry point ───────────────────────────────────────────────────────────────

func (c *Container) resolveTop(from []string, id string) (any, error) {
	st := &resolution{log: c.log}
	if c.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		if trace, err := uuid.NewV4(); err == nil {
			st.log = c.log.WithField("trace", trace.String())
		}
	}

	c.stats.calls.Inc(1)
	st.log.WithFields(logrus.Fields{"id": id, "from": joinPath(from)}).Debug("resolve")

	instance, err := c.resolve(st, from, id)
	if err != nil {
		c.stats.errors.Inc(1)
		st.log.WithError(err).WithField("id", id).Debug("resolve failed")
		return nil, err
	}
	return instance, nil
}

// resolve locates id as seen from module path from of c and builds it.
func (c *Container) resolve(st *resolution, from []string, id string) (any, error) {
	loc, err := c.locate(from, id)
	if err != nil {
		return nil, err
	}
	return loc.owner.build(st, loc)
}

// ── Lookup ────────────────────────────────────────────────────────────────────

// locate finds the entry id refers to, as seen from module path from of c.
// The innermost module and the nearest container win. A miss falls through
// to the enclosing modules, then to each ancestor's root module; a hit that
// is not visible stops the search.
func (c *Container) locate(from []string, id string) (*located, error) {
	segs := splitID(id)
	if segs == nil {
		return nil, &NotFoundError{ID: id, Reason: "malformed identifier"}
	}

	org := origin{container: c, path: from}
	var searched []*Container
	var reason string
	for cur := c; cur != nil; cur = cur.parent {
		if containsContainer(searched, cur) {
			break
		}
		searched = append(searched, cur)

		start := from
		if cur != c {
			start = nil
		}
		loc, miss, err := cur.lookup(org, start, segs, id)
		if err != nil {
			return nil, err
		}
		if loc != nil {
			return loc, nil
		}
		if reason == "" {
			reason = miss
		}
	}
	return nil, &NotFoundError{ID: id, Reason: reason, Scope: containerNames(searched)}
}

// lookup searches c for the first segment, from module path start outward to
// the root module, then descends the rest of the segments. On a miss it
// returns the innermost reason, if any.
func (c *Container) lookup(org origin, start, segs []string, id string) (*located, string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var reason string
	for depth := len(start); depth >= 0; depth-- {
		base := start[:depth]
		m := c.root.descendant(base)
		if m == nil || m.kindOf(segs[0]) == "" {
			continue
		}
		loc, err := c.descend(org, base, m, segs, id)
		var miss *NotFoundError
		switch {
		case err == nil:
			return loc, "", nil
		case errors.As(err, &miss):
			if reason == "" {
				reason = miss.Reason
			}
		default:
			return nil, "", err
		}
	}
	return nil, reason, nil
}

// descend walks segs starting at module m (found at path base), checking
// visibility at every step. Must hold c.mu.
func (c *Container) descend(org origin, base []string, m *module, segs []string, id string) (*located, error) {
	cur, path := m, base
	for _, seg := range segs[:len(segs)-1] {
		sub, ok := cur.modules[seg]
		if !ok {
			reason := fmt.Sprintf("module '%s' has no module '%s'", displayPath(path), seg)
			if kind := cur.kindOf(seg); kind != "" {
				reason = fmt.Sprintf("'%s' is a %s, not a module", seg, kind)
			}
			return nil, &NotFoundError{ID: id, Reason: reason}
		}
		if !c.reachable(org, path, sub.visibility) {
			return nil, &NotVisibleError{ID: id, Module: joinPath(path), Container: c.name, Entry: seg}
		}
		cur, path = sub, extend(path, seg)
	}

	leaf := segs[len(segs)-1]
	if f, ok := cur.factories[leaf]; ok {
		if !c.reachable(org, path, f.visibility) {
			return nil, &NotVisibleError{ID: id, Module: joinPath(path), Container: c.name, Entry: leaf}
		}
		return &located{owner: c, module: path, name: leaf, factory: f}, nil
	}
	if v, ok := cur.values[leaf]; ok {
		if !c.reachable(org, path, v.visibility) {
			return nil, &NotVisibleError{ID: id, Module: joinPath(path), Container: c.name, Entry: leaf}
		}
		return &located{owner: c, module: path, name: leaf, value: v}, nil
	}
	if _, ok := cur.modules[leaf]; ok {
		return nil, &NotFoundError{ID: id, Reason: fmt.Sprintf("'%s' is a module", leaf)}
	}
	return nil, &NotFoundError{ID: id, Reason: fmt.Sprintf("module '%s' has no '%s'", displayPath(path), leaf)}
}

// reachable reports whether an entry declared in module path declaredIn of c
// with the given visibility can be reached by org.
func (c *Container) reachable(org origin, declaredIn []string, visibility Visibility) bool {
	if visibility == Public {
		return true
	}
	return org.container == c && hasPrefix(org.path, declaredIn)
}

// ── Build ─────────────────────────────────────────────────────────────────────

// build returns the instance for loc, which must be owned by c.
func (c *Container) build(st *resolution, loc *located) (any, error) {
	if loc.value != nil {
		return loc.value.value, nil
	}

	f := loc.factory
	key := loc.key()
	if f.lifetime == Singleton {
		if instance, ok := c.cache.get(key); ok {
			c.stats.hits.Inc(1)
			st.log.WithField("id", key).Debug("singleton cache hit")
			return instance, nil
		}
	}

	for i, k := range st.path {
		if k == key {
			cycle := append(append([]string(nil), st.path[i:]...), key)
			return nil, &CyclicDependencyError{Cycle: cycle}
		}
	}
	st.path = append(st.path, key)
	defer func() { st.path = st.path[:len(st.path)-1] }()

	deps := &Deps{owner: c, from: loc.module, factory: loc.id(), needs: f.needs, st: st}
	start := time.Now()
	instance, err := f.factory(deps)
	c.stats.latency.UpdateSince(start)
	c.stats.builds.Inc(1)
	if err != nil {
		return nil, err
	}
	st.log.WithFields(logrus.Fields{"id": key, "lifetime": f.lifetime.String()}).Debug("factory built")

	if f.lifetime == Singleton {
		instance = c.cache.store(key, instance)
	}
	return instance, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func containsContainer(list []*Container, c *Container) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}

func containerNames(list []*Container) []string {
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.name
	}
	return names
}

func displayPath(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}
	return joinPath(path)
}
