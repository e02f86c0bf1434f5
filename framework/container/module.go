package container

import (
	"strings"
	"unicode"
)

// ── Module tree ───────────────────────────────────────────────────────────────

// Factory builds an instance from its resolved dependencies.
//
//	func(d *container.Deps) (any, error) {
//	    db, err := container.Dep[*sql.DB](d, "db")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &UserRepository{DB: db}, nil
//	}
type Factory func(d *Deps) (any, error)

// factoryEntry is a registered factory and its policies.
type factoryEntry struct {
	factory    Factory
	lifetime   Lifetime
	visibility Visibility
	needs      []string
}

// valueEntry is a pre-built value.
type valueEntry struct {
	value      any
	visibility Visibility
}

// module is one namespace level. A name lives in at most one of the maps.
type module struct {
	visibility Visibility

	modules   map[string]*module
	factories map[string]*factoryEntry
	values    map[string]*valueEntry
}

func newModule(visibility Visibility) *module {
	return &module{
		visibility: visibility,
		modules:    make(map[string]*module),
		factories:  make(map[string]*factoryEntry),
		values:     make(map[string]*valueEntry),
	}
}

// kindOf reports what a name is registered as in m, or "" if it is free.
func (m *module) kindOf(name string) string {
	if _, ok := m.factories[name]; ok {
		return "factory"
	}
	if _, ok := m.values[name]; ok {
		return "value"
	}
	if _, ok := m.modules[name]; ok {
		return "module"
	}
	return ""
}

// descendant follows path down from m. It returns nil if any step is missing.
func (m *module) descendant(path []string) *module {
	cur := m
	for _, seg := range path {
		next, ok := cur.modules[seg]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// ── Names & paths ─────────────────────────────────────────────────────────────

// validName reports whether name can be registered: non-empty, no path
// separator, no whitespace or control characters.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r == '.' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// splitID splits a dotted identifier into its segments, or returns nil if
// any segment is not a valid name.
func splitID(id string) []string {
	segs := strings.Split(id, ".")
	for _, seg := range segs {
		if !validName(seg) {
			return nil
		}
	}
	return segs
}

func joinPath(path []string) string { return strings.Join(path, ".") }

// hasPrefix reports whether path lies inside (or is) the module at prefix.
func hasPrefix(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

// extend returns a fresh slice path+name, never aliasing path's backing array.
func extend(path []string, name string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, name)
}
