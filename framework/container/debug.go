package container

import "fmt"

// ── Debug snapshot ────────────────────────────────────────────────────────────

// DebugInfo is a read-only structural snapshot of a container, its module
// tree and (recursively) its ancestors. It serialises to JSON.
type DebugInfo struct {
	Container string     `json:"container"`
	Scope     []string   `json:"scope"`
	Root      ModuleInfo `json:"root"`
	Parent    *DebugInfo `json:"parent,omitempty"`
}

// ModuleInfo describes one module. Entries are sorted by name.
type ModuleInfo struct {
	Name       string        `json:"name"`
	Path       string        `json:"path"`
	Visibility Visibility    `json:"visibility"`
	Factories  []FactoryInfo `json:"factories,omitempty"`
	Values     []ValueInfo   `json:"values,omitempty"`
	Modules    []ModuleInfo  `json:"modules,omitempty"`
}

// FactoryInfo describes a registered factory.
type FactoryInfo struct {
	Name       string     `json:"name"`
	Visibility Visibility `json:"visibility"`
	Lifetime   Lifetime   `json:"lifetime"`
	Needs      []string   `json:"needs,omitempty"`
	Cached     bool       `json:"cached"`
}

// ValueInfo describes a registered value. Type is its Go type.
type ValueInfo struct {
	Name       string     `json:"name"`
	Visibility Visibility `json:"visibility"`
	Type       string     `json:"type"`
}

// DebugInfo takes a snapshot of c. It has no side effects.
func (c *Container) DebugInfo() DebugInfo {
	info := DebugInfo{
		Container: c.name,
		Scope:     c.VisibleScope(),
	}

	c.mu.RLock()
	info.Root = c.moduleInfo("", nil, c.root)
	c.mu.RUnlock()

	if c.parent != nil {
		parent := c.parent.DebugInfo()
		info.Parent = &parent
	}
	return info
}

// moduleInfo must be called with c.mu held.
func (c *Container) moduleInfo(name string, path []string, m *module) ModuleInfo {
	info := ModuleInfo{
		Name:       name,
		Path:       joinPath(path),
		Visibility: m.visibility,
	}
	for _, n := range sortedKeys(m.factories) {
		f := m.factories[n]
		_, cached := c.cache.get(c.name + ":" + joinPath(extend(path, n)))
		info.Factories = append(info.Factories, FactoryInfo{
			Name:       n,
			Visibility: f.visibility,
			Lifetime:   f.lifetime,
			Needs:      append([]string(nil), f.needs...),
			Cached:     cached,
		})
	}
	for _, n := range sortedKeys(m.values) {
		v := m.values[n]
		info.Values = append(info.Values, ValueInfo{
			Name:       n,
			Visibility: v.visibility,
			Type:       fmt.Sprintf("%T", v.value),
		})
	}
	for _, n := range sortedKeys(m.modules) {
		info.Modules = append(info.Modules, c.moduleInfo(n, extend(path, n), m.modules[n]))
	}
	return info
}
