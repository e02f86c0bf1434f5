package manifest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/moneyhub/di/framework/container"
)

// Constructor turns a factory block's args into a container.Factory.
type Constructor func(args map[string]any) (container.Factory, error)

// Catalog maps the names a manifest may "use" to Go constructors.
type Catalog map[string]Constructor

// Builtins returns the constructors every catalog starts with:
//
//	const  returns args.value
//	join   joins args.prefix and every dependency, in declared order, with
//	       args.separator (default " -> ")
//	list   returns the dependencies as []any, in declared order
//	map    returns the dependencies as map[string]any keyed by identifier
func Builtins() Catalog {
	return Catalog{
		"const": constConstructor,
		"join":  joinConstructor,
		"list":  listConstructor,
		"map":   mapConstructor,
	}
}

// With returns a copy of c extended by other. Entries in other win.
func (c Catalog) With(other Catalog) Catalog {
	out := make(Catalog, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Names lists the catalog's constructor names, sorted.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func constConstructor(args map[string]any) (container.Factory, error) {
	value, ok := args["value"]
	if !ok || value == nil {
		return nil, errors.New("const: args.value is required")
	}
	return func(*container.Deps) (any, error) { return value, nil }, nil
}

func joinConstructor(args map[string]any) (container.Factory, error) {
	sep := " -> "
	if s, ok := args["separator"]; ok {
		str, isString := s.(string)
		if !isString {
			return nil, errors.Errorf("join: args.separator must be a string, got %T", s)
		}
		sep = str
	}
	var prefix []string
	if p, ok := args["prefix"]; ok {
		prefix = append(prefix, fmt.Sprint(p))
	}

	return func(d *container.Deps) (any, error) {
		parts := append([]string(nil), prefix...)
		for _, id := range d.Names() {
			v, err := d.Get(id)
			if err != nil {
				return nil, err
			}
			parts = append(parts, fmt.Sprint(v))
		}
		return strings.Join(parts, sep), nil
	}, nil
}

func listConstructor(map[string]any) (container.Factory, error) {
	return func(d *container.Deps) (any, error) {
		out := make([]any, 0, len(d.Names()))
		for _, id := range d.Names() {
			v, err := d.Get(id)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}, nil
}

func mapConstructor(map[string]any) (container.Factory, error) {
	return func(d *container.Deps) (any, error) {
		return d.Map()
	}, nil
}
