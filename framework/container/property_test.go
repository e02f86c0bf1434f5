package container_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/moneyhub/di/framework/container"
)

const maxDepth = 4

// genModulePath generates 1..maxDepth valid module names.
func genModulePath() gopter.Gen {
	return gen.IntRange(1, maxDepth).FlatMap(func(n interface{}) gopter.Gen {
		return gen.SliceOfN(n.(int), gen.Identifier())
	}, reflect.TypeOf([]string{}))
}

// buildPath creates the module chain and registers "leaf" at the bottom.
func buildPath(path []string, value int, vis container.Visibility) (*container.Container, error) {
	c, err := container.New("root")
	if err != nil {
		return nil, err
	}
	r := c.Registrar()
	for _, name := range path {
		if r, err = r.CreateSubModule(name); err != nil {
			return nil, err
		}
	}
	_, err = r.RegisterValue("leaf", value, vis)
	return c, err
}

func TestProperties_Visibility(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("Public leaf under public modules resolves from the root", prop.ForAll(
		func(path []string, value int) bool {
			c, err := buildPath(path, value, container.Public)
			if err != nil {
				return false
			}
			got, err := c.Resolve(strings.Join(path, ".") + ".leaf")
			return err == nil && got == value
		},
		genModulePath(),
		gen.Int(),
	))

	properties.Property("Private leaf is hidden from the root but visible from its module", prop.ForAll(
		func(path []string, value int) bool {
			c, err := buildPath(path, value, container.Private)
			if err != nil {
				return false
			}
			modulePath := strings.Join(path, ".")
			if _, err := c.Resolve(modulePath + ".leaf"); !errors.Is(err, container.ErrNotVisible) {
				return false
			}
			got, err := c.FromModule(modulePath).Resolve("leaf")
			return err == nil && got == value
		},
		genModulePath(),
		gen.Int(),
	))

	properties.Property("Unregistered identifiers are never found", prop.ForAll(
		func(path []string) bool {
			c, err := buildPath(path, 1, container.Public)
			if err != nil {
				return false
			}
			_, err = c.Resolve(strings.Join(path, ".") + ".other")
			return errors.Is(err, container.ErrNotFound)
		},
		genModulePath(),
	))

	properties.TestingRun(t)
}

func TestProperties_Registration(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("A name is registered at most once per module", prop.ForAll(
		func(name string, first, second int) bool {
			c, _ := container.New("root")
			kinds := []func() error{
				func() error { _, err := c.RegisterValue(name, 1); return err },
				func() error { _, err := c.RegisterFactory(name, constant(1)); return err },
				func() error { _, err := c.CreateSubModule(name); return err },
			}
			if err := kinds[first](); err != nil {
				return false
			}
			return errors.Is(kinds[second](), container.ErrRegistrationConflict)
		},
		gen.Identifier(),
		gen.IntRange(0, 2),
		gen.IntRange(0, 2),
	))

	properties.Property("Names containing a dot are always rejected", prop.ForAll(
		func(a, b string) bool {
			c, _ := container.New("root")
			_, err := c.RegisterValue(a+"."+b, 1)
			return errors.Is(err, container.ErrInvalidRegistration)
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
