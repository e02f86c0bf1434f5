package manifest

import (
	"github.com/pkg/errors"

	"github.com/moneyhub/di/framework/container"
)

// Apply registers f into root and creates every declared child container.
// It returns all containers by name, root included. Apply stops at the first
// error; entries registered before it stay registered.
//
//	f, err := manifest.LoadFile("containers.hcl")
//	containers, err := manifest.Apply(root, f, manifest.Builtins())
//	req := containers["request"]
func Apply(root *container.Container, f *File, catalog Catalog) (map[string]*container.Container, error) {
	a := &applier{
		file:       f.Name,
		catalog:    catalog,
		containers: map[string]*container.Container{root.Name(): root},
	}

	if err := a.fill(root.Registrar(), f.Values, f.Factories, f.Modules); err != nil {
		return nil, a.wrap(err, root)
	}
	if err := a.children(root, f.Containers); err != nil {
		return nil, err
	}
	return a.containers, nil
}

type applier struct {
	file       string
	catalog    Catalog
	containers map[string]*container.Container
}

func (a *applier) wrap(err error, c *container.Container) error {
	return errors.Wrapf(err, "%s: container '%s'", a.file, c.Name())
}

func (a *applier) children(parent *container.Container, blocks []*ContainerBlock) error {
	for _, block := range blocks {
		if _, dup := a.containers[block.Name]; dup {
			return errors.Errorf("%s: container '%s' declared more than once", a.file, block.Name)
		}
		child, err := parent.Child(block.Name)
		if err != nil {
			return errors.Wrapf(err, "%s", a.file)
		}
		a.containers[block.Name] = child

		if err := a.fill(child.Registrar(), block.Values, block.Factories, block.Modules); err != nil {
			return a.wrap(err, child)
		}
		if err := a.children(child, block.Containers); err != nil {
			return err
		}
	}
	return nil
}

func (a *applier) fill(r *container.Registrar, values []*ValueBlock, factories []*FactoryBlock, modules []*ModuleBlock) error {
	for _, v := range values {
		if err := a.value(r, v); err != nil {
			return errors.Wrapf(err, "value '%s'", v.Name)
		}
	}
	for _, fb := range factories {
		if err := a.factory(r, fb); err != nil {
			return errors.Wrapf(err, "factory '%s'", fb.Name)
		}
	}
	for _, m := range modules {
		vis, err := visibility(m.Visibility, container.Public)
		if err != nil {
			return errors.Wrapf(err, "module '%s'", m.Name)
		}
		sub, err := r.CreateSubModule(m.Name, vis)
		if err != nil {
			return err
		}
		if err := a.fill(sub, m.Values, m.Factories, m.Modules); err != nil {
			return errors.Wrapf(err, "module '%s'", m.Name)
		}
	}
	return nil
}

func (a *applier) value(r *container.Registrar, v *ValueBlock) error {
	vis, err := visibility(v.Visibility, container.Private)
	if err != nil {
		return err
	}
	native, err := toNative(v.Value)
	if err != nil {
		return err
	}
	_, err = r.RegisterValue(v.Name, native, vis)
	return err
}

func (a *applier) factory(r *container.Registrar, fb *FactoryBlock) error {
	construct, ok := a.catalog[fb.Use]
	if !ok {
		return errors.Errorf("unknown factory '%s' (catalog has %v)", fb.Use, a.catalog.Names())
	}
	args, err := toArgs(fb.Args)
	if err != nil {
		return err
	}
	factory, err := construct(args)
	if err != nil {
		return err
	}

	opts := []container.FactoryOption{container.Needs(fb.Needs...)}
	if fb.Lifetime != nil {
		lt, err := container.ParseLifetime(*fb.Lifetime)
		if err != nil {
			return err
		}
		opts = append(opts, container.WithLifetime(lt))
	}
	vis, err := visibility(fb.Visibility, container.Private)
	if err != nil {
		return err
	}
	opts = append(opts, container.WithVisibility(vis))

	_, err = r.RegisterFactory(fb.Name, factory, opts...)
	return err
}

func visibility(token *string, fallback container.Visibility) (container.Visibility, error) {
	if token == nil {
		return fallback, nil
	}
	return container.ParseVisibility(*token)
}
