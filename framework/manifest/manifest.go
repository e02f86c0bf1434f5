// Package manifest declares containers, modules, factories and values in HCL
// and applies them to a container tree.
//
//	module "users" {
//	  factory "repo" {
//	    use   = "const"
//	    args  = { value = "users-repo" }
//	  }
//	  factory "service" {
//	    use        = "join"
//	    visibility = "public"
//	    lifetime   = "singleton"
//	    needs      = ["repo"]
//	    args       = { prefix = "service" }
//	  }
//	}
//
//	container "request" {
//	  value "port" {
//	    value      = 8080
//	    visibility = "public"
//	  }
//	}
//
// A factory's "use" names a Constructor in a Catalog; the manifest only wires
// Go code together, it never defines behaviour.
package manifest

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// File is a decoded manifest. Top-level entries go into the root module of
// the container the manifest is applied to.
type File struct {
	Name string // source file name, set by Parse and LoadFile

	Values     []*ValueBlock     `hcl:"value,block"`
	Factories  []*FactoryBlock   `hcl:"factory,block"`
	Modules    []*ModuleBlock    `hcl:"module,block"`
	Containers []*ContainerBlock `hcl:"container,block"`
}

// ValueBlock registers a pre-built value.
type ValueBlock struct {
	Name       string    `hcl:"name,label"`
	Value      cty.Value `hcl:"value"`
	Visibility *string   `hcl:"visibility,optional"`
}

// FactoryBlock registers a factory built by the catalog constructor Use.
type FactoryBlock struct {
	Name       string    `hcl:"name,label"`
	Use        string    `hcl:"use"`
	Lifetime   *string   `hcl:"lifetime,optional"`
	Visibility *string   `hcl:"visibility,optional"`
	Needs      []string  `hcl:"needs,optional"`
	Args       cty.Value `hcl:"args,optional"`
}

// ModuleBlock creates a sub-module and fills it.
type ModuleBlock struct {
	Name       string  `hcl:"name,label"`
	Visibility *string `hcl:"visibility,optional"`

	Values    []*ValueBlock   `hcl:"value,block"`
	Factories []*FactoryBlock `hcl:"factory,block"`
	Modules   []*ModuleBlock  `hcl:"module,block"`
}

// ContainerBlock creates a child container of the enclosing one.
type ContainerBlock struct {
	Name string `hcl:"name,label"`

	Values     []*ValueBlock     `hcl:"value,block"`
	Factories  []*FactoryBlock   `hcl:"factory,block"`
	Modules    []*ModuleBlock    `hcl:"module,block"`
	Containers []*ContainerBlock `hcl:"container,block"`
}

// Parse decodes manifest source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "failed to parse manifest %s", filename)
	}
	return decode(hclFile.Body, filename)
}

// LoadFile reads and decodes the manifest at path.
func LoadFile(path string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "failed to parse manifest %s", path)
	}
	return decode(hclFile.Body, path)
}

func decode(body hcl.Body, filename string) (*File, error) {
	var f File
	if diags := gohcl.DecodeBody(body, nil, &f); diags.HasErrors() {
		return nil, errors.Wrapf(diags, "failed to decode manifest %s", filename)
	}
	f.Name = filename
	return &f, nil
}
