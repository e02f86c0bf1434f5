package container_test

import (
	"errors"
	"testing"

	"github.com/moneyhub/di/framework/container"
)

func TestValidate_CleanGraph(t *testing.T) {
	c := mustNew(t, "root")
	container.Must(c.RegisterValue("dsn", "x"))
	users := container.Must(c.CreateSubModule("users"))
	container.Must(users.RegisterFactory("repo", constant("r"), container.Needs("dsn")))
	container.Must(users.RegisterFactory("service", constant("s"), container.Needs("repo")))

	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	c := mustNew(t, "root")
	mod := container.Must(c.CreateSubModule("mod"))
	container.Must(mod.RegisterValue("secret", 1))
	container.Must(c.RegisterFactory("missing", constant(1), container.Needs("nowhere")))
	container.Must(c.RegisterFactory("peeker", constant(1), container.Needs("mod.secret")))
	container.Must(c.RegisterFactory("a", constant(1), container.Needs("b")))
	container.Must(c.RegisterFactory("b", constant(1), container.Needs("a")))

	err := c.Validate()
	var verr *container.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want *ValidationError", err)
	}
	if len(verr.Errors) != 3 {
		t.Fatalf("got %d errors, want 3:\n%v", len(verr.Errors), err)
	}
	for _, sentinel := range []error{container.ErrNotFound, container.ErrNotVisible, container.ErrCyclicDependency} {
		if !errors.Is(err, sentinel) {
			t.Errorf("errors.Is(err, %v) = false", sentinel)
		}
	}
}

func TestValidate_DoesNotRunFactories(t *testing.T) {
	c := mustNew(t, "root")
	calls := 0
	container.Must(c.RegisterFactory("dep", counting(&calls)))
	container.Must(c.RegisterFactory("svc", counting(&calls), container.Needs("dep")))

	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("Validate must not invoke factories, got %d calls", calls)
	}
}

func TestValidate_FollowsAncestorFactories(t *testing.T) {
	root := mustNew(t, "root")
	container.Must(root.RegisterFactory("shared", constant(1),
		container.Needs("ghost"),
		container.WithVisibility(container.Public),
	))
	child, _ := root.Child("child")
	container.Must(child.RegisterFactory("svc", constant(1), container.Needs("shared")))

	if err := child.Validate(); !errors.Is(err, container.ErrNotFound) {
		t.Errorf("got %v, want the ancestor's missing dependency reported", err)
	}
}
