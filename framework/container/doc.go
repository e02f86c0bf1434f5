// Package container provides a hierarchical, module-scoped dependency
// injection container.
//
// # Overview
//
// A Container owns a tree of modules. Each module holds named factories,
// named values and nested modules, each tagged Public or Private. Containers
// form a tree of their own: a child container sees the Public entries of
// every ancestor once its own lookup fails.
//
// Go cannot observe which dependencies a function reads, so every factory
// declares them up front with Needs and reads them through its *Deps.
//
// # Container Lifecycle
//
//  1. Create: c, err := container.New("app")
//  2. Register modules, factories and values (or providers)
//  3. Optionally c.Validate() the declared graph
//  4. Resolve
//
// # Registration
//
//	// Value: Private unless told otherwise
//	c.RegisterValue("dsn", "postgres://localhost/app")
//
//	// Module with a Private helper and a Public, cached service
//	users := container.Must(c.CreateSubModule("users", container.Public))
//	container.Must(users.RegisterFactory("repo", newRepo, container.Needs("dsn")))
//	container.Must(users.RegisterFactory("service", newService,
//	    container.Needs("repo"),
//	    container.WithVisibility(container.Public),
//	    container.WithLifetime(container.Singleton),
//	))
//
// # Resolving
//
//	svc, err := c.Resolve("users.service")          // Public: ok
//	_, err = c.Resolve("users.repo")                // Private: not visible
//	repo, err := c.FromModule("users").Resolve("repo") // from inside: ok
//
//	// Generic
//	svc, err := container.Resolve[*UserService](c, "users.service")
//
// # Lookup rules
//
// An identifier is a dot-separated path. Its first segment is looked up in
// the requesting module, then each enclosing module up to the root, then in
// the root module of each ancestor container. The remaining segments descend
// through sub-modules. Private modules and entries are reachable only from
// inside the module that declares them, in the same container.
//
// # Lifetimes
//
// Transient factories run on every resolution. Singleton factories run once
// per owning container; later resolutions, from that container or any
// descendant, return the cached instance.
//
// # Errors
//
// Every failure is a typed error that matches a sentinel with errors.Is:
// ErrNotFound, ErrNotVisible, ErrCyclicDependency, ErrRegistrationConflict,
// ErrInvalidRegistration, ErrContainerNameConflict, ErrUndeclaredDependency.
// Errors returned by factories are passed through unchanged.
//
// # Service Providers
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&BillingProvider{})
//	registry.Boot()
package container
