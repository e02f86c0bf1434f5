package container

import (
	"fmt"

	"github.com/pkg/errors"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider bundles a group of registrations, typically one module.
//
// Register is called once, with a handle on the container's root module.
// Boot is called after ALL providers have been registered, making it safe
// to resolve other entries inside Boot().
//
//	type BillingProvider struct{ container.BaseProvider }
//
//	func (p *BillingProvider) Register(r *container.Registrar) error {
//	    billing, err := r.CreateSubModule("billing", container.Public)
//	    if err != nil {
//	        return err
//	    }
//	    _, err = billing.RegisterFactory("invoices", newInvoices,
//	        container.WithVisibility(container.Public),
//	        container.WithLifetime(container.Singleton))
//	    return err
//	}
type ServiceProvider interface {
	// Register adds entries to the container.
	// Do NOT resolve anything here; use Boot() for that.
	Register(r *Registrar) error

	// Boot is called after all providers are registered.
	Boot(c *Container) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with a no-op Boot().
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders
// against one container.
type ProviderRegistry struct {
	app        *Container
	providers  []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register calls the provider's Register() against the container's root
// module. Registering the same provider instance twice is a no-op.
// Providers registered after Boot() are booted immediately.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}

	if err := provider.Register(r.app.Registrar()); err != nil {
		return errors.Wrapf(err, "register %T", provider)
	}
	r.registered[provider] = true
	r.providers = append(r.providers, provider)
	r.app.log.WithField("provider", typeName(provider)).Debug("provider registered")

	if r.booted {
		if err := provider.Boot(r.app); err != nil {
			return errors.Wrapf(err, "boot %T", provider)
		}
	}
	return nil
}

// Boot calls Boot() on all registered providers, in registration order.
// It stops at the first error. Calling Boot again after success is a no-op.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	for _, provider := range r.providers {
		if err := provider.Boot(r.app); err != nil {
			return errors.Wrapf(err, "boot %T", provider)
		}
	}
	r.booted = true
	return nil
}

// Booted returns true if Boot() has completed.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
