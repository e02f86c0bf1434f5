package app

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"

	"github.com/moneyhub/di/framework/config"
	"github.com/moneyhub/di/framework/container"
	"github.com/moneyhub/di/framework/logging"
	"github.com/moneyhub/di/framework/manifest"
	"github.com/moneyhub/di/framework/providers"
)

const defaultShutdownTimeout = 5 * time.Second

// Application is the top-level application container.
// It embeds the root Container and a ProviderRegistry so user code can
// register and resolve on app directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
	Config    *config.Config
	Log       *logrus.Logger

	// Catalog is what manifest factories may "use". Extend it before Boot.
	Catalog manifest.Catalog

	mu         sync.RWMutex
	containers map[string]*container.Container
}

// New loads config from envFiles (default ".env") and the environment,
// builds the logger and creates the application.
func New(envFiles ...string) (*Application, error) {
	cfg := config.Load(envFiles...)
	return NewWithConfig(cfg, logging.New(cfg))
}

// NewWithConfig creates the application from an explicit config and logger.
// The framework providers are registered, not booted.
func NewWithConfig(cfg *config.Config, logger *logrus.Logger) (*Application, error) {
	c, err := container.New(cfg.Container.Root,
		container.WithLogger(logger),
		container.WithMetrics(metrics.NewRegistry()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create root container")
	}

	a := &Application{
		Container:  c,
		Providers:  container.NewProviderRegistry(c),
		Config:     cfg,
		Log:        logger,
		Catalog:    manifest.Builtins(),
		containers: map[string]*container.Container{c.Name(): c},
	}

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Logger: logger},
		&providers.MetricsServiceProvider{},
		&providers.RoutingServiceProvider{},
		&providers.DebugServiceProvider{Containers: a.Containers},
	} {
		if err := a.Providers.Register(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot applies the configured manifest (if any), boots every provider and
// logs validation problems of every container. Calling Boot again is a no-op.
func (a *Application) Boot() error {
	if a.Providers.Booted() {
		return nil
	}
	if path := a.Config.Container.Manifest; path != "" {
		if err := a.LoadManifest(path); err != nil {
			return err
		}
	}
	if err := a.Providers.Boot(); err != nil {
		return err
	}

	for name, c := range a.Containers() {
		if err := c.Validate(); err != nil {
			a.Log.WithError(err).WithField("container", name).Warn("container has unresolvable dependencies")
		}
	}
	a.Log.WithField("containers", len(a.Containers())).Info("application booted")
	return nil
}

// LoadManifest applies the HCL manifest at path to the root container.
func (a *Application) LoadManifest(path string) error {
	f, err := manifest.LoadFile(path)
	if err != nil {
		return err
	}
	created, err := manifest.Apply(a.Container, f, a.Catalog)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for name, c := range created {
		if existing, ok := a.containers[name]; ok && existing != c {
			return errors.Errorf("%s: container '%s' is already known", path, name)
		}
		a.containers[name] = c
	}
	a.Log.WithFields(logrus.Fields{"manifest": path, "containers": len(created)}).Info("manifest applied")
	return nil
}

// Adopt makes a container created outside a manifest visible to Lookup and
// the debug endpoints.
func (a *Application) Adopt(c *container.Container) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.containers[c.Name()]; ok && existing != c {
		return errors.Errorf("container '%s' is already known", c.Name())
	}
	a.containers[c.Name()] = c
	return nil
}

// Containers returns every known container by name.
func (a *Application) Containers() map[string]*container.Container {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]*container.Container, len(a.containers))
	for k, v := range a.containers {
		out[k] = v
	}
	return out
}

// Lookup returns the named container.
func (a *Application) Lookup(name string) (*container.Container, error) {
	all := a.Containers()
	if c, ok := all[name]; ok {
		return c, nil
	}
	names := make([]string, 0, len(all))
	for n := range all {
		names = append(names, n)
	}
	sort.Strings(names)
	return nil, errors.Errorf("unknown container '%s' (known: %v)", name, names)
}

// Run boots the application (if needed) and serves the debug endpoints
// until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Boot(); err != nil {
		return err
	}
	srv, err := container.Resolve[*http.Server](a.Container, "debug.server")
	if err != nil {
		return errors.Wrap(err, "resolve debug server")
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	a.Log.WithFields(logrus.Fields{"addr": srv.Addr, "env": a.Config.App.Env}).Info("debug server listening")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "debug server")
	case <-ctx.Done():
		timeout := a.Config.Debug.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		a.Log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
