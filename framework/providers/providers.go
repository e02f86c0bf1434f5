// Package providers holds the service providers every application installs.
// They register the framework's own services into the root container, so
// application factories can depend on them like on anything else:
//
//	container.Needs("config.all", "log.logger")
package providers

import (
	"net/http"
	"time"

	metrics "github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"

	"github.com/moneyhub/di/framework/config"
	"github.com/moneyhub/di/framework/container"
	gohttp "github.com/moneyhub/di/http"
	"github.com/moneyhub/di/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider registers the loaded configuration.
//
// Registered entries (module "config", all public values):
//   - "config.all"      → *config.Config
//   - "config.app_name" → string
//   - "config.env"      → string
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(r *container.Registrar) error {
	mod, err := r.CreateSubModule("config", container.Public)
	if err != nil {
		return err
	}
	for name, value := range map[string]any{
		"all":      p.Config,
		"app_name": p.Config.App.Name,
		"env":      p.Config.App.Env,
	} {
		if _, err := mod.RegisterValue(name, value, container.Public); err != nil {
			return err
		}
	}
	return nil
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider registers the application logger.
//
// Registered entries:
//   - "log.logger" → *logrus.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *logrus.Logger
}

func (p *LoggingServiceProvider) Register(r *container.Registrar) error {
	mod, err := r.CreateSubModule("log", container.Public)
	if err != nil {
		return err
	}
	_, err = mod.RegisterValue("logger", p.Logger, container.Public)
	return err
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider registers the container's own metrics registry.
//
// Registered entries:
//   - "metrics.registry" → metrics.Registry
type MetricsServiceProvider struct {
	container.BaseProvider
}

func (p *MetricsServiceProvider) Register(r *container.Registrar) error {
	mod, err := r.CreateSubModule("metrics", container.Public)
	if err != nil {
		return err
	}
	_, err = mod.RegisterValue("registry", r.Container().Metrics(), container.Public)
	return err
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Registered entries:
//   - "http.router" → *routing.Router (singleton, needs "log.logger")
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(r *container.Registrar) error {
	mod, err := r.CreateSubModule("http", container.Public)
	if err != nil {
		return err
	}
	_, err = mod.RegisterFactory("router", func(d *container.Deps) (any, error) {
		logger, err := container.Dep[*logrus.Logger](d, "log.logger")
		if err != nil {
			return nil, err
		}
		return routing.New(logger), nil
	},
		container.Needs("log.logger"),
		container.WithLifetime(container.Singleton),
		container.WithVisibility(container.Public),
	)
	return err
}

// ── DebugServiceProvider ──────────────────────────────────────────────────────

// DebugServiceProvider registers the debug HTTP surface.
//
// Registered entries (module "debug"):
//   - "debug.handler" → http.Handler with the debug routes mounted on
//     "http.router" (private singleton)
//   - "debug.server"  → *http.Server listening on config Debug.Addr
//     (public singleton)
type DebugServiceProvider struct {
	container.BaseProvider
	Containers gohttp.Containers
}

func (p *DebugServiceProvider) Register(r *container.Registrar) error {
	mod, err := r.CreateSubModule("debug", container.Public)
	if err != nil {
		return err
	}

	containers := p.Containers
	_, err = mod.RegisterFactory("handler", func(d *container.Deps) (any, error) {
		router, err := container.Dep[*routing.Router](d, "http.router")
		if err != nil {
			return nil, err
		}
		registry, err := container.Dep[metrics.Registry](d, "metrics.registry")
		if err != nil {
			return nil, err
		}
		logger, err := container.Dep[*logrus.Logger](d, "log.logger")
		if err != nil {
			return nil, err
		}
		gohttp.NewDebugHandler(containers, registry, logger).Routes(router)
		return http.Handler(router), nil
	},
		container.Needs("http.router", "metrics.registry", "log.logger"),
		container.WithLifetime(container.Singleton),
	)
	if err != nil {
		return err
	}

	_, err = mod.RegisterFactory("server", func(d *container.Deps) (any, error) {
		cfg, err := container.Dep[*config.Config](d, "config.all")
		if err != nil {
			return nil, err
		}
		handler, err := container.Dep[http.Handler](d, "handler")
		if err != nil {
			return nil, err
		}
		return &http.Server{
			Addr:              cfg.Debug.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}, nil
	},
		container.Needs("config.all", "handler"),
		container.WithLifetime(container.Singleton),
		container.WithVisibility(container.Public),
	)
	return err
}
