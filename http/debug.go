package http

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5/middleware"
	metrics "github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"

	"github.com/moneyhub/di/framework/container"
	"github.com/moneyhub/di/routing"
)

// Containers returns the containers the debug endpoints may inspect, by name.
type Containers func() map[string]*container.Container

// DebugHandler serves read-only views of a container tree:
//
//	GET /debug/containers                 → names
//	GET /debug/containers/{name}          → container.DebugInfo
//	GET /debug/containers/{name}/scope    → visible scope
//	GET /debug/containers/{name}/validate → 200 or 422 with every problem
//	GET /debug/metrics                    → go-metrics registry as JSON
type DebugHandler struct {
	containers Containers
	registry   metrics.Registry
	log        *logrus.Entry
}

// NewDebugHandler creates a DebugHandler.
func NewDebugHandler(containers Containers, registry metrics.Registry, logger *logrus.Logger) *DebugHandler {
	return &DebugHandler{
		containers: containers,
		registry:   registry,
		log:        logger.WithField("component", "debug"),
	}
}

type ctxKey struct{}

// Routes mounts the debug endpoints on r under /debug. Responses are never
// cached and unknown paths under /debug get a JSON 404.
func (h *DebugHandler) Routes(r *routing.Router) {
	r.Prefix("/debug", func(r *routing.Router) {
		r.Middleware(middleware.NoCache)
		r.NotFound(h.notFound)

		r.Get("/containers", h.list)
		r.Get("/metrics", h.metricsJSON)

		r.Group(func(r *routing.Router) {
			r.Middleware(h.withContainer)
			r.Get("/containers/{name}", h.show)
			r.Get("/containers/{name}/scope", h.scope)
			r.Get("/containers/{name}/validate", h.validate)
		})
	})
}

// withContainer looks up the {name} container, answering 404 when unknown.
func (h *DebugHandler) withContainer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := routing.Param(r, "name")
		c, ok := h.containers()[name]
		if !ok {
			NewResponse(w).NotFound("container '" + name + "' not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, c)))
	})
}

func current(r *http.Request) *container.Container {
	return r.Context().Value(ctxKey{}).(*container.Container)
}

func (h *DebugHandler) notFound(w http.ResponseWriter, r *http.Request) {
	NewResponse(w).NotFound("no debug endpoint at " + r.URL.Path)
}

func (h *DebugHandler) list(w http.ResponseWriter, _ *http.Request) {
	all := h.containers()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	NewResponse(w).Success(names)
}

func (h *DebugHandler) show(w http.ResponseWriter, r *http.Request) {
	NewResponse(w).Success(current(r).DebugInfo())
}

func (h *DebugHandler) scope(w http.ResponseWriter, r *http.Request) {
	NewResponse(w).Success(current(r).VisibleScope())
}

func (h *DebugHandler) validate(w http.ResponseWriter, r *http.Request) {
	err := current(r).Validate()
	if err == nil {
		NewResponse(w).Success(map[string]bool{"valid": true})
		return
	}

	var verr *container.ValidationError
	if !errors.As(err, &verr) {
		h.log.WithError(err).Error("validate")
		NewResponse(w).ServerError()
		return
	}
	problems := make([]string, len(verr.Errors))
	for i, e := range verr.Errors {
		problems[i] = e.Error()
	}
	NewResponse(w).Unprocessable("validation failed", problems)
}

func (h *DebugHandler) metricsJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	metrics.WriteJSONOnce(h.registry, w)
}
