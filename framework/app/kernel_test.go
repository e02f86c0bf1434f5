package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	metrics "github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/moneyhub/di/framework/app"
	"github.com/moneyhub/di/framework/config"
	"github.com/moneyhub/di/framework/container"
	"github.com/moneyhub/di/framework/manifest"
	"github.com/moneyhub/di/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func testConfig(manifestPath string) *config.Config {
	return &config.Config{
		App:       config.AppConfig{Name: "billing", Env: "testing"},
		Log:       config.LogConfig{Level: "debug", Format: "text"},
		Debug:     config.DebugConfig{Addr: "127.0.0.1:0"},
		Container: config.ContainerConfig{Root: "root", Manifest: manifestPath},
	}
}

func newApp(t *testing.T, manifestPath string) (*app.Application, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	a, err := app.NewWithConfig(testConfig(manifestPath), logger)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	return a, hook
}

// ── Framework providers ──────────────────────────────────────────────────────

func TestApp_FrameworkServicesResolvable(t *testing.T) {
	a, _ := newApp(t, "")
	if err := a.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	if name, err := container.Resolve[string](a, "config.app_name"); err != nil || name != "billing" {
		t.Errorf("config.app_name: got %q, %v", name, err)
	}
	if cfg, err := container.Resolve[*config.Config](a, "config.all"); err != nil || cfg != a.Config {
		t.Errorf("config.all: got %v, %v", cfg, err)
	}
	if logger, err := container.Resolve[*logrus.Logger](a, "log.logger"); err != nil || logger != a.Log {
		t.Errorf("log.logger: got %v, %v", logger, err)
	}
	if reg, err := container.Resolve[metrics.Registry](a, "metrics.registry"); err != nil || reg != a.Metrics() {
		t.Errorf("metrics.registry: got %v, %v", reg, err)
	}
	r1, err := container.Resolve[*routing.Router](a, "http.router")
	if err != nil {
		t.Fatalf("http.router: %v", err)
	}
	r2, _ := container.Resolve[*routing.Router](a, "http.router")
	if r1 != r2 {
		t.Error("http.router should be a singleton")
	}
}

func TestApp_DebugHandlerIsPrivate(t *testing.T) {
	a, _ := newApp(t, "")
	_ = a.Boot()
	if _, err := a.Resolve("debug.handler"); err == nil {
		t.Error("debug.handler should not be visible from the root module")
	}
}

func TestApp_DebugServerServesContainers(t *testing.T) {
	a, _ := newApp(t, "testdata/app.hcl")
	if err := a.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	srv, err := container.Resolve[*http.Server](a, "debug.server")
	if err != nil {
		t.Fatalf("debug.server: %v", err)
	}
	if srv.Addr != "127.0.0.1:0" {
		t.Errorf("Addr: got %q", srv.Addr)
	}

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug/containers", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, `"request"`) || !strings.Contains(body, `"root"`) {
		t.Errorf("body should list both containers: %s", body)
	}
}

// ── Manifest ─────────────────────────────────────────────────────────────────

func TestApp_BootAppliesManifest(t *testing.T) {
	a, _ := newApp(t, "testdata/app.hcl")
	if err := a.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	hello, err := a.Resolve("greetings.hello")
	if err != nil || hello != "hello billing" {
		t.Errorf("greetings.hello: got %v, %v", hello, err)
	}

	req, err := a.Lookup("request")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	got, err := req.Resolve("greeting")
	if err != nil || got != "request says: hello billing" {
		t.Errorf("request greeting: got %v, %v", got, err)
	}
}

func TestApp_CustomCatalog(t *testing.T) {
	a, _ := newApp(t, "")
	a.Catalog = a.Catalog.With(manifest.Catalog{
		"answer": func(map[string]any) (container.Factory, error) {
			return func(*container.Deps) (any, error) { return 42, nil }, nil
		},
	})
	f, err := manifest.Parse([]byte("factory \"answer\" {\n  use = \"answer\"\n}\n"), "inline.hcl")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := manifest.Apply(a.Container, f, a.Catalog); err != nil {
		t.Fatal(err)
	}
	if got, _ := a.Resolve("answer"); got != 42 {
		t.Errorf("got %v, want 42", got)
	}
}

func TestApp_BootFailsOnMissingManifest(t *testing.T) {
	a, _ := newApp(t, "testdata/missing.hcl")
	if err := a.Boot(); err == nil {
		t.Error("Boot should fail when the manifest cannot be read")
	}
	if a.Providers.Booted() {
		t.Error("providers must not be booted after a failed Boot")
	}
}

func TestApp_BootWarnsAboutBrokenGraphs(t *testing.T) {
	a, hook := newApp(t, "testdata/broken.hcl")
	if err := a.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	warned := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["container"] == "root" {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a validation warning for the root container")
	}
}

func TestApp_BootIsIdempotent(t *testing.T) {
	a, _ := newApp(t, "testdata/app.hcl")
	if err := a.Boot(); err != nil {
		t.Fatal(err)
	}
	// A second manifest application would collide on every name.
	if err := a.Boot(); err != nil {
		t.Errorf("second Boot: %v", err)
	}
}

// ── Containers / Lookup / Adopt ──────────────────────────────────────────────

func TestApp_LookupUnknown(t *testing.T) {
	a, _ := newApp(t, "")
	_, err := a.Lookup("ghost")
	if err == nil || !strings.Contains(err.Error(), "known: [root]") {
		t.Errorf("got %v", err)
	}
}

func TestApp_Adopt(t *testing.T) {
	a, _ := newApp(t, "")
	child, _ := a.Child("session")
	if err := a.Adopt(child); err != nil {
		t.Fatal(err)
	}
	if got, err := a.Lookup("session"); err != nil || got != child {
		t.Errorf("Lookup(session): got %v, %v", got, err)
	}

	other, _ := a.Child("session")
	if err := a.Adopt(other); err == nil {
		t.Error("adopting a second container with the same name should fail")
	}
}

func TestApp_ContainersIsACopy(t *testing.T) {
	a, _ := newApp(t, "")
	all := a.Containers()
	delete(all, "root")
	if _, err := a.Lookup("root"); err != nil {
		t.Error("mutating the returned map must not affect the application")
	}
}

// ── Run ──────────────────────────────────────────────────────────────────────

func TestApp_RunStopsOnCancel(t *testing.T) {
	a, _ := newApp(t, "")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
