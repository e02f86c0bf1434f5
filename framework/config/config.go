package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App       AppConfig
	Log       LogConfig
	Debug     DebugConfig
	Container ContainerConfig
}

type AppConfig struct {
	Name string
	Env  string // local | production | testing
}

type LogConfig struct {
	Level  string // any logrus level name
	Format string // text | json, json by default in production
	Caller bool   // report the calling function on every entry
}

type DebugConfig struct {
	Addr            string        // listen address of the debug HTTP server
	ShutdownTimeout time.Duration // grace period for in-flight requests
}

type ContainerConfig struct {
	Root     string // name of the root container
	Manifest string // optional HCL manifest applied at boot
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	cfg := &Config{
		App: AppConfig{
			Name: env("APP_NAME", "di"),
			Env:  env("APP_ENV", "local"),
		},
		Debug: DebugConfig{
			Addr:            env("DEBUG_ADDR", ":8090"),
			ShutdownTimeout: time.Duration(GetInt("DEBUG_SHUTDOWN_TIMEOUT", 5)) * time.Second,
		},
		Container: ContainerConfig{
			Root:     env("CONTAINER_ROOT", "root"),
			Manifest: env("CONTAINER_MANIFEST", ""),
		},
	}

	format := "text"
	if cfg.IsProduction() {
		format = "json"
	}
	cfg.Log = LogConfig{
		Level:  env("LOG_LEVEL", "info"),
		Format: env("LOG_FORMAT", format),
		Caller: GetBool("LOG_CALLER", false),
	}
	return cfg
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value, or defaultVal when unset or malformed.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value, or defaultVal when unset or malformed.
func GetBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
