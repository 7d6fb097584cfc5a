package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.StoreDriver != StoreDriverPostgres {
		t.Fatalf("unexpected store driver: %q", cfg.StoreDriver)
	}
	if !cfg.CacheEnabled || cfg.CacheTTL != 90*time.Second || cfg.CacheMaxEntries != 80 {
		t.Fatalf("unexpected cache defaults: enabled=%v ttl=%s max=%d", cfg.CacheEnabled, cfg.CacheTTL, cfg.CacheMaxEntries)
	}
	if cfg.PokeAPIMaxKnownID != 1025 {
		t.Fatalf("unexpected max known id: %d", cfg.PokeAPIMaxKnownID)
	}
	if cfg.SyncDefaultBatchSize != 10 || cfg.SyncMaxBatchSize != 50 || cfg.SyncDefaultRateLimit != time.Second {
		t.Fatalf("unexpected sync defaults: %+v", cfg)
	}
	if cfg.MinRosterSize != 8 || cfg.MaxRosterSize != 10 || cfg.MaxTransactions != 10 {
		t.Fatalf("unexpected roster rule defaults: %+v", cfg)
	}
	if !cfg.DBSeedOnStart {
		t.Fatalf("expected seeding on start in dev by default")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown store driver", env: map[string]string{"STORE_DRIVER": "redis"}},
		{name: "uptrace without dsn", env: map[string]string{"UPTRACE_ENABLED": "true", "UPTRACE_DSN": ""}},
		{name: "pyroscope without server", env: map[string]string{"PYROSCOPE_ENABLED": "true", "PYROSCOPE_SERVER_ADDRESS": ""}},
		{name: "invalid bool", env: map[string]string{"DB_DISABLE_PREPARED_BINARY_RESULT": "not-bool"}},
		{name: "zero cache ttl", env: map[string]string{"CACHE_TTL": "0s"}},
		{name: "negative sync rate", env: map[string]string{"SYNC_DEFAULT_RATE_LIMIT": "-1s"}},
		{name: "batch above max", env: map[string]string{"SYNC_DEFAULT_BATCH_SIZE": "60", "SYNC_MAX_BATCH_SIZE": "50"}},
		{name: "roster bounds inverted", env: map[string]string{"ROSTER_MIN_SIZE": "11", "ROSTER_MAX_SIZE": "10"}},
		{name: "non numeric concurrency", env: map[string]string{"RESOLVE_MAX_CONCURRENCY": "many"}},
		{name: "zero request rate", env: map[string]string{"POKEAPI_REQUESTS_PER_SECOND": "0"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv("UPTRACE_ENABLED", "false")
			for key, value := range tc.env {
				t.Setenv(key, value)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %v", tc.env)
			}
		})
	}
}

func TestLoad_SyncRateLimitAllowsZero(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("SYNC_DEFAULT_RATE_LIMIT", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SyncDefaultRateLimit != 0 {
		t.Fatalf("expected zero rate limit, got %s", cfg.SyncDefaultRateLimit)
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "draft-pool-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "draft-pool-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
		t.Fatalf("unexpected CORS origins: %+v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("STORE_DRIVER=memory\nAPP_SERVICE_NAME=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("STORE_DRIVER", "")
	t.Setenv("APP_SERVICE_NAME", "from-env")
	if err := os.Unsetenv("STORE_DRIVER"); err != nil {
		t.Fatalf("unset STORE_DRIVER: %v", err)
	}

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("STORE_DRIVER"); got != "memory" {
		t.Fatalf("expected STORE_DRIVER from file, got %q", got)
	}
	if got := os.Getenv("APP_SERVICE_NAME"); got != "from-env" {
		t.Fatalf("existing env must win over file, got %q", got)
	}
}
