package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/config"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/syncjob"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		StoreDriver:          config.StoreDriverMemory,
		HTTPAddr:             ":0",
		CacheEnabled:         true,
		CacheTTL:             time.Minute,
		CacheMaxEntries:      10,
		MetricsEnabled:       true,
		PokeAPIBaseURL:       "http://127.0.0.1:0",
		PokeAPITimeout:       time.Second,
		SyncDefaultRateLimit: time.Second,
		MinRosterSize:        8,
		MaxRosterSize:        10,
		MaxTransactions:      10,
		InternalJobToken:     "secret",
	}
}

func TestNew_MemoryStoreServesRoutes(t *testing.T) {
	t.Parallel()

	application, err := New(t.Context(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}

	tests := []struct {
		path   string
		header string
		want   int
	}{
		{path: "/healthz", want: http.StatusOK},
		{path: "/metrics", want: http.StatusOK},
		{path: "/v1/internal/sync/pokemon", want: http.StatusUnauthorized},
		{path: "/v1/internal/sync/pokemon", header: "secret", want: http.StatusOK},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.header != "" {
			req.Header.Set("X-Internal-Job-Token", tc.header)
		}
		rec := httptest.NewRecorder()
		application.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("GET %s: status=%d want=%d body=%s", tc.path, rec.Code, tc.want, rec.Body.String())
		}
	}
}

func TestNew_RejectsEmptyAddr(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.HTTPAddr = ""
	if _, err := New(t.Context(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty http addr")
	}
}

func TestApp_ShutdownLeavesRunnerIdle(t *testing.T) {
	t.Parallel()

	application, err := New(t.Context(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	if err := application.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if state := application.SyncRunner.Status().State; state != syncjob.StateIdle {
		t.Fatalf("unexpected runner state after shutdown: %s", state)
	}
}

func TestFormatDBQueryForTrace(t *testing.T) {
	t.Parallel()

	got := formatDBQueryForTrace("  SELECT *\n\tFROM draft_pool\n WHERE season_id = $1 ")
	if got != "SELECT * FROM draft_pool WHERE season_id = $1" {
		t.Fatalf("unexpected formatted query: %q", got)
	}
}
