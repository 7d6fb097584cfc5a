package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/metadata"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/pool"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/transaction"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/infrastructure/repository/memory"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/logging"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/usecase"
	sonic "github.com/bytedance/sonic"
	"github.com/google/go-cmp/cmp"
)

type unavailableProvider struct{}

func (unavailableProvider) FetchPokemon(context.Context, string) (metadata.Record, error) {
	return metadata.Record{}, usecase.ErrProviderUnavailable
}

type testEnvelope struct {
	APIVersion string `json:"apiVersion"`
	Data       any    `json:"data"`
	Error      *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
		Errors []struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

func newTestRouter(t *testing.T, internalToken string) (http.Handler, *memory.LeagueStore) {
	t.Helper()

	logger := logging.NewNop()
	league := memory.NewLeagueStore(memory.SeedLeague())
	metadataRepo := memory.NewMetadataRepository(memory.SeedMetadata())

	poolService := usecase.NewPoolService(
		league.Seasons(),
		[]pool.Source{league.Pool()},
		metadataRepo,
		unavailableProvider{},
		usecase.PoolServiceConfig{},
		logger,
	)
	syncRunner := usecase.NewMetadataSyncRunner(
		metadataRepo,
		unavailableProvider{},
		memory.NewSyncRunRepository(),
		nil,
		usecase.MetadataSyncConfig{},
		logger,
	)
	transactionService := usecase.NewTransactionService(
		league.Teams(),
		league.Pool(),
		league.Transactions(),
		nil,
		transaction.DefaultRules(),
		logger,
	)

	handler := NewHandler(poolService, syncRunner, transactionService, logger)
	return NewRouter(handler, logger, RouterConfig{InternalJobToken: internalToken}), league
}

func serve(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope testEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response body %q: %v", rec.Body.String(), err)
	}
	return rec, envelope
}

func TestListPool_FiltersAndOrders(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec, envelope := serve(t, router, http.MethodGet, "/v1/pool?max_points=13", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	data, _ := envelope.Data.(map[string]any)
	if got, _ := data["season_id"].(string); got != memory.SeasonIDCurrent {
		t.Fatalf("unexpected season_id: %v", data["season_id"])
	}

	items, _ := data["pokemon"].([]any)
	names := make([]string, 0, len(items))
	for _, item := range items {
		entry, _ := item.(map[string]any)
		name, _ := entry["name"].(string)
		names = append(names, name)
	}
	want := []string{"Togekiss", "Weavile", "Pikachu", "Mr. Mime"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("unexpected pool order (-want +got):\n%s", diff)
	}
}

func TestListPool_RejectsNonIntegerFilter(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec, envelope := serve(t, router, http.MethodGet, "/v1/pool?generation=nine", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if envelope.Error == nil || envelope.Error.Status != "INVALID_ARGUMENT" {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}
}

func TestCommitTransaction_ThenReplayIsRejected(t *testing.T) {
	router, league := newTestRouter(t, "")
	body := `{"season_id":"season-6","team_id":"team-ember","type":"replacement","added_pokemon_id":461,"dropped_pokemon_id":184}`

	rec, envelope := serve(t, router, http.MethodPost, "/v1/transactions", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	data, _ := envelope.Data.(map[string]any)
	preview, _ := data["preview"].(map[string]any)
	if got, _ := preview["new_point_total"].(float64); got != 113 {
		t.Fatalf("unexpected new_point_total: %v", preview["new_point_total"])
	}
	if len(league.Transactions().Log()) != 1 {
		t.Fatalf("expected one logged transaction")
	}

	rec, envelope = serve(t, router, http.MethodPost, "/v1/transactions", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 on replay, got %d body=%s", rec.Code, rec.Body.String())
	}
	if envelope.Error == nil || len(envelope.Error.Errors) != 3 {
		t.Fatalf("expected one error item per violated rule, got %s", rec.Body.String())
	}
	// already on roster, dropped pokemon gone, and 113-0+12 over budget
	for _, item := range envelope.Error.Errors {
		if item.Reason != "validationFailed" {
			t.Fatalf("unexpected reason %q", item.Reason)
		}
	}
}

func TestPreviewTransaction_RejectsUnknownType(t *testing.T) {
	router, _ := newTestRouter(t, "")
	body := `{"season_id":"season-6","team_id":"team-ember","type":"trade","added_pokemon_id":461}`

	rec, _ := serve(t, router, http.MethodPost, "/v1/transactions/preview", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestMetadataSyncRoutes(t *testing.T) {
	router, _ := newTestRouter(t, "sync-secret")
	auth := map[string]string{"X-Internal-Job-Token": "sync-secret"}

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		headers    map[string]string
		wantStatus int
		wantReason string
	}{
		{name: "missing token", method: http.MethodGet, path: "/v1/internal/sync/pokemon", wantStatus: http.StatusUnauthorized, wantReason: "unauthorized"},
		{name: "idle status", method: http.MethodGet, path: "/v1/internal/sync/pokemon", headers: auth, wantStatus: http.StatusOK},
		{name: "range past known ids", method: http.MethodPost, path: "/v1/internal/sync/pokemon", body: `{"start_id":1,"end_id":5000}`, headers: auth, wantStatus: http.StatusBadRequest, wantReason: "invalidRange"},
		{name: "unknown field", method: http.MethodPost, path: "/v1/internal/sync/pokemon", body: `{"start_id":1,"end_id":2,"force":true}`, headers: auth, wantStatus: http.StatusBadRequest, wantReason: "invalidInput"},
		{name: "missing run", method: http.MethodGet, path: "/v1/internal/sync/pokemon/runs/run-missing", headers: auth, wantStatus: http.StatusNotFound, wantReason: "notFound"},
		{name: "cancel when idle", method: http.MethodDelete, path: "/v1/internal/sync/pokemon", headers: auth, wantStatus: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, envelope := serve(t, router, tc.method, tc.path, tc.body, tc.headers)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d body=%s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if tc.wantReason == "" {
				return
			}
			if envelope.Error == nil || len(envelope.Error.Errors) == 0 || envelope.Error.Errors[0].Reason != tc.wantReason {
				t.Fatalf("expected reason %q, got %s", tc.wantReason, rec.Body.String())
			}
		})
	}
}
