package pokeapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/metadata"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/logging"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/resilience"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/usecase"
	"github.com/google/go-cmp/cmp"
)

const mrMimePayload = `{
  "id": 122,
  "name": "mr-mime",
  "species": {"name": "mr-mime", "url": "https://pokeapi.co/api/v2/pokemon-species/122/"},
  "types": [
    {"slot": 2, "type": {"name": "fairy", "url": "https://pokeapi.co/api/v2/type/18/"}},
    {"slot": 1, "type": {"name": "psychic", "url": "https://pokeapi.co/api/v2/type/14/"}}
  ],
  "stats": [
    {"base_stat": 40, "stat": {"name": "hp"}},
    {"base_stat": 45, "stat": {"name": "attack"}},
    {"base_stat": 65, "stat": {"name": "defense"}},
    {"base_stat": 100, "stat": {"name": "special-attack"}},
    {"base_stat": 120, "stat": {"name": "special-defense"}},
    {"base_stat": 90, "stat": {"name": "speed"}}
  ],
  "sprites": {"front_default": "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/122.png"}
}`

func newTestClient(t *testing.T, handler http.Handler, cfg ClientConfig) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.BaseURL = server.URL
	cfg.HTTPClient = server.Client()
	cfg.RequestsPerSecond = 1000
	cfg.Logger = logging.NewNop()
	client := NewClient(cfg)
	client.backoff = func(int) time.Duration { return time.Millisecond }
	return client
}

func TestClient_FetchPokemon_SlugsNameAndMapsPayload(t *testing.T) {
	t.Parallel()

	var gotPath atomic.Value
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(mrMimePayload))
	}), ClientConfig{})

	got, err := client.FetchPokemon(t.Context(), "Mr. Mime")
	if err != nil {
		t.Fatalf("fetch pokemon: %v", err)
	}
	if gotPath.Load() != "/pokemon/mr-mime" {
		t.Fatalf("unexpected request path: %v", gotPath.Load())
	}

	want := metadata.Record{
		PokemonID:  122,
		Name:       "mr-mime",
		Slug:       "mr-mime",
		Types:      []string{"psychic", "fairy"},
		Generation: 1,
		BaseStats:  metadata.BaseStats{HP: 40, Attack: 45, Defense: 65, SpecialAttack: 100, SpecialDefense: 120, Speed: 90},
		Tier:       "B",
		SpriteURL:  "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/122.png",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected record (-want +got):\n%s", diff)
	}
}

func TestClient_FetchPokemon_NotFound(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "Not Found", http.StatusNotFound)
	}), ClientConfig{MaxRetries: 3})

	_, err := client.FetchPokemon(t.Context(), "missingno")
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("404 must not be retried, calls=%d", calls.Load())
	}
}

func TestClient_FetchPokemon_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(mrMimePayload))
	}), ClientConfig{MaxRetries: 2})

	got, err := client.FetchPokemon(t.Context(), "122")
	if err != nil {
		t.Fatalf("fetch pokemon: %v", err)
	}
	if got.PokemonID != 122 || calls.Load() != 3 {
		t.Fatalf("unexpected result id=%d calls=%d", got.PokemonID, calls.Load())
	}
}

func TestClient_FetchPokemon_OpensCircuitAfterFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}), ClientConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: time.Minute, HalfOpenMaxReq: 1},
	})

	for range 2 {
		if _, err := client.FetchPokemon(t.Context(), "25"); !errors.Is(err, usecase.ErrProviderUnavailable) {
			t.Fatalf("expected ErrProviderUnavailable, got %v", err)
		}
	}
	if _, err := client.FetchPokemon(t.Context(), "25"); !errors.Is(err, usecase.ErrProviderUnavailable) {
		t.Fatalf("expected open circuit to report ErrProviderUnavailable, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("open circuit must short-circuit requests, calls=%d", calls.Load())
	}
}

func TestClient_FetchPokemon_RejectsEmptyRef(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{Logger: logging.NewNop()})
	if _, err := client.FetchPokemon(t.Context(), "  "); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestResourceID(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		"https://pokeapi.co/api/v2/pokemon-species/122/": 122,
		"https://pokeapi.co/api/v2/pokemon-species/25":   25,
		"": 0,
		"https://pokeapi.co/api/v2/pokemon-species/abc/": 0,
	}
	for input, want := range tests {
		if got := resourceID(input); got != want {
			t.Fatalf("resourceID(%q)=%d want %d", input, got, want)
		}
	}
}
