package pokeapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/metadata"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/logging"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/metrics"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/resilience"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/usecase"
	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://pokeapi.co/api/v2"
	defaultTimeout     = 10 * time.Second
	maxResponseBytes   = 2 << 20
	defaultRequestRate = 10
)

var errPokeAPITransient = crerr.New("pokeapi transient failure")

type ClientConfig struct {
	HTTPClient        *http.Client
	BaseURL           string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
	Metrics           *metrics.Metrics
}

// Client fetches Pokémon records from PokéAPI. Concurrent lookups of the same
// reference share one request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	limiter    *rate.Limiter
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	metrics    *metrics.Metrics
	flight     singleflight.Group
	backoff    func(attempt int) time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Limit(defaultRequestRate)
	}
	burst := max(int(cfg.RequestsPerSecond), 1)

	breaker := resilience.NewCircuitBreakerFromConfig(resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker))
	client := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		maxRetries: max(cfg.MaxRetries, 0),
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger.Named("pokeapi"),
		breaker:    breaker,
		metrics:    cfg.Metrics,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt+1) * 500 * time.Millisecond
		},
	}
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		client.logger.Warn("pokeapi circuit breaker state changed", "from", from, "to", to)
	})

	return client
}

// FetchPokemon looks up a Pokémon by national dex id or by name. Names are
// slugged first, so "Mr. Mime" is requested as "mr-mime".
func (c *Client) FetchPokemon(ctx context.Context, ref string) (metadata.Record, error) {
	ref = normalizeRef(ref)
	if ref == "" {
		return metadata.Record{}, fmt.Errorf("%w: pokemon reference is required", usecase.ErrInvalidInput)
	}

	out, err, _ := c.flight.Do(ref, func() (any, error) {
		var raw []byte
		err := c.breaker.Execute(ctx, func(ctx context.Context) error {
			var reqErr error
			raw, reqErr = c.executeRequest(ctx, c.baseURL+"/pokemon/"+ref)
			return reqErr
		}, isCircuitFailure)
		return raw, err
	})
	if err != nil {
		return metadata.Record{}, c.mapError(ctx, ref, err)
	}

	raw, ok := out.([]byte)
	if !ok {
		return metadata.Record{}, fmt.Errorf("unexpected response payload type %T", out)
	}

	var payload pokemonPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return metadata.Record{}, fmt.Errorf("%w: decode pokemon %s: %v", usecase.ErrProviderUnavailable, ref, err)
	}

	return toRecord(payload), nil
}

func (c *Client) mapError(ctx context.Context, ref string, err error) error {
	switch {
	case crerr.Is(err, resilience.ErrCircuitOpen):
		c.metrics.ProviderRequest("circuit_open")
		return fmt.Errorf("%w: pokeapi is temporarily unavailable", usecase.ErrProviderUnavailable)
	case crerr.Is(err, usecase.ErrNotFound):
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("%w: fetch pokemon %s: %v", usecase.ErrProviderUnavailable, ref, err)
	}
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, crerr.Wrap(err, "wait for rate limiter")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, crerr.Wrap(err, "build request")
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.metrics.ProviderRequest("error")
			lastErr = crerr.Mark(crerr.Wrap(err, "send request"), errPokeAPITransient)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			c.metrics.ProviderRequest(statusClass(resp.StatusCode))

			switch {
			case readErr != nil:
				lastErr = crerr.Mark(crerr.Wrap(readErr, "read response body"), errPokeAPITransient)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusNotFound:
				return nil, fmt.Errorf("%w: pokeapi has no pokemon at %s", usecase.ErrNotFound, path.Base(fullURL))
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Mark(crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw)), errPokeAPITransient)
			default:
				return nil, crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(c.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("provider request failed")
	}
	c.logger.WarnContext(ctx, "pokeapi request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func toRecord(payload pokemonPayload) metadata.Record {
	slots := append([]typeSlot(nil), payload.Types...)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Slot < slots[j].Slot })
	types := make([]string, 0, len(slots))
	for _, slot := range slots {
		if name := strings.TrimSpace(slot.Type.Name); name != "" {
			types = append(types, name)
		}
	}

	var stats metadata.BaseStats
	for _, item := range payload.Stats {
		switch item.Stat.Name {
		case "hp":
			stats.HP = item.BaseStat
		case "attack":
			stats.Attack = item.BaseStat
		case "defense":
			stats.Defense = item.BaseStat
		case "special-attack":
			stats.SpecialAttack = item.BaseStat
		case "special-defense":
			stats.SpecialDefense = item.BaseStat
		case "speed":
			stats.Speed = item.BaseStat
		}
	}

	speciesID := resourceID(payload.Species.URL)
	if speciesID <= 0 {
		speciesID = payload.ID
	}

	sprite := payload.Sprites.FrontDefault
	if sprite == "" {
		sprite = payload.Sprites.Other.OfficialArtwork.FrontDefault
	}

	return metadata.Record{
		PokemonID:  payload.ID,
		Name:       payload.Name,
		Slug:       payload.Name,
		Types:      types,
		Generation: metadata.GenerationForSpecies(speciesID),
		BaseStats:  stats,
		Tier:       metadata.TierForStats(stats),
		SpriteURL:  sprite,
	}
}

func normalizeRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if _, err := strconv.Atoi(ref); err == nil {
		return ref
	}
	return metadata.Slug(ref)
}

// resourceID extracts the trailing id of a PokéAPI resource url such as
// https://pokeapi.co/api/v2/pokemon-species/122/.
func resourceID(rawURL string) int {
	value, err := strconv.Atoi(path.Base(strings.TrimRight(rawURL, "/")))
	if err != nil {
		return 0
	}
	return value
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errPokeAPITransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
