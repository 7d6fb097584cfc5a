package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/metadata"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/pool"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/season"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/logging"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/metrics"
	concpool "github.com/sourcegraph/conc/pool"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPoolLimit          = 100
	maxPoolLimit              = 1000
	defaultResolveConcurrency = 8
	maxGeneration             = 9
)

// MetadataProvider fetches authoritative records by national dex id or slug.
type MetadataProvider interface {
	FetchPokemon(ctx context.Context, ref string) (metadata.Record, error)
}

// PoolCache is the hot-read cache in front of pool queries.
type PoolCache interface {
	GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, bool, error)
}

type PoolServiceConfig struct {
	ResolveConcurrency int
	DefaultLimit       int
	MaxLimit           int
}

type PoolQuery struct {
	SeasonID   string
	MinPoints  *int
	MaxPoints  *int
	Generation *int
	Search     string
	Limit      int
}

// EnrichedPoolEntry is a pool entry merged with whatever metadata resolved.
// Unresolved attributes stay nil or empty.
type EnrichedPoolEntry struct {
	SeasonID     string
	PokemonID    *int
	Name         string
	PointValue   int
	Status       pool.Status
	TeraEligible *bool
	Types        []string
	Generation   *int
	BaseStats    *metadata.BaseStats
	Tier         *string
	SpriteURL    string
}

type PoolResult struct {
	SeasonID string
	Pokemon  []EnrichedPoolEntry
	Total    int
}

type PoolService struct {
	seasonRepo   season.Repository
	sources      []pool.Source
	metadataRepo metadata.Repository
	provider     MetadataProvider
	cache        PoolCache
	metrics      *metrics.Metrics
	logger       *logging.Logger
	cfg          PoolServiceConfig
}

func NewPoolService(
	seasonRepo season.Repository,
	sources []pool.Source,
	metadataRepo metadata.Repository,
	provider MetadataProvider,
	cfg PoolServiceConfig,
	logger *logging.Logger,
) *PoolService {
	if cfg.ResolveConcurrency <= 0 {
		cfg.ResolveConcurrency = defaultResolveConcurrency
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = maxPoolLimit
	}
	if cfg.DefaultLimit <= 0 || cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = min(defaultPoolLimit, cfg.MaxLimit)
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &PoolService{
		seasonRepo:   seasonRepo,
		sources:      append([]pool.Source(nil), sources...),
		metadataRepo: metadataRepo,
		provider:     provider,
		logger:       logger.Named("pool"),
		cfg:          cfg,
	}
}

// SetCache enables the hot-read cache. A nil cache disables it.
func (s *PoolService) SetCache(cache PoolCache) {
	s.cache = cache
}

func (s *PoolService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

func (s *PoolService) ListAvailable(ctx context.Context, query PoolQuery) (PoolResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.ListAvailable")
	defer span.End()

	limit, err := s.validateQuery(query)
	if err != nil {
		return PoolResult{}, err
	}

	seasonID, err := s.resolveSeasonID(ctx, query.SeasonID)
	if err != nil {
		return PoolResult{}, err
	}

	load := func(ctx context.Context) (any, error) {
		return s.loadPool(ctx, seasonID, query, limit)
	}
	if s.cache == nil {
		result, err := s.loadPool(ctx, seasonID, query, limit)
		return result, err
	}

	value, hit, err := s.cache.GetOrLoad(ctx, poolCacheKey(seasonID, query, limit), load)
	s.metrics.PoolCacheLookup(hit)
	if err != nil {
		return PoolResult{}, err
	}

	result, ok := value.(PoolResult)
	if !ok {
		return PoolResult{}, fmt.Errorf("unexpected cached pool value %T", value)
	}
	result.Pokemon = slices.Clone(result.Pokemon)
	return result, nil
}

func (s *PoolService) validateQuery(query PoolQuery) (int, error) {
	if query.MinPoints != nil && *query.MinPoints < 0 {
		return 0, fmt.Errorf("%w: min points must be >= 0", ErrInvalidInput)
	}
	if query.MinPoints != nil && query.MaxPoints != nil && *query.MinPoints > *query.MaxPoints {
		return 0, fmt.Errorf("%w: min points must be <= max points", ErrInvalidInput)
	}
	if query.Generation != nil && (*query.Generation < 1 || *query.Generation > maxGeneration) {
		return 0, fmt.Errorf("%w: generation must be between 1 and %d", ErrInvalidInput, maxGeneration)
	}
	if query.Limit < 0 {
		return 0, fmt.Errorf("%w: limit must be >= 0", ErrInvalidInput)
	}

	switch {
	case query.Limit == 0:
		return s.cfg.DefaultLimit, nil
	case query.Limit > s.cfg.MaxLimit:
		return s.cfg.MaxLimit, nil
	default:
		return query.Limit, nil
	}
}

func (s *PoolService) resolveSeasonID(ctx context.Context, requested string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.resolveSeasonID")
	defer span.End()

	seasonID := strings.TrimSpace(requested)
	if seasonID != "" {
		_, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
		if err != nil {
			return "", fmt.Errorf("%w: get season %s: %v", ErrStoreUnavailable, seasonID, err)
		}
		if !exists {
			return "", fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
		}
		return seasonID, nil
	}

	current, exists, err := s.seasonRepo.GetCurrent(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: get current season: %v", ErrStoreUnavailable, err)
	}
	if !exists {
		return "", fmt.Errorf("%w: no current season", ErrNotFound)
	}
	return current.ID, nil
}

func (s *PoolService) loadPool(ctx context.Context, seasonID string, query PoolQuery, limit int) (PoolResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.loadPool")
	defer span.End()

	entries, err := s.queryPool(ctx, seasonID)
	if err != nil {
		return PoolResult{}, err
	}

	refs := make([]metadata.Ref, 0, len(entries))
	for _, entry := range entries {
		refs = append(refs, metadata.Ref{Name: entry.Name, PokemonID: entry.PokemonID})
	}
	resolved := s.Resolve(ctx, refs)

	items := filterPoolEntries(enrichPoolEntries(entries, resolved), query)
	total := len(items)
	if len(items) > limit {
		items = items[:limit]
	}

	return PoolResult{SeasonID: seasonID, Pokemon: items, Total: total}, nil
}

// queryPool walks the source strategies in order. Schema mismatches fall
// through to the next strategy; an empty aggregate defers to base sources.
func (s *PoolService) queryPool(ctx context.Context, seasonID string) ([]pool.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.queryPool")
	defer span.End()

	if len(s.sources) == 0 {
		return nil, fmt.Errorf("%w: no pool source configured", ErrStoreUnavailable)
	}

	var lastErr error
	aggregateEmpty := false
	for _, source := range s.sources {
		rows, err := source.ListAvailable(ctx, seasonID)
		if err != nil {
			if errors.Is(err, pool.ErrSchemaMismatch) {
				s.metrics.PoolSourceQuery(source.Name(), "schema_mismatch")
				s.logger.WarnContext(ctx, "pool source schema mismatch, trying next strategy", "source", source.Name(), "error", err)
				lastErr = err
				continue
			}
			s.metrics.PoolSourceQuery(source.Name(), "error")
			return nil, fmt.Errorf("%w: query pool source %s: %v", ErrStoreUnavailable, source.Name(), err)
		}

		if len(rows) == 0 && source.Aggregate() {
			s.metrics.PoolSourceQuery(source.Name(), "empty_aggregate")
			aggregateEmpty = true
			continue
		}

		s.metrics.PoolSourceQuery(source.Name(), "ok")
		return rows, nil
	}

	if aggregateEmpty {
		return nil, nil
	}
	return nil, fmt.Errorf("%w: every pool source failed: %v", ErrStoreUnavailable, lastErr)
}

// Resolve returns one record per unique reference name, keyed by lower-cased
// name. It never fails; references that cannot be enriched keep only their
// name and id with empty attributes.
func (s *PoolService) Resolve(ctx context.Context, refs []metadata.Ref) map[string]metadata.Record {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.Resolve")
	defer span.End()

	unique := uniqueRefs(refs)
	resolved := make(map[string]metadata.Record, len(unique))
	if len(unique) == 0 {
		return resolved
	}

	byName, byID := s.lookupMetadata(ctx, unique)
	for _, ref := range unique {
		key := metadata.NormalizeName(ref.Name)
		candidates := append([]metadata.Record(nil), byName[key]...)
		candidates = append(candidates, byName[metadata.Slug(ref.Name)]...)
		if ref.PokemonID != nil {
			if rec, ok := byID[*ref.PokemonID]; ok {
				candidates = append(candidates, rec)
			}
		}
		if len(candidates) == 0 {
			resolved[key] = metadata.Record{Name: ref.Name, PokemonID: derefOrZero(ref.PokemonID)}
			continue
		}

		best := candidates[0]
		for _, candidate := range candidates[1:] {
			if candidate.Better(best) {
				best = candidate
			}
		}
		best.Name = ref.Name
		resolved[key] = best
	}

	var missing []metadata.Ref
	for _, ref := range unique {
		rec := resolved[metadata.NormalizeName(ref.Name)]
		if rec.PokemonID == 0 || !rec.HasTypes() || !rec.BaseStats.Complete() {
			missing = append(missing, ref)
		}
	}
	if len(missing) == 0 || s.provider == nil {
		return resolved
	}

	var mu sync.Mutex
	workers := concpool.New().WithMaxGoroutines(s.cfg.ResolveConcurrency)
	for _, ref := range missing {
		workers.Go(func() {
			key := metadata.NormalizeName(ref.Name)
			fetched, err := s.provider.FetchPokemon(ctx, providerRef(ref))
			if err != nil {
				s.metrics.ResolveFetch("failed")
				s.logger.WarnContext(ctx, "provider lookup failed, leaving entry partially enriched", "name", ref.Name, "error", err)
				return
			}
			s.metrics.ResolveFetch("ok")

			mu.Lock()
			current := resolved[key]
			mu.Unlock()

			merged := current.Merge(fetched)
			merged.Name = ref.Name
			if merged.HasTypes() {
				if err := s.metadataRepo.Upsert(ctx, merged); err != nil {
					s.logger.WarnContext(ctx, "metadata write-back failed", "name", ref.Name, "pokemon_id", merged.PokemonID, "error", err)
				}
			}

			mu.Lock()
			resolved[key] = merged
			mu.Unlock()
		})
	}
	workers.Wait()

	return resolved
}

// lookupMetadata loads cached records by name and by id concurrently. A failed
// lookup is logged and treated as empty so the provider can fill the gap.
func (s *PoolService) lookupMetadata(ctx context.Context, refs []metadata.Ref) (map[string][]metadata.Record, map[int]metadata.Record) {
	names := make([]string, 0, len(refs))
	ids := make([]int, 0, len(refs))
	for _, ref := range refs {
		names = append(names, metadata.NormalizeName(ref.Name))
		if ref.PokemonID != nil {
			ids = append(ids, *ref.PokemonID)
		}
	}

	var nameRows, idRows []metadata.Record
	var g errgroup.Group
	g.Go(func() error {
		rows, err := s.metadataRepo.ListByNames(ctx, names)
		if err != nil {
			return fmt.Errorf("list metadata by names: %w", err)
		}
		nameRows = rows
		return nil
	})
	if len(ids) > 0 {
		g.Go(func() error {
			rows, err := s.metadataRepo.ListByIDs(ctx, ids)
			if err != nil {
				return fmt.Errorf("list metadata by ids: %w", err)
			}
			idRows = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "metadata store lookup failed", "error", err)
	}

	byName := make(map[string][]metadata.Record, len(nameRows))
	for _, row := range nameRows {
		byName[metadata.NormalizeName(row.Name)] = append(byName[metadata.NormalizeName(row.Name)], row)
		if row.Slug != "" && row.Slug != metadata.NormalizeName(row.Name) {
			byName[row.Slug] = append(byName[row.Slug], row)
		}
	}
	byID := make(map[int]metadata.Record, len(idRows))
	for _, row := range idRows {
		if existing, ok := byID[row.PokemonID]; !ok || row.Better(existing) {
			byID[row.PokemonID] = row
		}
	}
	return byName, byID
}

func uniqueRefs(refs []metadata.Ref) []metadata.Ref {
	seen := make(map[string]int, len(refs))
	out := make([]metadata.Ref, 0, len(refs))
	for _, ref := range refs {
		key := metadata.NormalizeName(ref.Name)
		if key == "" {
			continue
		}
		if idx, ok := seen[key]; ok {
			if out[idx].PokemonID == nil && ref.PokemonID != nil {
				out[idx].PokemonID = ref.PokemonID
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, metadata.Ref{Name: strings.TrimSpace(ref.Name), PokemonID: ref.PokemonID})
	}
	return out
}

func providerRef(ref metadata.Ref) string {
	if ref.PokemonID != nil && *ref.PokemonID > 0 {
		return strconv.Itoa(*ref.PokemonID)
	}
	return metadata.Slug(ref.Name)
}

func enrichPoolEntries(entries []pool.Entry, resolved map[string]metadata.Record) []EnrichedPoolEntry {
	sorted := slices.Clone(entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PointValue != sorted[j].PointValue {
			return sorted[i].PointValue > sorted[j].PointValue
		}
		left, right := metadata.NormalizeName(sorted[i].Name), metadata.NormalizeName(sorted[j].Name)
		if left != right {
			return left < right
		}
		return sorted[i].Name < sorted[j].Name
	})

	seen := make(map[string]struct{}, len(sorted))
	out := make([]EnrichedPoolEntry, 0, len(sorted))
	for _, entry := range sorted {
		key := metadata.NormalizeName(entry.Name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		item := EnrichedPoolEntry{
			SeasonID:     entry.SeasonID,
			PokemonID:    entry.PokemonID,
			Name:         entry.Name,
			PointValue:   entry.PointValue,
			Status:       pool.NormalizeStatus(string(entry.Status)),
			TeraEligible: entry.TeraEligible,
		}
		if rec, ok := resolved[key]; ok {
			if item.PokemonID == nil && rec.PokemonID > 0 {
				id := rec.PokemonID
				item.PokemonID = &id
			}
			item.Types = slices.Clone(rec.Types)
			if rec.Generation > 0 {
				generation := rec.Generation
				item.Generation = &generation
			}
			if rec.BaseStats.Complete() {
				stats := rec.BaseStats
				item.BaseStats = &stats
			}
			if rec.Tier != "" {
				tier := rec.Tier
				item.Tier = &tier
			}
			item.SpriteURL = rec.SpriteURL
		}
		out = append(out, item)
	}
	return out
}

func filterPoolEntries(items []EnrichedPoolEntry, query PoolQuery) []EnrichedPoolEntry {
	search := strings.ToLower(strings.TrimSpace(query.Search))
	out := items[:0:0]
	for _, item := range items {
		if query.MinPoints != nil && item.PointValue < *query.MinPoints {
			continue
		}
		if query.MaxPoints != nil && item.PointValue > *query.MaxPoints {
			continue
		}
		if query.Generation != nil && (item.Generation == nil || *item.Generation != *query.Generation) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func poolCacheKey(seasonID string, query PoolQuery, limit int) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	writeInt := func(label string, v *int) {
		_, _ = buf.WriteString(label)
		if v == nil {
			_, _ = buf.WriteString("-")
			return
		}
		buf.B = strconv.AppendInt(buf.B, int64(*v), 10)
	}

	_, _ = buf.WriteString("pool:")
	_, _ = buf.WriteString(seasonID)
	writeInt("|min=", query.MinPoints)
	writeInt("|max=", query.MaxPoints)
	writeInt("|gen=", query.Generation)
	_, _ = buf.WriteString("|q=")
	_, _ = buf.WriteString(strings.ToLower(strings.TrimSpace(query.Search)))
	_, _ = buf.WriteString("|limit=")
	buf.B = strconv.AppendInt(buf.B, int64(limit), 10)
	return buf.String()
}

func derefOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
