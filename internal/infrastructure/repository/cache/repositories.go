package cache

import (
	"context"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/season"
	basecache "github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/cache"
)

// SeasonRepository caches season lookups. Teams and pool entries are never
// cached here because transactions must see live state.
type SeasonRepository struct {
	next  season.Repository
	cache *basecache.Store
}

func NewSeasonRepository(next season.Repository, cache *basecache.Store) *SeasonRepository {
	return &SeasonRepository{next: next, cache: cache}
}

func (r *SeasonRepository) GetCurrent(ctx context.Context) (season.Season, bool, error) {
	return r.load(ctx, "season:current", func(ctx context.Context) (season.Season, bool, error) {
		return r.next.GetCurrent(ctx)
	})
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	return r.load(ctx, "season:id:"+seasonID, func(ctx context.Context) (season.Season, bool, error) {
		return r.next.GetByID(ctx, seasonID)
	})
}

func (r *SeasonRepository) load(
	ctx context.Context,
	key string,
	fetch func(context.Context) (season.Season, bool, error),
) (season.Season, bool, error) {
	v, _, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return cachedSeason{value: item, exists: exists}, nil
	})
	if err != nil {
		return season.Season{}, false, err
	}

	cached, _ := v.(cachedSeason)
	return cached.value, cached.exists, nil
}

type cachedSeason struct {
	value  season.Season
	exists bool
}
