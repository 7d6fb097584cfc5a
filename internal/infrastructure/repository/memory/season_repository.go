package memory

import (
	"context"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/season"
)

type SeasonRepository struct {
	store *LeagueStore
}

func (r *SeasonRepository) GetCurrent(_ context.Context) (season.Season, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, item := range r.store.seasons {
		if item.IsCurrent {
			return item, true, nil
		}
	}

	return season.Season{}, false, nil
}

func (r *SeasonRepository) GetByID(_ context.Context, seasonID string) (season.Season, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, item := range r.store.seasons {
		if item.ID == seasonID {
			return item, true, nil
		}
	}

	return season.Season{}, false, nil
}
