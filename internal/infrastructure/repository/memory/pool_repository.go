package memory

import (
	"context"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/pool"
)

// PoolRepository serves both as the single pool source strategy and as the
// point lookup used by transactions.
type PoolRepository struct {
	store *LeagueStore
}

func (r *PoolRepository) Name() string {
	return "memory"
}

func (r *PoolRepository) Aggregate() bool {
	return false
}

func (r *PoolRepository) ListAvailable(_ context.Context, seasonID string) ([]pool.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	entries := r.store.pools[seasonID]
	out := make([]pool.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsAvailable() {
			out = append(out, entry)
		}
	}

	return out, nil
}

func (r *PoolRepository) GetEntry(_ context.Context, seasonID string, pokemonID int) (pool.Entry, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	idx := r.store.poolIndex(seasonID, pokemonID)
	if idx < 0 {
		return pool.Entry{}, false, nil
	}

	return r.store.pools[seasonID][idx], true, nil
}
