package memory

import (
	"context"
	"slices"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/team"
)

type TeamRepository struct {
	store *LeagueStore
}

func (r *TeamRepository) GetByID(_ context.Context, seasonID, teamID string) (team.Team, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.teams[seasonID][teamID]
	if !ok {
		return team.Team{}, false, nil
	}
	item.Roster = slices.Clone(item.Roster)

	return item, true, nil
}
