package memory

import (
	"slices"
	"sync"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/pool"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/season"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/team"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/transaction"
)

// LeagueSeed is the initial content of a LeagueStore.
type LeagueSeed struct {
	Seasons []season.Season
	Pool    []pool.Entry
	Teams   []team.Team
}

// LeagueStore keeps seasons, pools and teams behind one lock so a
// transaction commit observes and mutates them atomically.
type LeagueStore struct {
	mu      sync.RWMutex
	seasons []season.Season
	pools   map[string][]pool.Entry
	teams   map[string]map[string]team.Team
	log     []transaction.Commit
}

func NewLeagueStore(seed LeagueSeed) *LeagueStore {
	store := &LeagueStore{
		seasons: slices.Clone(seed.Seasons),
		pools:   make(map[string][]pool.Entry),
		teams:   make(map[string]map[string]team.Team),
	}
	for _, entry := range seed.Pool {
		store.pools[entry.SeasonID] = append(store.pools[entry.SeasonID], entry)
	}
	for _, item := range seed.Teams {
		if store.teams[item.SeasonID] == nil {
			store.teams[item.SeasonID] = make(map[string]team.Team)
		}
		item.Roster = slices.Clone(item.Roster)
		store.teams[item.SeasonID][item.ID] = item
	}

	return store
}

func (s *LeagueStore) Seasons() *SeasonRepository {
	return &SeasonRepository{store: s}
}

func (s *LeagueStore) Pool() *PoolRepository {
	return &PoolRepository{store: s}
}

func (s *LeagueStore) Teams() *TeamRepository {
	return &TeamRepository{store: s}
}

func (s *LeagueStore) Transactions() *TransactionStore {
	return &TransactionStore{store: s}
}

func (s *LeagueStore) poolIndex(seasonID string, pokemonID int) int {
	for idx, entry := range s.pools[seasonID] {
		if entry.HasPokemonID(pokemonID) {
			return idx
		}
	}
	return -1
}
