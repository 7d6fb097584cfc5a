package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/pool"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/team"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/transaction"
)

type TransactionStore struct {
	store *LeagueStore
}

// Commit checks every guard before touching state, so a failed commit leaves
// the store unchanged.
func (s *TransactionStore) Commit(_ context.Context, commit transaction.Commit) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	current, ok := s.store.teams[commit.SeasonID][commit.TeamID]
	if !ok {
		return fmt.Errorf("team %s not found in season %s", commit.TeamID, commit.SeasonID)
	}
	if current.TransactionCount != commit.ExpectedTransactionCount {
		return fmt.Errorf("%w: expected count %d, found %d", team.ErrStateChanged, commit.ExpectedTransactionCount, current.TransactionCount)
	}

	entries := s.store.pools[commit.SeasonID]
	addedIdx := -1
	if commit.Added != nil {
		addedIdx = s.store.poolIndex(commit.SeasonID, commit.Added.PokemonID)
		if addedIdx < 0 || !movesTo(entries[addedIdx].Status, pool.StatusDrafted) {
			return fmt.Errorf("%w: pokemon %d", pool.ErrNotAvailable, commit.Added.PokemonID)
		}
	}
	if commit.Dropped != nil && !current.HasPokemon(commit.Dropped.PokemonID) {
		return fmt.Errorf("%w: pokemon %d", team.ErrNotOnRoster, commit.Dropped.PokemonID)
	}

	roster := slices.Clone(current.Roster)
	if commit.Dropped != nil {
		droppedID := commit.Dropped.PokemonID
		roster = slices.DeleteFunc(roster, func(entry team.RosterEntry) bool {
			return entry.PokemonID == droppedID
		})
		if idx := s.store.poolIndex(commit.SeasonID, droppedID); idx >= 0 && movesTo(entries[idx].Status, pool.StatusAvailable) {
			entries[idx].Status = pool.StatusAvailable
		}
	}
	if commit.Added != nil {
		entries[addedIdx].Status = pool.StatusDrafted
		roster = append(roster, *commit.Added)
	}

	current.Roster = roster
	current.TransactionCount++
	s.store.teams[commit.SeasonID][commit.TeamID] = current
	s.store.log = append(s.store.log, commit)

	return nil
}

// Log returns committed transactions in commit order.
func (s *TransactionStore) Log() []transaction.Commit {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	return slices.Clone(s.store.log)
}

// movesTo reports a real status change allowed by the pool state machine.
func movesTo(from, to pool.Status) bool {
	return pool.NormalizeStatus(string(from)) != to && pool.CanTransition(from, to)
}
