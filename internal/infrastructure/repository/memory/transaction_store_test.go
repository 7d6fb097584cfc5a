package memory

import (
	"errors"
	"testing"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/pool"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/team"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/transaction"
)

func TestSeedLeague_PoolEntriesAreValid(t *testing.T) {
	t.Parallel()

	for _, entry := range SeedLeague().Pool {
		if err := entry.Validate(); err != nil {
			t.Fatalf("invalid seed entry %s: %v", entry.Name, err)
		}
	}
}

func TestTransactionStore_Commit_RejectsBannedEntry(t *testing.T) {
	t.Parallel()

	league := NewLeagueStore(SeedLeague())
	err := league.Transactions().Commit(t.Context(), transaction.Commit{
		ID:                       "tx-1",
		SeasonID:                 SeasonIDCurrent,
		TeamID:                   TeamIDTide,
		Type:                     transaction.TypeAddition,
		Added:                    &team.RosterEntry{PokemonID: 888, Name: "Zacian", PointValue: 20},
		ExpectedTransactionCount: 0,
	})
	if !errors.Is(err, pool.ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable, got %v", err)
	}

	entry, _, _ := league.Pool().GetEntry(t.Context(), SeasonIDCurrent, 888)
	if entry.Status != pool.StatusBanned {
		t.Fatalf("banned entry must stay banned, got %s", entry.Status)
	}
	if len(league.Transactions().Log()) != 0 {
		t.Fatalf("rejected commit must not be logged")
	}
}

func TestTransactionStore_Commit_ReplacementMovesStatuses(t *testing.T) {
	t.Parallel()

	league := NewLeagueStore(SeedLeague())
	err := league.Transactions().Commit(t.Context(), transaction.Commit{
		ID:                       "tx-1",
		SeasonID:                 SeasonIDCurrent,
		TeamID:                   TeamIDEmber,
		Type:                     transaction.TypeReplacement,
		Added:                    &team.RosterEntry{PokemonID: 461, Name: "Weavile", PointValue: 12},
		Dropped:                  &team.RosterEntry{PokemonID: 184, Name: "Azumarill", PointValue: 9},
		ExpectedTransactionCount: 2,
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	added, _, _ := league.Pool().GetEntry(t.Context(), SeasonIDCurrent, 461)
	dropped, _, _ := league.Pool().GetEntry(t.Context(), SeasonIDCurrent, 184)
	if added.Status != pool.StatusDrafted || dropped.Status != pool.StatusAvailable {
		t.Fatalf("unexpected statuses added=%s dropped=%s", added.Status, dropped.Status)
	}

	current, _, _ := league.Teams().GetByID(t.Context(), SeasonIDCurrent, TeamIDEmber)
	if current.TransactionCount != 3 || current.HasPokemon(184) || !current.HasPokemon(461) {
		t.Fatalf("unexpected team after commit: %+v", current)
	}
}
