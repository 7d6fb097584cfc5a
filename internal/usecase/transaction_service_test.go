package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/pool"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/team"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/transaction"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/infrastructure/repository/memory"
	poolmock "github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/mocks/domain/pool"
	teammock "github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/mocks/domain/team"
	transactionmock "github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/mocks/domain/transaction"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

// barrierStore holds every commit until all expected callers arrive, so
// concurrent transactions reach the store after passing validation.
type barrierStore struct {
	next    transaction.Store
	arrived sync.WaitGroup
}

func (s *barrierStore) Commit(ctx context.Context, commit transaction.Commit) error {
	s.arrived.Done()
	s.arrived.Wait()
	return s.next.Commit(ctx, commit)
}

func newSeedTransactionService(store transaction.Store, league *memory.LeagueStore) *TransactionService {
	service := NewTransactionService(
		league.Teams(),
		league.Pool(),
		store,
		&sequenceIDGenerator{prefix: "txn"},
		transaction.DefaultRules(),
		logging.NewNop(),
	)
	service.now = func() time.Time { return time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC) }
	return service
}

func replacement(added, dropped int) transaction.Request {
	return transaction.Request{Type: transaction.TypeReplacement, AddedPokemonID: &added, DroppedPokemonID: &dropped}
}

func addition(added int) transaction.Request {
	return transaction.Request{Type: transaction.TypeAddition, AddedPokemonID: &added}
}

func TestTransactionService_Preview_ValidReplacement(t *testing.T) {
	t.Parallel()

	league := memory.NewLeagueStore(memory.SeedLeague())
	service := newSeedTransactionService(league.Transactions(), league)

	got, err := service.Preview(t.Context(), TransactionInput{
		SeasonID: memory.SeasonIDCurrent,
		TeamID:   memory.TeamIDEmber,
		Request:  replacement(461, 184),
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !got.Valid {
		t.Fatalf("expected valid preview, violations=%v", got.Messages())
	}
	if got.PointTotal != 110 || got.NewPointTotal != 113 {
		t.Fatalf("unexpected point totals: %d -> %d", got.PointTotal, got.NewPointTotal)
	}
	if got.RosterSize != 9 || got.NewRosterSize != 9 {
		t.Fatalf("unexpected roster sizes: %d -> %d", got.RosterSize, got.NewRosterSize)
	}
	if got.TransactionsRemaining != 8 {
		t.Fatalf("unexpected transactions remaining: %d", got.TransactionsRemaining)
	}
}

func TestTransactionService_Preview_ReportsEveryViolation(t *testing.T) {
	t.Parallel()

	league := memory.NewLeagueStore(memory.SeedLeague())
	service := newSeedTransactionService(league.Transactions(), league)

	got, err := service.Preview(t.Context(), TransactionInput{
		SeasonID: memory.SeasonIDCurrent,
		TeamID:   memory.TeamIDEmber,
		Request:  addition(888),
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if got.Valid {
		t.Fatalf("expected invalid preview")
	}
	for _, want := range []error{transaction.ErrAddedNotAvailable, transaction.ErrExceededBudget} {
		found := false
		for _, violation := range got.Violations {
			if errors.Is(violation, want) {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected violation %v in %v", want, got.Messages())
		}
	}
}

func TestTransactionService_Commit_AppliesRosterChange(t *testing.T) {
	t.Parallel()

	league := memory.NewLeagueStore(memory.SeedLeague())
	store := league.Transactions()
	service := newSeedTransactionService(store, league)

	result, err := service.Commit(t.Context(), TransactionInput{
		SeasonID: memory.SeasonIDCurrent,
		TeamID:   memory.TeamIDEmber,
		Request:  replacement(461, 184),
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if result.TransactionID != "txn-001" {
		t.Fatalf("unexpected transaction id: %s", result.TransactionID)
	}
	if result.Preview.TransactionCount != 3 || result.Preview.TransactionsRemaining != 7 {
		t.Fatalf("unexpected counters after commit: %+v", result.Preview)
	}

	ember, _, _ := league.Teams().GetByID(t.Context(), memory.SeasonIDCurrent, memory.TeamIDEmber)
	if !ember.HasPokemon(461) || ember.HasPokemon(184) {
		t.Fatalf("roster not updated: %+v", ember.Roster)
	}
	if ember.TransactionCount != 3 {
		t.Fatalf("unexpected transaction count: %d", ember.TransactionCount)
	}

	added, _, _ := league.Pool().GetEntry(t.Context(), memory.SeasonIDCurrent, 461)
	if added.Status != pool.StatusDrafted {
		t.Fatalf("added entry should be drafted, got %s", added.Status)
	}
	dropped, _, _ := league.Pool().GetEntry(t.Context(), memory.SeasonIDCurrent, 184)
	if dropped.Status != pool.StatusAvailable {
		t.Fatalf("dropped entry should return to pool, got %s", dropped.Status)
	}

	log := store.Log()
	if len(log) != 1 || log[0].Added.PointValue != 12 || log[0].Dropped.Name != "Azumarill" {
		t.Fatalf("unexpected transaction log: %+v", log)
	}
}

func TestTransactionService_Commit_RejectsInvalidRequest(t *testing.T) {
	t.Parallel()

	league := memory.NewLeagueStore(memory.SeedLeague())
	store := league.Transactions()
	service := newSeedTransactionService(store, league)

	_, err := service.Commit(t.Context(), TransactionInput{
		SeasonID: memory.SeasonIDCurrent,
		TeamID:   memory.TeamIDTide,
		Request:  transaction.Request{Type: transaction.TypeDropOnly, DroppedPokemonID: new(int)},
	})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("validation error should wrap ErrValidationFailed")
	}
	// Tide has 8 on roster, so dropping an unknown id breaks two rules.
	if len(validationErr.Violations) != 2 {
		t.Fatalf("unexpected violations: %v", validationErr.Violations)
	}
	if len(store.Log()) != 0 {
		t.Fatalf("rejected commit must not be logged")
	}
}

func TestTransactionService_Commit_ConcurrentClaimsOneWinner(t *testing.T) {
	t.Parallel()

	league := memory.NewLeagueStore(memory.SeedLeague())
	store := &barrierStore{next: league.Transactions()}
	store.arrived.Add(2)
	service := newSeedTransactionService(store, league)

	inputs := []TransactionInput{
		{SeasonID: memory.SeasonIDCurrent, TeamID: memory.TeamIDEmber, Request: replacement(983, 858)},
		{SeasonID: memory.SeasonIDCurrent, TeamID: memory.TeamIDTide, Request: addition(983)},
	}

	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for idx, input := range inputs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[idx] = service.Commit(context.Background(), input)
		}()
	}
	wg.Wait()

	succeeded, lost := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrRaceLost):
			lost++
		default:
			t.Fatalf("unexpected commit error: %v", err)
		}
	}
	if succeeded != 1 || lost != 1 {
		t.Fatalf("expected one winner and one loser, got succeeded=%d lost=%d", succeeded, lost)
	}

	ember, _, _ := league.Teams().GetByID(t.Context(), memory.SeasonIDCurrent, memory.TeamIDEmber)
	tide, _, _ := league.Teams().GetByID(t.Context(), memory.SeasonIDCurrent, memory.TeamIDTide)
	if ember.HasPokemon(983) == tide.HasPokemon(983) {
		t.Fatalf("exactly one roster must hold the contested pokemon")
	}
}

func TestTransactionService_Commit_MapsStoreErrors(t *testing.T) {
	t.Parallel()

	current := team.Team{
		ID:          "team-1",
		SeasonID:    "season-1",
		BudgetTotal: 120,
		Roster: []team.RosterEntry{
			{PokemonID: 1, Name: "Bulbasaur", PointValue: 5},
			{PokemonID: 4, Name: "Charmander", PointValue: 5},
			{PokemonID: 7, Name: "Squirtle", PointValue: 5},
			{PokemonID: 10, Name: "Caterpie", PointValue: 1},
			{PokemonID: 13, Name: "Weedle", PointValue: 1},
			{PokemonID: 16, Name: "Pidgey", PointValue: 1},
			{PokemonID: 19, Name: "Rattata", PointValue: 1},
			{PokemonID: 21, Name: "Spearow", PointValue: 1},
		},
		TransactionCount: 4,
	}
	pikachuID := 25
	pikachu := pool.Entry{SeasonID: "season-1", PokemonID: &pikachuID, Name: "Pikachu", PointValue: 5, Status: pool.StatusAvailable}

	tests := []struct {
		name     string
		storeErr error
		wantErr  error
	}{
		{name: "added entry claimed first", storeErr: pool.ErrNotAvailable, wantErr: ErrRaceLost},
		{name: "transaction count moved", storeErr: team.ErrStateChanged, wantErr: ErrRaceLost},
		{name: "dropped entry vanished", storeErr: team.ErrNotOnRoster, wantErr: ErrValidationFailed},
		{name: "store down", storeErr: errors.New("connection refused"), wantErr: ErrStoreUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			teamRepo := teammock.NewRepository(t)
			poolRepo := poolmock.NewRepository(t)
			store := transactionmock.NewStore(t)

			teamRepo.On("GetByID", mock.Anything, "season-1", "team-1").Return(current, true, nil).Once()
			poolRepo.On("GetEntry", mock.Anything, "season-1", pikachuID).Return(pikachu, true, nil).Twice()
			store.
				On("Commit", mock.Anything, mock.MatchedBy(func(commit transaction.Commit) bool {
					return commit.ExpectedTransactionCount == 4 && commit.Added != nil && commit.Added.PokemonID == pikachuID
				})).
				Return(tc.storeErr).
				Once()

			service := NewTransactionService(teamRepo, poolRepo, store, &sequenceIDGenerator{prefix: "txn"}, transaction.DefaultRules(), logging.NewNop())
			_, err := service.Commit(t.Context(), TransactionInput{SeasonID: "season-1", TeamID: "team-1", Request: addition(pikachuID)})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestTransactionService_Commit_AddedEntryRemovedAfterPreview(t *testing.T) {
	t.Parallel()

	league := memory.NewLeagueStore(memory.SeedLeague())
	current, _, err := league.Teams().GetByID(t.Context(), memory.SeasonIDCurrent, memory.TeamIDTide)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	weavileID := 461
	weavile := pool.Entry{SeasonID: memory.SeasonIDCurrent, PokemonID: &weavileID, Name: "Weavile", PointValue: 12, Status: pool.StatusAvailable}

	teamRepo := teammock.NewRepository(t)
	poolRepo := poolmock.NewRepository(t)
	teamRepo.On("GetByID", mock.Anything, memory.SeasonIDCurrent, memory.TeamIDTide).Return(current, true, nil).Once()
	poolRepo.On("GetEntry", mock.Anything, memory.SeasonIDCurrent, weavileID).Return(weavile, true, nil).Once()
	poolRepo.On("GetEntry", mock.Anything, memory.SeasonIDCurrent, weavileID).Return(pool.Entry{}, false, nil).Once()

	service := NewTransactionService(teamRepo, poolRepo, transactionmock.NewStore(t), &sequenceIDGenerator{prefix: "txn"}, transaction.DefaultRules(), logging.NewNop())
	_, err = service.Commit(t.Context(), TransactionInput{
		SeasonID: memory.SeasonIDCurrent,
		TeamID:   memory.TeamIDTide,
		Request:  addition(weavileID),
	})
	if !errors.Is(err, ErrRaceLost) {
		t.Fatalf("expected ErrRaceLost, got %v", err)
	}
}

func TestTransactionService_Preview_LookupFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("missing identifiers", func(t *testing.T) {
		service := NewTransactionService(teammock.NewRepository(t), poolmock.NewRepository(t), transactionmock.NewStore(t), nil, transaction.DefaultRules(), logging.NewNop())
		if _, err := service.Preview(ctx, TransactionInput{TeamID: "team-1"}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("team not found", func(t *testing.T) {
		teamRepo := teammock.NewRepository(t)
		teamRepo.On("GetByID", mock.Anything, "season-1", "team-404").Return(team.Team{}, false, nil).Once()

		service := NewTransactionService(teamRepo, poolmock.NewRepository(t), transactionmock.NewStore(t), nil, transaction.DefaultRules(), logging.NewNop())
		if _, err := service.Preview(ctx, TransactionInput{SeasonID: "season-1", TeamID: "team-404", Request: addition(25)}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("pool store down", func(t *testing.T) {
		teamRepo := teammock.NewRepository(t)
		poolRepo := poolmock.NewRepository(t)
		teamRepo.On("GetByID", mock.Anything, "season-1", "team-1").Return(team.Team{ID: "team-1", SeasonID: "season-1", BudgetTotal: 120}, true, nil).Once()
		poolRepo.On("GetEntry", mock.Anything, "season-1", 25).Return(pool.Entry{}, false, errors.New("i/o timeout")).Once()

		service := NewTransactionService(teamRepo, poolRepo, transactionmock.NewStore(t), nil, transaction.DefaultRules(), logging.NewNop())
		if _, err := service.Preview(ctx, TransactionInput{SeasonID: "season-1", TeamID: "team-1", Request: addition(25)}); !errors.Is(err, ErrStoreUnavailable) {
			t.Fatalf("expected ErrStoreUnavailable, got %v", err)
		}
	})
}
