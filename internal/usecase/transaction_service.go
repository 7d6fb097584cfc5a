package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/pool"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/team"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/transaction"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/id"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/logging"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/metrics"
)

type TransactionInput struct {
	SeasonID string
	TeamID   string
	Request  transaction.Request
}

type TransactionResult struct {
	TransactionID string
	Preview       transaction.Preview
}

type TransactionService struct {
	teamRepo team.Repository
	poolRepo pool.Repository
	store    transaction.Store
	idGen    id.Generator
	rules    transaction.Rules
	metrics  *metrics.Metrics
	logger   *logging.Logger
	now      func() time.Time
}

func NewTransactionService(
	teamRepo team.Repository,
	poolRepo pool.Repository,
	store transaction.Store,
	idGen id.Generator,
	rules transaction.Rules,
	logger *logging.Logger,
) *TransactionService {
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &TransactionService{
		teamRepo: teamRepo,
		poolRepo: poolRepo,
		store:    store,
		idGen:    idGen,
		rules:    rules,
		logger:   logger.Named("transaction"),
		now:      time.Now,
	}
}

func (s *TransactionService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Preview evaluates every rule against the live team and pool state without
// mutating anything. Rule violations are reported in the preview, not as error.
func (s *TransactionService) Preview(ctx context.Context, input TransactionInput) (transaction.Preview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransactionService.Preview")
	defer span.End()

	preview, _, err := s.evaluate(ctx, input)
	if err != nil {
		return transaction.Preview{}, err
	}
	s.metrics.Transaction("preview")
	return preview, nil
}

func (s *TransactionService) Commit(ctx context.Context, input TransactionInput) (TransactionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransactionService.Commit")
	defer span.End()

	preview, current, err := s.evaluate(ctx, input)
	if err != nil {
		return TransactionResult{}, err
	}
	if !preview.Valid {
		s.metrics.Transaction("rejected")
		return TransactionResult{}, &ValidationError{Violations: preview.Messages()}
	}

	transactionID, err := s.idGen.NewID()
	if err != nil {
		return TransactionResult{}, fmt.Errorf("generate transaction id: %w", err)
	}

	commit := transaction.Commit{
		ID:                       transactionID,
		SeasonID:                 current.SeasonID,
		TeamID:                   current.ID,
		Type:                     input.Request.Type,
		ExpectedTransactionCount: current.TransactionCount,
		CreatedAt:                s.now().UTC(),
	}
	if input.Request.Type.Drops() {
		dropped, _ := current.FindRosterEntry(*input.Request.DroppedPokemonID)
		commit.Dropped = &dropped
	}
	if input.Request.Type.Adds() {
		added, found, err := s.poolRepo.GetEntry(ctx, current.SeasonID, *input.Request.AddedPokemonID)
		if err != nil {
			return TransactionResult{}, fmt.Errorf("%w: get pool entry: %v", ErrStoreUnavailable, err)
		}
		if !found {
			s.metrics.Transaction("race_lost")
			return TransactionResult{}, fmt.Errorf("%w: pokemon %d left the pool", ErrRaceLost, *input.Request.AddedPokemonID)
		}
		commit.Added = &team.RosterEntry{
			PokemonID:  *input.Request.AddedPokemonID,
			Name:       added.Name,
			PointValue: added.PointValue,
		}
	}

	if err := s.store.Commit(ctx, commit); err != nil {
		return TransactionResult{}, s.mapCommitError(ctx, commit, err)
	}

	s.metrics.Transaction("committed")
	s.logger.InfoContext(ctx, "transaction committed",
		"transaction_id", commit.ID,
		"season_id", commit.SeasonID,
		"team_id", commit.TeamID,
		"type", commit.Type,
	)

	preview.TransactionCount++
	preview.TransactionsRemaining = max(s.rules.MaxTransactions-preview.TransactionCount, 0)
	return TransactionResult{TransactionID: commit.ID, Preview: preview}, nil
}

func (s *TransactionService) evaluate(ctx context.Context, input TransactionInput) (transaction.Preview, team.Team, error) {
	seasonID := strings.TrimSpace(input.SeasonID)
	teamID := strings.TrimSpace(input.TeamID)
	if seasonID == "" || teamID == "" {
		return transaction.Preview{}, team.Team{}, fmt.Errorf("%w: season_id and team_id are required", ErrInvalidInput)
	}

	current, exists, err := s.teamRepo.GetByID(ctx, seasonID, teamID)
	if err != nil {
		return transaction.Preview{}, team.Team{}, fmt.Errorf("%w: get team %s: %v", ErrStoreUnavailable, teamID, err)
	}
	if !exists {
		return transaction.Preview{}, team.Team{}, fmt.Errorf("%w: team=%s season=%s", ErrNotFound, teamID, seasonID)
	}

	var added *pool.Entry
	req := input.Request
	if req.Type.Adds() && req.AddedPokemonID != nil {
		entry, found, err := s.poolRepo.GetEntry(ctx, seasonID, *req.AddedPokemonID)
		if err != nil {
			return transaction.Preview{}, team.Team{}, fmt.Errorf("%w: get pool entry %d: %v", ErrStoreUnavailable, *req.AddedPokemonID, err)
		}
		if found {
			added = &entry
		}
	}

	return transaction.Evaluate(current, req, added, s.rules), current, nil
}

func (s *TransactionService) mapCommitError(ctx context.Context, commit transaction.Commit, err error) error {
	switch {
	case errors.Is(err, pool.ErrNotAvailable), errors.Is(err, team.ErrStateChanged):
		s.metrics.Transaction("race_lost")
		s.logger.WarnContext(ctx, "transaction lost race", "team_id", commit.TeamID, "error", err)
		return fmt.Errorf("%w: %v", ErrRaceLost, err)
	case errors.Is(err, team.ErrNotOnRoster):
		s.metrics.Transaction("rejected")
		return &ValidationError{Violations: []string{err.Error()}}
	default:
		s.metrics.Transaction("failed")
		return fmt.Errorf("%w: commit transaction: %v", ErrStoreUnavailable, err)
	}
}
