package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/pool"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/team"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/transaction"
	qb "github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

// TransactionStore applies a roster change in one database transaction.
// Every guarded statement is conditional, so a concurrent writer turns into a
// zero-row update and the whole commit rolls back.
type TransactionStore struct {
	db *sqlx.DB
}

func NewTransactionStore(db *sqlx.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Commit(ctx context.Context, commit transaction.Commit) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if commit.Added != nil {
		if err := draftEntry(ctx, tx, commit.SeasonID, commit.Added.PokemonID); err != nil {
			return err
		}
	}

	if commit.Dropped != nil {
		if err := dropRosterEntry(ctx, tx, commit); err != nil {
			return err
		}
	}

	if commit.Added != nil {
		query, args, err := qb.InsertModel("team_rosters", rosterInsertModel{
			SeasonID:   commit.SeasonID,
			TeamID:     commit.TeamID,
			PokemonID:  commit.Added.PokemonID,
			Name:       commit.Added.Name,
			PointValue: commit.Added.PointValue,
		}, "")
		if err != nil {
			return fmt.Errorf("build insert roster query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert roster pokemon=%d: %w", commit.Added.PokemonID, err)
		}
	}

	query, args, err := qb.Update("teams").
		SetExpr("transaction_count", "transaction_count + 1").
		Where(
			qb.Eq("season_id", commit.SeasonID),
			qb.Eq("id", commit.TeamID),
			qb.Eq("transaction_count", commit.ExpectedTransactionCount),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update transaction count query: %w", err)
	}
	if err := expectOneRow(tx.ExecContext(ctx, query, args...)); err != nil {
		if errors.Is(err, errNoRowsAffected) {
			return fmt.Errorf("%w: team=%s expected_count=%d", team.ErrStateChanged, commit.TeamID, commit.ExpectedTransactionCount)
		}
		return fmt.Errorf("update transaction count team=%s: %w", commit.TeamID, err)
	}

	logRow := transactionLogInsertModel{
		ID:        commit.ID,
		SeasonID:  commit.SeasonID,
		TeamID:    commit.TeamID,
		Type:      string(commit.Type),
		CreatedAt: commit.CreatedAt,
	}
	if commit.Added != nil {
		logRow.AddedPokemonID = &commit.Added.PokemonID
	}
	if commit.Dropped != nil {
		logRow.DroppedPokemonID = &commit.Dropped.PokemonID
	}
	query, args, err = qb.InsertModel("team_transactions", logRow, "")
	if err != nil {
		return fmt.Errorf("build insert transaction log query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert transaction log %s: %w", commit.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction tx: %w", err)
	}
	return nil
}

func draftEntry(ctx context.Context, tx *sqlx.Tx, seasonID string, pokemonID int) error {
	query, args, err := qb.Update("draft_pool").
		Set("status", string(pool.StatusDrafted)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("season_id", seasonID),
			qb.Eq("pokemon_id", pokemonID),
			qb.Or(qb.IsNull("status"), qb.InValues("status", statusValues(pool.TransitionSources(pool.StatusDrafted)))),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build draft pool entry query: %w", err)
	}
	if err := expectOneRow(tx.ExecContext(ctx, query, args...)); err != nil {
		if errors.Is(err, errNoRowsAffected) {
			return fmt.Errorf("%w: pokemon=%d", pool.ErrNotAvailable, pokemonID)
		}
		return fmt.Errorf("draft pool entry pokemon=%d: %w", pokemonID, err)
	}
	return nil
}

func dropRosterEntry(ctx context.Context, tx *sqlx.Tx, commit transaction.Commit) error {
	pokemonID := commit.Dropped.PokemonID

	query, args, err := qb.DeleteFrom("team_rosters").
		Where(
			qb.Eq("season_id", commit.SeasonID),
			qb.Eq("team_id", commit.TeamID),
			qb.Eq("pokemon_id", pokemonID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete roster query: %w", err)
	}
	if err := expectOneRow(tx.ExecContext(ctx, query, args...)); err != nil {
		if errors.Is(err, errNoRowsAffected) {
			return fmt.Errorf("%w: pokemon=%d", team.ErrNotOnRoster, pokemonID)
		}
		return fmt.Errorf("delete roster pokemon=%d: %w", pokemonID, err)
	}

	query, args, err = qb.Update("draft_pool").
		Set("status", string(pool.StatusAvailable)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("season_id", commit.SeasonID),
			qb.Eq("pokemon_id", pokemonID),
			qb.InValues("status", statusValues(pool.TransitionSources(pool.StatusAvailable))),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build release pool entry query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("release pool entry pokemon=%d: %w", pokemonID, err)
	}
	return nil
}

func statusValues(statuses []pool.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, string(status))
	}
	return out
}
