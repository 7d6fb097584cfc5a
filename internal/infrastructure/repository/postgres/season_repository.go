package postgres

import (
	"context"
	"fmt"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/season"
	qb "github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

type seasonTableModel struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	IsCurrent bool   `db:"is_current"`
}

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetCurrent(ctx context.Context) (season.Season, bool, error) {
	query, args, err := qb.Select("id", "name", "is_current").From("seasons").
		Where(qb.Eq("is_current", true)).
		OrderBy("created_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build select current season query: %w", err)
	}

	return r.getOne(ctx, "current", query, args)
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	query, args, err := qb.Select("id", "name", "is_current").From("seasons").
		Where(qb.Eq("id", seasonID)).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build select season by id query: %w", err)
	}

	return r.getOne(ctx, seasonID, query, args)
}

func (r *SeasonRepository) getOne(ctx context.Context, label, query string, args []any) (season.Season, bool, error) {
	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("select season %s: %w", label, err)
	}

	return season.Season{ID: row.ID, Name: row.Name, IsCurrent: row.IsCurrent}, true, nil
}
