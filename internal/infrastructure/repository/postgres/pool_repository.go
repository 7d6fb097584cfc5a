package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/pool"
	qb "github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

var (
	poolFullColumns    = []string{"season_id", "pokemon_id", "pokemon_name", "point_value", "status", "tera_eligible"}
	poolReducedColumns = []string{"season_id", "pokemon_id", "pokemon_name", "point_value", "status"}
)

type poolEntryModel struct {
	SeasonID     string         `db:"season_id"`
	PokemonID    sql.NullInt64  `db:"pokemon_id"`
	Name         string         `db:"pokemon_name"`
	PointValue   int            `db:"point_value"`
	Status       sql.NullString `db:"status"`
	TeraEligible sql.NullBool   `db:"tera_eligible"`
}

func (m poolEntryModel) toDomain() pool.Entry {
	return pool.Entry{
		SeasonID:     m.SeasonID,
		PokemonID:    nullInt64ToIntPtr(m.PokemonID),
		Name:         m.Name,
		PointValue:   m.PointValue,
		Status:       pool.NormalizeStatus(m.Status.String),
		TeraEligible: nullBoolToPtr(m.TeraEligible),
	}
}

// PoolSource reads available entries from one relation with one column set.
type PoolSource struct {
	db        *sqlx.DB
	name      string
	relation  string
	columns   []string
	aggregate bool
}

// NewPoolSources returns the read strategies in preference order: the
// pre-joined view, the base table, then the base table without optional columns.
func NewPoolSources(db *sqlx.DB) []pool.Source {
	return []pool.Source{
		&PoolSource{db: db, name: "draft_pool_view", relation: "draft_pool_view", columns: poolFullColumns, aggregate: true},
		&PoolSource{db: db, name: "draft_pool", relation: "draft_pool", columns: poolFullColumns},
		&PoolSource{db: db, name: "draft_pool_reduced", relation: "draft_pool", columns: poolReducedColumns},
	}
}

func (s *PoolSource) Name() string {
	return s.name
}

func (s *PoolSource) Aggregate() bool {
	return s.aggregate
}

func (s *PoolSource) ListAvailable(ctx context.Context, seasonID string) ([]pool.Entry, error) {
	query, args, err := qb.Select(s.columns...).From(s.relation).
		Where(
			qb.Eq("season_id", seasonID),
			qb.Or(qb.IsNull("status"), qb.Eq("status", string(pool.StatusAvailable))),
		).
		OrderBy("point_value DESC", "pokemon_name").
		ToSQL()
	if err != nil {
		return nil, pool.NewSourceError(s.name, pool.SourceErrorOther, fmt.Errorf("build select query: %w", err))
	}

	var rows []poolEntryModel
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		kind := pool.SourceErrorOther
		if isSchemaMismatch(err) {
			kind = pool.SourceErrorSchemaMismatch
		}
		return nil, pool.NewSourceError(s.name, kind, err)
	}

	out := make([]pool.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

type PoolRepository struct {
	db *sqlx.DB
}

func NewPoolRepository(db *sqlx.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

func (r *PoolRepository) GetEntry(ctx context.Context, seasonID string, pokemonID int) (pool.Entry, bool, error) {
	query, args, err := qb.Select(poolFullColumns...).From("draft_pool").
		Where(
			qb.Eq("season_id", seasonID),
			qb.Eq("pokemon_id", pokemonID),
		).
		ToSQL()
	if err != nil {
		return pool.Entry{}, false, fmt.Errorf("build select pool entry query: %w", err)
	}

	var row poolEntryModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pool.Entry{}, false, nil
		}
		return pool.Entry{}, false, fmt.Errorf("select pool entry season=%s pokemon=%d: %w", seasonID, pokemonID, err)
	}

	return row.toDomain(), true, nil
}
