package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/metadata"
	qb "github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

var metadataColumns = []string{"pokemon_id", "name", "slug", "types", "generation", "base_stats", "tier", "sprite_url"}

type metadataTableModel struct {
	PokemonID  int            `db:"pokemon_id"`
	Name       string         `db:"name"`
	Slug       string         `db:"slug"`
	Types      pq.StringArray `db:"types"`
	Generation sql.NullInt64  `db:"generation"`
	BaseStats  []byte         `db:"base_stats"`
	Tier       sql.NullString `db:"tier"`
	SpriteURL  sql.NullString `db:"sprite_url"`
}

func (m metadataTableModel) toDomain() (metadata.Record, error) {
	record := metadata.Record{
		PokemonID:  m.PokemonID,
		Name:       m.Name,
		Slug:       m.Slug,
		Types:      []string(m.Types),
		Generation: int(m.Generation.Int64),
		Tier:       m.Tier.String,
		SpriteURL:  m.SpriteURL.String,
	}
	if len(m.BaseStats) > 0 {
		if err := jsonCodec.Unmarshal(m.BaseStats, &record.BaseStats); err != nil {
			return metadata.Record{}, fmt.Errorf("decode base stats pokemon=%d: %w", m.PokemonID, err)
		}
	}
	return record, nil
}

type MetadataRepository struct {
	db *sqlx.DB
}

func NewMetadataRepository(db *sqlx.DB) *MetadataRepository {
	return &MetadataRepository{db: db}
}

func (r *MetadataRepository) ListByNames(ctx context.Context, names []string) ([]metadata.Record, error) {
	if len(names) == 0 {
		return nil, nil
	}

	lowered := make([]string, 0, len(names))
	slugs := make([]string, 0, len(names))
	for _, name := range names {
		lowered = append(lowered, metadata.NormalizeName(name))
		slugs = append(slugs, metadata.Slug(name))
	}

	query, args, err := qb.Select(metadataColumns...).From("pokemon_cache").
		Where(qb.Or(
			qb.InValues("LOWER(name)", lowered),
			qb.InValues("slug", slugs),
		)).
		OrderBy("pokemon_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select metadata by names query: %w", err)
	}

	return r.selectRecords(ctx, "by names", query, args)
}

func (r *MetadataRepository) ListByIDs(ctx context.Context, ids []int) ([]metadata.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select(metadataColumns...).From("pokemon_cache").
		Where(qb.InValues("pokemon_id", ids)).
		OrderBy("pokemon_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select metadata by ids query: %w", err)
	}

	return r.selectRecords(ctx, "by ids", query, args)
}

func (r *MetadataRepository) ListCompleteIDs(ctx context.Context, fromID, toID int) (map[int]struct{}, error) {
	query, args, err := qb.Select(metadataColumns...).From("pokemon_cache").
		Where(qb.Between("pokemon_id", fromID, toID)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select metadata range query: %w", err)
	}

	records, err := r.selectRecords(ctx, "range", query, args)
	if err != nil {
		return nil, err
	}

	out := make(map[int]struct{}, len(records))
	for _, record := range records {
		if record.IsComplete() {
			out[record.PokemonID] = struct{}{}
		}
	}
	return out, nil
}

// Upsert keeps the first stored display name and refreshes every other column.
func (r *MetadataRepository) Upsert(ctx context.Context, record metadata.Record) error {
	if !record.HasTypes() {
		return metadata.ErrEmptyTypes
	}
	if record.PokemonID <= 0 {
		return fmt.Errorf("metadata record %q has no pokemon id", record.Name)
	}

	stats, err := jsonCodec.Marshal(record.BaseStats)
	if err != nil {
		return fmt.Errorf("encode base stats pokemon=%d: %w", record.PokemonID, err)
	}

	query, args, err := qb.InsertInto("pokemon_cache").
		Columns(metadataColumns...).
		Values(
			record.PokemonID,
			record.Name,
			record.Slug,
			pq.Array(record.Types),
			nullableInt(record.Generation),
			string(stats),
			nullableString(record.Tier),
			nullableString(record.SpriteURL),
		).
		Suffix(`ON CONFLICT (pokemon_id) DO UPDATE SET
    name = COALESCE(NULLIF(pokemon_cache.name, ''), EXCLUDED.name),
    slug = EXCLUDED.slug,
    types = EXCLUDED.types,
    generation = COALESCE(EXCLUDED.generation, pokemon_cache.generation),
    base_stats = EXCLUDED.base_stats,
    tier = COALESCE(EXCLUDED.tier, pokemon_cache.tier),
    sprite_url = COALESCE(EXCLUDED.sprite_url, pokemon_cache.sprite_url),
    fetched_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert metadata query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert metadata pokemon=%d: %w", record.PokemonID, err)
	}
	return nil
}

func (r *MetadataRepository) selectRecords(ctx context.Context, label, query string, args []any) ([]metadata.Record, error) {
	var rows []metadataTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select metadata %s: %w", label, err)
	}

	out := make([]metadata.Record, 0, len(rows))
	for _, row := range rows {
		record, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}
