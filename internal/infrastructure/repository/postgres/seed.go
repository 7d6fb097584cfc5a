package postgres

import (
	"context"
	"fmt"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/infrastructure/repository/memory"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// BootstrapSeed loads the demo league into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM seasons`); err != nil {
		return fmt.Errorf("count seasons for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	seed := memory.SeedLeague()

	for _, s := range seed.Seasons {
		if err := execNamed(ctx, tx, `
INSERT INTO seasons (id, name, is_current)
VALUES (:id, :name, :is_current)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":         s.ID,
			"name":       s.Name,
			"is_current": s.IsCurrent,
		}); err != nil {
			return fmt.Errorf("seed season %s: %w", s.ID, err)
		}
	}

	for _, e := range seed.Pool {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("seed pool entry %s: %w", e.Name, err)
		}
		var status *string
		if e.Status != "" {
			value := string(e.Status)
			status = &value
		}
		if err := execNamed(ctx, tx, `
INSERT INTO draft_pool (season_id, pokemon_id, pokemon_name, point_value, status, tera_eligible)
VALUES (:season_id, :pokemon_id, :pokemon_name, :point_value, :status, :tera_eligible)
ON CONFLICT DO NOTHING`, map[string]any{
			"season_id":     e.SeasonID,
			"pokemon_id":    e.PokemonID,
			"pokemon_name":  e.Name,
			"point_value":   e.PointValue,
			"status":        status,
			"tera_eligible": e.TeraEligible,
		}); err != nil {
			return fmt.Errorf("seed pool entry %s: %w", e.Name, err)
		}
	}

	for _, t := range seed.Teams {
		if err := execNamed(ctx, tx, `
INSERT INTO teams (id, season_id, name, budget_total, transaction_count)
VALUES (:id, :season_id, :name, :budget_total, :transaction_count)
ON CONFLICT DO NOTHING`, map[string]any{
			"id":                t.ID,
			"season_id":         t.SeasonID,
			"name":              t.Name,
			"budget_total":      t.BudgetTotal,
			"transaction_count": t.TransactionCount,
		}); err != nil {
			return fmt.Errorf("seed team %s: %w", t.ID, err)
		}

		for _, r := range t.Roster {
			if err := execNamed(ctx, tx, `
INSERT INTO team_rosters (season_id, team_id, pokemon_id, pokemon_name, point_value)
VALUES (:season_id, :team_id, :pokemon_id, :pokemon_name, :point_value)
ON CONFLICT DO NOTHING`, map[string]any{
				"season_id":    t.SeasonID,
				"team_id":      t.ID,
				"pokemon_id":   r.PokemonID,
				"pokemon_name": r.Name,
				"point_value":  r.PointValue,
			}); err != nil {
				return fmt.Errorf("seed roster team=%s pokemon=%d: %w", t.ID, r.PokemonID, err)
			}
		}
	}

	for _, m := range memory.SeedMetadata() {
		stats, err := jsonCodec.Marshal(m.BaseStats)
		if err != nil {
			return fmt.Errorf("encode seed stats pokemon=%d: %w", m.PokemonID, err)
		}
		if err := execNamed(ctx, tx, `
INSERT INTO pokemon_cache (pokemon_id, name, slug, types, generation, base_stats, tier, sprite_url)
VALUES (:pokemon_id, :name, :slug, :types, :generation, :base_stats, :tier, :sprite_url)
ON CONFLICT (pokemon_id) DO NOTHING`, map[string]any{
			"pokemon_id": m.PokemonID,
			"name":       m.Name,
			"slug":       m.Slug,
			"types":      pq.Array(m.Types),
			"generation": nullableInt(m.Generation),
			"base_stats": string(stats),
			"tier":       nullableString(m.Tier),
			"sprite_url": nullableString(m.SpriteURL),
		}); err != nil {
			return fmt.Errorf("seed metadata pokemon=%d: %w", m.PokemonID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}

func execNamed(ctx context.Context, tx *sqlx.Tx, query string, arg map[string]any) error {
	sqlQuery, args, err := sqlx.Named(query, arg)
	if err != nil {
		return fmt.Errorf("bind query: %w", err)
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(sqlQuery), args...)
	return err
}
