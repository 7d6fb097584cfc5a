package postgres

import (
	"context"
	"fmt"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/team"
	qb "github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, seasonID, teamID string) (team.Team, bool, error) {
	query, args, err := qb.Select("id", "season_id", "name", "budget_total", "transaction_count").From("teams").
		Where(
			qb.Eq("season_id", seasonID),
			qb.Eq("id", teamID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team %s: %w", teamID, err)
	}

	query, args, err = qb.Select("pokemon_id", "pokemon_name", "point_value").From("team_rosters").
		Where(
			qb.Eq("season_id", seasonID),
			qb.Eq("team_id", teamID),
		).
		OrderBy("point_value DESC", "pokemon_id").
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select roster query: %w", err)
	}

	var roster []rosterTableModel
	if err := r.db.SelectContext(ctx, &roster, query, args...); err != nil {
		return team.Team{}, false, fmt.Errorf("select roster team=%s: %w", teamID, err)
	}

	out := team.Team{
		ID:               row.ID,
		SeasonID:         row.SeasonID,
		Name:             row.Name,
		BudgetTotal:      row.BudgetTotal,
		TransactionCount: row.TransactionCount,
		Roster:           make([]team.RosterEntry, 0, len(roster)),
	}
	for _, entry := range roster {
		out.Roster = append(out.Roster, team.RosterEntry{
			PokemonID:  entry.PokemonID,
			Name:       entry.Name,
			PointValue: entry.PointValue,
		})
	}
	return out, true, nil
}
