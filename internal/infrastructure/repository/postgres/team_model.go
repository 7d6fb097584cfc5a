package postgres

import "time"

type teamTableModel struct {
	ID               string `db:"id"`
	SeasonID         string `db:"season_id"`
	Name             string `db:"name"`
	BudgetTotal      int    `db:"budget_total"`
	TransactionCount int    `db:"transaction_count"`
}

type rosterTableModel struct {
	PokemonID  int    `db:"pokemon_id"`
	Name       string `db:"pokemon_name"`
	PointValue int    `db:"point_value"`
}

type rosterInsertModel struct {
	SeasonID   string `db:"season_id"`
	TeamID     string `db:"team_id"`
	PokemonID  int    `db:"pokemon_id"`
	Name       string `db:"pokemon_name"`
	PointValue int    `db:"point_value"`
}

type transactionLogInsertModel struct {
	ID               string    `db:"id"`
	SeasonID         string    `db:"season_id"`
	TeamID           string    `db:"team_id"`
	Type             string    `db:"transaction_type"`
	AddedPokemonID   *int      `db:"added_pokemon_id"`
	DroppedPokemonID *int      `db:"dropped_pokemon_id"`
	CreatedAt        time.Time `db:"created_at"`
}
