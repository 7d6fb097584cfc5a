package team

import (
	"errors"
	"fmt"
)

const DefaultBudgetTotal = 120

var (
	// ErrStateChanged is returned when a commit observes a transaction count it did not expect.
	ErrStateChanged = errors.New("team state changed concurrently")
	ErrNotOnRoster  = errors.New("pokemon is not on team roster")
)

// RosterEntry is one Pokémon owned by a team.
type RosterEntry struct {
	PokemonID  int
	Name       string
	PointValue int
}

// Team is a season-scoped roster owner.
type Team struct {
	ID               string
	SeasonID         string
	Name             string
	BudgetTotal      int
	Roster           []RosterEntry
	TransactionCount int
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.SeasonID == "" {
		return fmt.Errorf("team season id is required")
	}
	if t.BudgetTotal <= 0 {
		return fmt.Errorf("team budget must be > 0")
	}

	return nil
}

func (t Team) SpentPoints() int {
	total := 0
	for _, entry := range t.Roster {
		total += entry.PointValue
	}
	return total
}

func (t Team) FindRosterEntry(pokemonID int) (RosterEntry, bool) {
	for _, entry := range t.Roster {
		if entry.PokemonID == pokemonID {
			return entry, true
		}
	}
	return RosterEntry{}, false
}

func (t Team) HasPokemon(pokemonID int) bool {
	_, ok := t.FindRosterEntry(pokemonID)
	return ok
}
