package memory

import (
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/metadata"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/pool"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/season"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/team"
)

const (
	SeasonIDCurrent  = "season-6"
	SeasonIDPrevious = "season-5"

	TeamIDEmber = "team-ember"
	TeamIDTide  = "team-tide"
)

type seedPick struct {
	id     int
	name   string
	points int
	status pool.Status
}

var seedPool = []seedPick{
	{445, "Garchomp", 19, pool.StatusDrafted},
	{984, "Great Tusk", 18, pool.StatusDrafted},
	{823, "Corviknight", 14, pool.StatusDrafted},
	{748, "Toxapex", 12, pool.StatusDrafted},
	{36, "Clefable", 11, pool.StatusDrafted},
	{598, "Ferrothorn", 10, pool.StatusDrafted},
	{184, "Azumarill", 9, pool.StatusDrafted},
	{227, "Skarmory", 9, pool.StatusDrafted},
	{858, "Hatterene", 8, pool.StatusDrafted},
	{887, "Dragapult", 17, pool.StatusDrafted},
	{485, "Heatran", 16, pool.StatusDrafted},
	{1006, "Iron Valiant", 15, pool.StatusDrafted},
	{1003, "Ting-Lu", 13, pool.StatusDrafted},
	{959, "Tinkaton", 11, pool.StatusDrafted},
	{977, "Dondozo", 10, pool.StatusDrafted},
	{199, "Slowking", 8, pool.StatusDrafted},
	{591, "Amoonguss", 7, pool.StatusDrafted},
	{149, "Dragonite", 17, pool.StatusAvailable},
	{1000, "Gholdengo", 17, pool.StatusAvailable},
	{983, "Kingambit", 16, pool.StatusAvailable},
	{468, "Togekiss", 13, pool.StatusAvailable},
	{461, "Weavile", 12, pool.StatusAvailable},
	{25, "Pikachu", 5, pool.StatusAvailable},
	{888, "Zacian", 20, pool.StatusBanned},
}

var seedRosters = map[string][]int{
	TeamIDEmber: {445, 984, 823, 748, 36, 598, 184, 227, 858},
	TeamIDTide:  {887, 485, 1006, 1003, 959, 977, 199, 591},
}

// SeedLeague returns a playable current season with two drafted teams.
func SeedLeague() LeagueSeed {
	seasons := []season.Season{
		{ID: SeasonIDPrevious, Name: "Season 5"},
		{ID: SeasonIDCurrent, Name: "Season 6", IsCurrent: true},
	}

	byID := make(map[int]seedPick, len(seedPool))
	entries := make([]pool.Entry, 0, len(seedPool)+1)
	for _, pick := range seedPool {
		byID[pick.id] = pick
		entries = append(entries, pool.Entry{
			SeasonID:   SeasonIDCurrent,
			PokemonID:  intPtr(pick.id),
			Name:       pick.name,
			PointValue: pick.points,
			Status:     pick.status,
		})
	}
	// Legacy rows were seeded by name only and without a status.
	entries = append(entries, pool.Entry{SeasonID: SeasonIDCurrent, Name: "Mr. Mime", PointValue: 3})

	teams := []team.Team{
		{ID: TeamIDEmber, SeasonID: SeasonIDCurrent, Name: "Ember Esports", BudgetTotal: team.DefaultBudgetTotal, TransactionCount: 2},
		{ID: TeamIDTide, SeasonID: SeasonIDCurrent, Name: "Tidal Wave", BudgetTotal: team.DefaultBudgetTotal},
	}
	for idx := range teams {
		for _, pokemonID := range seedRosters[teams[idx].ID] {
			pick := byID[pokemonID]
			teams[idx].Roster = append(teams[idx].Roster, team.RosterEntry{
				PokemonID:  pick.id,
				Name:       pick.name,
				PointValue: pick.points,
			})
		}
	}

	return LeagueSeed{Seasons: seasons, Pool: entries, Teams: teams}
}

func SeedMetadata() []metadata.Record {
	return []metadata.Record{
		{
			PokemonID:  445,
			Name:       "Garchomp",
			Slug:       "garchomp",
			Types:      []string{"dragon", "ground"},
			Generation: 4,
			BaseStats:  metadata.BaseStats{HP: 108, Attack: 130, Defense: 95, SpecialAttack: 80, SpecialDefense: 85, Speed: 102},
			Tier:       "S",
		},
		{
			PokemonID:  25,
			Name:       "Pikachu",
			Slug:       "pikachu",
			Types:      []string{"electric"},
			Generation: 1,
			BaseStats:  metadata.BaseStats{HP: 35, Attack: 55, Defense: 40, SpecialAttack: 50, SpecialDefense: 50, Speed: 90},
			Tier:       "D",
		},
	}
}

func intPtr(v int) *int {
	return &v
}
