package pool

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusAvailable   Status = "available"
	StatusDrafted     Status = "drafted"
	StatusBanned      Status = "banned"
	StatusUnavailable Status = "unavailable"
)

var AllStatuses = map[Status]struct{}{
	StatusAvailable:   {},
	StatusDrafted:     {},
	StatusBanned:      {},
	StatusUnavailable: {},
}

var orderedStatuses = []Status{StatusAvailable, StatusDrafted, StatusBanned, StatusUnavailable}

// Entry is one draftable Pokémon inside a season pool.
// PokemonID is nil for entries seeded by name only.
type Entry struct {
	SeasonID     string
	PokemonID    *int
	Name         string
	PointValue   int
	Status       Status
	TeraEligible *bool
}

// NormalizeStatus reads a stored status value. Legacy rows carry no status
// and are treated as available.
func NormalizeStatus(raw string) Status {
	value := Status(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return StatusAvailable
	}
	return value
}

func (e Entry) IsAvailable() bool {
	return NormalizeStatus(string(e.Status)) == StatusAvailable
}

func (e Entry) HasPokemonID(id int) bool {
	return e.PokemonID != nil && *e.PokemonID == id
}

func (e Entry) Validate() error {
	if e.SeasonID == "" {
		return fmt.Errorf("pool entry season id is required")
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("pool entry name is required")
	}
	if e.PointValue < 0 {
		return fmt.Errorf("pool entry point value must be >= 0")
	}
	if _, ok := AllStatuses[NormalizeStatus(string(e.Status))]; !ok {
		return fmt.Errorf("unknown pool entry status %q", e.Status)
	}

	return nil
}

// CanTransition reports whether a status change is allowed. Banning a drafted
// entry must go through available first.
func CanTransition(from, to Status) bool {
	from = NormalizeStatus(string(from))
	to = NormalizeStatus(string(to))
	if from == to {
		return true
	}

	switch from {
	case StatusAvailable:
		return to == StatusDrafted || to == StatusBanned
	case StatusDrafted:
		return to == StatusAvailable
	default:
		return false
	}
}

// TransitionSources lists the stored statuses that may move to the given
// status, excluding the status itself.
func TransitionSources(to Status) []Status {
	to = NormalizeStatus(string(to))
	var out []Status
	for _, from := range orderedStatuses {
		if from != to && CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}
