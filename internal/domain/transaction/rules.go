package transaction

import (
	"errors"
	"fmt"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/pool"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/team"
)

var (
	ErrMalformedRequest     = errors.New("malformed transaction request")
	ErrExceededBudget       = errors.New("budget exceeded")
	ErrRosterTooLarge       = errors.New("roster size exceeded")
	ErrRosterTooSmall       = errors.New("roster size below minimum")
	ErrTransactionLimit     = errors.New("transaction limit reached")
	ErrAddedNotAvailable    = errors.New("pokemon is not available")
	ErrAddedAlreadyOnRoster = errors.New("pokemon is already on roster")
	ErrDroppedNotOnRoster   = errors.New("pokemon is not on roster")
)

// Rules stores transaction validation parameters.
type Rules struct {
	MinRosterSize   int
	MaxRosterSize   int
	MaxTransactions int
}

func DefaultRules() Rules {
	return Rules{
		MinRosterSize:   8,
		MaxRosterSize:   10,
		MaxTransactions: 10,
	}
}

// Evaluate computes the preview of req against t. added is the live pool entry of
// the added Pokémon, nil when it is not in the season pool. Every violated rule
// is reported.
func Evaluate(t team.Team, req Request, added *pool.Entry, rules Rules) Preview {
	budget := t.BudgetTotal
	if budget <= 0 {
		budget = team.DefaultBudgetTotal
	}

	preview := Preview{
		RosterSize:       len(t.Roster),
		PointTotal:       t.SpentPoints(),
		BudgetTotal:      budget,
		TransactionCount: t.TransactionCount,
	}
	preview.TransactionsRemaining = max(rules.MaxTransactions-t.TransactionCount, 0)

	var violations []error
	if req.Type.Adds() && req.AddedPokemonID == nil {
		violations = append(violations, fmt.Errorf("%w: %s requires an added pokemon", ErrMalformedRequest, req.Type))
	}
	if req.Type.Drops() && req.DroppedPokemonID == nil {
		violations = append(violations, fmt.Errorf("%w: %s requires a dropped pokemon", ErrMalformedRequest, req.Type))
	}
	if !req.Type.Adds() && !req.Type.Drops() {
		violations = append(violations, fmt.Errorf("%w: unknown type %q", ErrMalformedRequest, req.Type))
	}

	addedValue, droppedValue := 0, 0
	if req.Type.Adds() && req.AddedPokemonID != nil {
		id := *req.AddedPokemonID
		switch {
		case added == nil:
			violations = append(violations, fmt.Errorf("%w: pokemon %d is not in this season's pool", ErrAddedNotAvailable, id))
		case t.HasPokemon(id):
			violations = append(violations, fmt.Errorf("%w: pokemon %d", ErrAddedAlreadyOnRoster, id))
		case !added.IsAvailable():
			violations = append(violations, fmt.Errorf("%w: %s is %s", ErrAddedNotAvailable, added.Name, pool.NormalizeStatus(string(added.Status))))
		}
		if added != nil {
			addedValue = added.PointValue
		}
	}
	if req.Type.Drops() && req.DroppedPokemonID != nil {
		id := *req.DroppedPokemonID
		entry, ok := t.FindRosterEntry(id)
		if !ok {
			violations = append(violations, fmt.Errorf("%w: pokemon %d", ErrDroppedNotOnRoster, id))
		}
		droppedValue = entry.PointValue
	}

	switch req.Type {
	case TypeReplacement:
		preview.NewRosterSize = preview.RosterSize
		preview.NewPointTotal = preview.PointTotal - droppedValue + addedValue
	case TypeAddition:
		preview.NewRosterSize = preview.RosterSize + 1
		preview.NewPointTotal = preview.PointTotal + addedValue
	case TypeDropOnly:
		preview.NewRosterSize = preview.RosterSize - 1
		preview.NewPointTotal = preview.PointTotal - droppedValue
	default:
		preview.NewRosterSize = preview.RosterSize
		preview.NewPointTotal = preview.PointTotal
	}

	if preview.NewPointTotal > budget {
		violations = append(violations, fmt.Errorf("%w: new total %d exceeds budget %d", ErrExceededBudget, preview.NewPointTotal, budget))
	}
	if preview.NewRosterSize > rules.MaxRosterSize {
		violations = append(violations, fmt.Errorf("%w: new size %d exceeds maximum %d", ErrRosterTooLarge, preview.NewRosterSize, rules.MaxRosterSize))
	}
	if preview.NewRosterSize < rules.MinRosterSize {
		violations = append(violations, fmt.Errorf("%w: new size %d below minimum %d", ErrRosterTooSmall, preview.NewRosterSize, rules.MinRosterSize))
	}
	if t.TransactionCount >= rules.MaxTransactions {
		violations = append(violations, fmt.Errorf("%w: %d of %d used", ErrTransactionLimit, t.TransactionCount, rules.MaxTransactions))
	}

	preview.Violations = violations
	preview.Valid = len(violations) == 0
	return preview
}
