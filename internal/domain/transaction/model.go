package transaction

import (
	"fmt"
	"time"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/team"
)

type Type string

const (
	TypeReplacement Type = "replacement"
	TypeAddition    Type = "addition"
	TypeDropOnly    Type = "drop_only"
)

func ParseType(raw string) (Type, error) {
	switch Type(raw) {
	case TypeReplacement, TypeAddition, TypeDropOnly:
		return Type(raw), nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", raw)
	}
}

func (t Type) Adds() bool {
	return t == TypeReplacement || t == TypeAddition
}

func (t Type) Drops() bool {
	return t == TypeReplacement || t == TypeDropOnly
}

// Request is a proposed unilateral roster change.
type Request struct {
	Type             Type
	AddedPokemonID   *int
	DroppedPokemonID *int
}

// Preview is the outcome of evaluating a request against live team state.
type Preview struct {
	Valid                 bool
	Violations            []error
	RosterSize            int
	NewRosterSize         int
	PointTotal            int
	NewPointTotal         int
	BudgetTotal           int
	TransactionCount      int
	TransactionsRemaining int
}

func (p Preview) Messages() []string {
	out := make([]string, 0, len(p.Violations))
	for _, violation := range p.Violations {
		out = append(out, violation.Error())
	}
	return out
}

// Commit is the full set of mutations applied atomically for one transaction.
type Commit struct {
	ID                       string
	SeasonID                 string
	TeamID                   string
	Type                     Type
	Added                    *team.RosterEntry
	Dropped                  *team.RosterEntry
	ExpectedTransactionCount int
	CreatedAt                time.Time
}
