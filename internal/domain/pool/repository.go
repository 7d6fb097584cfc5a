package pool

import "context"

// Source is one strategy for reading available entries of a season.
// Aggregate sources are backed by a pre-joined view and may silently drop rows.
type Source interface {
	Name() string
	Aggregate() bool
	ListAvailable(ctx context.Context, seasonID string) ([]Entry, error)
}

// Repository describes point lookups the transaction flow needs.
type Repository interface {
	GetEntry(ctx context.Context, seasonID string, pokemonID int) (Entry, bool, error)
}
