package metadata

import "context"

// Repository describes metadata persistence needs from use cases.
type Repository interface {
	// ListByNames matches names case-insensitively against the display name or slug.
	ListByNames(ctx context.Context, names []string) ([]Record, error)
	ListByIDs(ctx context.Context, ids []int) ([]Record, error)
	// ListCompleteIDs returns ids in [fromID, toID] whose stored record is complete.
	ListCompleteIDs(ctx context.Context, fromID, toID int) (map[int]struct{}, error)
	// Upsert is idempotent and rejects records without types.
	Upsert(ctx context.Context, record Record) error
}
