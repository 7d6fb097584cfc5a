package season

import "context"

// Repository describes season persistence needs from use cases.
type Repository interface {
	GetCurrent(ctx context.Context) (Season, bool, error)
	GetByID(ctx context.Context, seasonID string) (Season, bool, error)
}
