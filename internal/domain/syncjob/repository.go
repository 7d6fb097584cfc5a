package syncjob

import "context"

type Repository interface {
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, runID string) (Run, bool, error)
}
