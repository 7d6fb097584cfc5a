package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/syncjob"
)

type SyncRunRepository struct {
	mu   sync.RWMutex
	runs map[string]syncjob.Run
}

func NewSyncRunRepository() *SyncRunRepository {
	return &SyncRunRepository{runs: make(map[string]syncjob.Run)}
}

func (r *SyncRunRepository) SaveRun(_ context.Context, run syncjob.Run) error {
	if run.ID == "" {
		return fmt.Errorf("sync run id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[run.ID] = run
	return nil
}

func (r *SyncRunRepository) GetRun(_ context.Context, runID string) (syncjob.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[runID]
	return run, ok, nil
}
