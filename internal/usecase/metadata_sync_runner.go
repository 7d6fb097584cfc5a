package usecase

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/metadata"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/syncjob"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/id"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/logging"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/metrics"
	"github.com/panjf2000/ants/v2"
)

const (
	defaultMaxKnownPokemonID = 1025
	defaultSyncBatchSize     = 10
	defaultSyncMaxBatchSize  = 50
	defaultSyncRateLimit     = time.Second
)

type MetadataSyncConfig struct {
	MaxKnownID       int
	DefaultBatchSize int
	MaxBatchSize     int
	DefaultRateLimit time.Duration
}

// SyncInput starts a backfill over [StartID, EndID]. A nil RateLimitMs uses
// the configured default; zero disables the delay between batches.
type SyncInput struct {
	StartID     int
	EndID       int
	BatchSize   int
	RateLimitMs *int
}

type syncPlan struct {
	startID   int
	endID     int
	batchSize int
	rateLimit time.Duration
}

// MetadataSyncRunner owns the single process-wide metadata backfill slot.
type MetadataSyncRunner struct {
	metadataRepo metadata.Repository
	provider     MetadataProvider
	runRepo      syncjob.Repository
	idGen        id.Generator
	metrics      *metrics.Metrics
	logger       *logging.Logger
	cfg          MetadataSyncConfig
	now          func() time.Time
	sleep        func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	status syncjob.Status
	cancel context.CancelFunc
	done   chan struct{}
}

func NewMetadataSyncRunner(
	metadataRepo metadata.Repository,
	provider MetadataProvider,
	runRepo syncjob.Repository,
	idGen id.Generator,
	cfg MetadataSyncConfig,
	logger *logging.Logger,
) *MetadataSyncRunner {
	if cfg.MaxKnownID <= 0 {
		cfg.MaxKnownID = defaultMaxKnownPokemonID
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = defaultSyncMaxBatchSize
	}
	if cfg.DefaultBatchSize <= 0 {
		cfg.DefaultBatchSize = defaultSyncBatchSize
	}
	cfg.DefaultBatchSize = min(cfg.DefaultBatchSize, cfg.MaxBatchSize)
	if cfg.DefaultRateLimit < 0 {
		cfg.DefaultRateLimit = defaultSyncRateLimit
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &MetadataSyncRunner{
		metadataRepo: metadataRepo,
		provider:     provider,
		runRepo:      runRepo,
		idGen:        idGen,
		logger:       logger.Named("sync"),
		cfg:          cfg,
		now:          time.Now,
		sleep:        sleepContext,
		status:       syncjob.Status{State: syncjob.StateIdle},
	}
}

func (r *MetadataSyncRunner) SetMetrics(m *metrics.Metrics) {
	r.metrics = m
}

func (r *MetadataSyncRunner) Start(ctx context.Context, input SyncInput) (syncjob.Status, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MetadataSyncRunner.Start")
	defer span.End()

	plan, err := r.plan(input)
	if err != nil {
		return syncjob.Status{}, err
	}
	if r.provider == nil {
		return syncjob.Status{}, fmt.Errorf("%w: metadata provider is not configured", ErrDependencyUnavailable)
	}

	jobID, err := r.idGen.NewID()
	if err != nil {
		return syncjob.Status{}, fmt.Errorf("generate sync job id: %w", err)
	}

	r.mu.Lock()
	if r.status.State == syncjob.StateRunning {
		active := cloneSyncStatus(r.status)
		r.mu.Unlock()
		return active, fmt.Errorf("%w: job=%s", ErrJobAlreadyRunning, active.JobID)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	startedAt := r.now()
	r.status = syncjob.Status{
		JobID:       jobID,
		State:       syncjob.StateRunning,
		Progress:    &syncjob.Progress{Total: plan.endID - plan.startID + 1},
		StartID:     plan.startID,
		EndID:       plan.endID,
		BatchSize:   plan.batchSize,
		RateLimitMs: int(plan.rateLimit / time.Millisecond),
		StartedAt:   &startedAt,
	}
	r.cancel = cancel
	done := make(chan struct{})
	r.done = done
	snapshot := cloneSyncStatus(r.status)
	r.mu.Unlock()

	r.metrics.SyncRunning(true)
	r.logger.InfoContext(ctx, "metadata sync started",
		"job_id", jobID,
		"start_id", plan.startID,
		"end_id", plan.endID,
		"batch_size", plan.batchSize,
		"rate_limit", plan.rateLimit,
	)

	go r.run(runCtx, jobID, plan, done)
	return snapshot, nil
}

func (r *MetadataSyncRunner) Status() syncjob.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneSyncStatus(r.status)
}

// Cancel returns the slot to idle immediately. The current batch may finish
// its in-flight fetches but their progress is no longer reported.
func (r *MetadataSyncRunner) Cancel(ctx context.Context) syncjob.Status {
	ctx, span := startUsecaseSpan(ctx, "usecase.MetadataSyncRunner.Cancel")
	defer span.End()

	r.mu.Lock()
	if r.status.State != syncjob.StateRunning {
		snapshot := cloneSyncStatus(r.status)
		r.mu.Unlock()
		return snapshot
	}

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	finishedAt := r.now()
	run := runFromStatus(r.status, finishedAt)
	run.Cancelled = true
	run.State = syncjob.StateIdle
	r.status = syncjob.Status{JobID: r.status.JobID, State: syncjob.StateIdle}
	snapshot := cloneSyncStatus(r.status)
	r.mu.Unlock()

	r.metrics.SyncRunning(false)
	r.logger.InfoContext(ctx, "metadata sync cancelled", "job_id", run.ID, "processed", run.Progress.Processed(), "total", run.Progress.Total)
	r.persistRun(ctx, run)
	return snapshot
}

// Wait blocks until the most recently started job goroutine exits.
func (r *MetadataSyncRunner) Wait(ctx context.Context) error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *MetadataSyncRunner) GetRun(ctx context.Context, runID string) (syncjob.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MetadataSyncRunner.GetRun")
	defer span.End()

	if r.runRepo == nil {
		return syncjob.Run{}, fmt.Errorf("%w: sync run history is not configured", ErrDependencyUnavailable)
	}
	run, exists, err := r.runRepo.GetRun(ctx, runID)
	if err != nil {
		return syncjob.Run{}, fmt.Errorf("%w: get sync run %s: %v", ErrStoreUnavailable, runID, err)
	}
	if !exists {
		return syncjob.Run{}, fmt.Errorf("%w: sync run=%s", ErrNotFound, runID)
	}
	return run, nil
}

func (r *MetadataSyncRunner) plan(input SyncInput) (syncPlan, error) {
	if input.StartID < 1 || input.EndID < input.StartID || input.EndID > r.cfg.MaxKnownID {
		return syncPlan{}, fmt.Errorf("%w: require 1 <= start_id(%d) <= end_id(%d) <= %d",
			ErrInvalidRange, input.StartID, input.EndID, r.cfg.MaxKnownID)
	}

	plan := syncPlan{
		startID:   input.StartID,
		endID:     input.EndID,
		batchSize: input.BatchSize,
		rateLimit: r.cfg.DefaultRateLimit,
	}
	if plan.batchSize <= 0 {
		plan.batchSize = r.cfg.DefaultBatchSize
	}
	plan.batchSize = min(plan.batchSize, r.cfg.MaxBatchSize)

	if input.RateLimitMs != nil {
		if *input.RateLimitMs < 0 {
			return syncPlan{}, fmt.Errorf("%w: rate_limit_ms must be >= 0", ErrInvalidInput)
		}
		plan.rateLimit = time.Duration(*input.RateLimitMs) * time.Millisecond
	}
	return plan, nil
}

func (r *MetadataSyncRunner) run(ctx context.Context, jobID string, plan syncPlan, done chan struct{}) {
	defer close(done)

	workers, err := ants.NewPool(plan.batchSize, ants.WithPanicHandler(func(p any) {
		r.logger.Error("sync worker panicked", "job_id", jobID, "panic", p)
	}))
	if err != nil {
		r.finish(ctx, jobID, syncjob.StateFailed, fmt.Errorf("create worker pool: %w", err))
		return
	}
	defer workers.Release()

	for batchStart := plan.startID; batchStart <= plan.endID; batchStart += plan.batchSize {
		if ctx.Err() != nil {
			return
		}

		batchEnd := min(batchStart+plan.batchSize-1, plan.endID)
		if err := r.runBatch(ctx, jobID, workers, batchStart, batchEnd); err != nil {
			if ctx.Err() != nil {
				return
			}
			r.finish(ctx, jobID, syncjob.StateFailed, err)
			return
		}

		if batchEnd < plan.endID && plan.rateLimit > 0 {
			if err := r.sleep(ctx, plan.rateLimit); err != nil {
				return
			}
		}
	}

	r.finish(ctx, jobID, syncjob.StateCompleted, nil)
}

func (r *MetadataSyncRunner) runBatch(ctx context.Context, jobID string, workers *ants.Pool, fromID, toID int) error {
	complete, err := r.metadataRepo.ListCompleteIDs(ctx, fromID, toID)
	if err != nil {
		return fmt.Errorf("%w: list complete metadata ids %d-%d: %v", ErrStoreUnavailable, fromID, toID, err)
	}

	skipped := 0
	for pokemonID := fromID; pokemonID <= toID; pokemonID++ {
		if _, ok := complete[pokemonID]; ok {
			skipped++
		}
	}
	r.addProgress(jobID, 0, skipped, 0)

	// Fetches already submitted outlive a cancel so their writes can land.
	fetchCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	for pokemonID := fromID; pokemonID <= toID; pokemonID++ {
		if _, ok := complete[pokemonID]; ok {
			continue
		}

		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()
			if err := r.syncOne(fetchCtx, pokemonID); err != nil {
				r.logger.WarnContext(fetchCtx, "metadata sync item failed", "job_id", jobID, "pokemon_id", pokemonID, "error", err)
				r.addProgress(jobID, 0, 0, 1)
				return
			}
			r.addProgress(jobID, 1, 0, 0)
		}); err != nil {
			wg.Done()
			r.logger.WarnContext(ctx, "submit sync item failed", "job_id", jobID, "pokemon_id", pokemonID, "error", err)
			r.addProgress(jobID, 0, 0, 1)
		}
	}
	wg.Wait()

	return nil
}

func (r *MetadataSyncRunner) syncOne(ctx context.Context, pokemonID int) error {
	record, err := r.provider.FetchPokemon(ctx, strconv.Itoa(pokemonID))
	if err != nil {
		return fmt.Errorf("fetch pokemon: %w", err)
	}
	if !record.HasTypes() {
		return fmt.Errorf("fetch pokemon: %w", metadata.ErrEmptyTypes)
	}
	if record.Tier == "" {
		record.Tier = metadata.TierForStats(record.BaseStats)
	}
	if err := r.metadataRepo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("upsert metadata: %w", err)
	}
	return nil
}

// addProgress drops updates from any job that no longer owns the running slot.
func (r *MetadataSyncRunner) addProgress(jobID string, synced, skipped, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status.JobID != jobID || r.status.State != syncjob.StateRunning || r.status.Progress == nil {
		return
	}

	progress := *r.status.Progress
	progress.Synced += synced
	progress.Skipped += skipped
	progress.Failed += failed
	progress = progress.WithPercent()
	r.status.Progress = &progress

	r.metrics.SyncItems("synced", synced)
	r.metrics.SyncItems("skipped", skipped)
	r.metrics.SyncItems("failed", failed)
}

func (r *MetadataSyncRunner) finish(ctx context.Context, jobID string, state syncjob.State, cause error) {
	r.mu.Lock()
	if r.status.JobID != jobID || r.status.State != syncjob.StateRunning {
		r.mu.Unlock()
		return
	}

	finishedAt := r.now()
	r.status.State = state
	r.status.FinishedAt = &finishedAt
	if cause != nil {
		r.status.Error = cause.Error()
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	run := runFromStatus(r.status, finishedAt)
	r.mu.Unlock()

	r.metrics.SyncRunning(false)
	if cause != nil {
		r.logger.ErrorContext(ctx, "metadata sync failed", "job_id", jobID, "error", cause)
	} else {
		r.logger.InfoContext(ctx, "metadata sync completed",
			"job_id", jobID,
			"synced", run.Progress.Synced,
			"skipped", run.Progress.Skipped,
			"failed", run.Progress.Failed,
		)
	}
	r.persistRun(context.WithoutCancel(ctx), run)
}

func (r *MetadataSyncRunner) persistRun(ctx context.Context, run syncjob.Run) {
	if r.runRepo == nil {
		return
	}
	if err := r.runRepo.SaveRun(ctx, run); err != nil {
		r.logger.WarnContext(ctx, "persist sync run failed", "job_id", run.ID, "error", err)
	}
}

func runFromStatus(status syncjob.Status, finishedAt time.Time) syncjob.Run {
	run := syncjob.Run{
		ID:          status.JobID,
		State:       status.State,
		StartID:     status.StartID,
		EndID:       status.EndID,
		BatchSize:   status.BatchSize,
		RateLimitMs: status.RateLimitMs,
		Error:       status.Error,
		FinishedAt:  finishedAt,
	}
	if status.Progress != nil {
		run.Progress = *status.Progress
	}
	if status.StartedAt != nil {
		run.StartedAt = *status.StartedAt
	}
	return run
}

func cloneSyncStatus(status syncjob.Status) syncjob.Status {
	out := status
	if status.Progress != nil {
		progress := *status.Progress
		out.Progress = &progress
	}
	if status.StartedAt != nil {
		startedAt := *status.StartedAt
		out.StartedAt = &startedAt
	}
	if status.FinishedAt != nil {
		finishedAt := *status.FinishedAt
		out.FinishedAt = &finishedAt
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
