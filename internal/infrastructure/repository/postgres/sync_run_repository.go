package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/syncjob"
	qb "github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

type syncProgressDocument struct {
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

type syncRunTableModel struct {
	ID          string         `db:"id"`
	State       string         `db:"state"`
	Cancelled   bool           `db:"cancelled"`
	StartID     int            `db:"start_id"`
	EndID       int            `db:"end_id"`
	BatchSize   int            `db:"batch_size"`
	RateLimitMs int            `db:"rate_limit_ms"`
	Progress    []byte         `db:"progress"`
	Error       sql.NullString `db:"error"`
	StartedAt   time.Time      `db:"started_at"`
	FinishedAt  time.Time      `db:"finished_at"`
}

type syncRunInsertModel struct {
	ID          string    `db:"id"`
	State       string    `db:"state"`
	Cancelled   bool      `db:"cancelled"`
	StartID     int       `db:"start_id"`
	EndID       int       `db:"end_id"`
	BatchSize   int       `db:"batch_size"`
	RateLimitMs int       `db:"rate_limit_ms"`
	Progress    string    `db:"progress"`
	Error       *string   `db:"error"`
	StartedAt   time.Time `db:"started_at"`
	FinishedAt  time.Time `db:"finished_at"`
}

type SyncRunRepository struct {
	db *sqlx.DB
}

func NewSyncRunRepository(db *sqlx.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

func (r *SyncRunRepository) SaveRun(ctx context.Context, run syncjob.Run) error {
	progress, err := jsonCodec.Marshal(syncProgressDocument(run.Progress))
	if err != nil {
		return fmt.Errorf("encode sync run progress: %w", err)
	}

	query, args, err := qb.InsertModel("metadata_sync_runs", syncRunInsertModel{
		ID:          run.ID,
		State:       string(run.State),
		Cancelled:   run.Cancelled,
		StartID:     run.StartID,
		EndID:       run.EndID,
		BatchSize:   run.BatchSize,
		RateLimitMs: run.RateLimitMs,
		Progress:    string(progress),
		Error:       nullableString(run.Error),
		StartedAt:   run.StartedAt.UTC(),
		FinishedAt:  run.FinishedAt.UTC(),
	}, `ON CONFLICT (id) DO UPDATE SET
    state = EXCLUDED.state,
    cancelled = EXCLUDED.cancelled,
    progress = EXCLUDED.progress,
    error = EXCLUDED.error,
    finished_at = EXCLUDED.finished_at`)
	if err != nil {
		return fmt.Errorf("build upsert sync run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert sync run %s: %w", run.ID, err)
	}
	return nil
}

func (r *SyncRunRepository) GetRun(ctx context.Context, runID string) (syncjob.Run, bool, error) {
	query, args, err := qb.Select("*").From("metadata_sync_runs").
		Where(qb.Eq("id", runID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return syncjob.Run{}, false, fmt.Errorf("build select sync run query: %w", err)
	}

	var row syncRunTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return syncjob.Run{}, false, nil
		}
		return syncjob.Run{}, false, fmt.Errorf("select sync run %s: %w", runID, err)
	}

	var progress syncProgressDocument
	if len(row.Progress) > 0 {
		if err := jsonCodec.Unmarshal(row.Progress, &progress); err != nil {
			return syncjob.Run{}, false, fmt.Errorf("decode sync run progress %s: %w", runID, err)
		}
	}

	return syncjob.Run{
		ID:          row.ID,
		State:       syncjob.State(row.State),
		Cancelled:   row.Cancelled,
		StartID:     row.StartID,
		EndID:       row.EndID,
		BatchSize:   row.BatchSize,
		RateLimitMs: row.RateLimitMs,
		Progress:    syncjob.Progress(progress),
		Error:       row.Error.String,
		StartedAt:   row.StartedAt,
		FinishedAt:  row.FinishedAt,
	}, true, nil
}
