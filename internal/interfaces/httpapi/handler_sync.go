package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/syncjob"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/usecase"
)

type startSyncRequest struct {
	StartID     int  `json:"start_id" validate:"required"`
	EndID       int  `json:"end_id" validate:"required"`
	BatchSize   int  `json:"batch_size" validate:"omitempty,min=1"`
	RateLimitMs *int `json:"rate_limit_ms"`
}

type syncProgressDTO struct {
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

type syncStatusDTO struct {
	JobID         string           `json:"job_id,omitempty"`
	Status        string           `json:"status"`
	Progress      *syncProgressDTO `json:"progress,omitempty"`
	Error         string           `json:"error,omitempty"`
	StartID       int              `json:"start_id,omitempty"`
	EndID         int              `json:"end_id,omitempty"`
	BatchSize     int              `json:"batch_size,omitempty"`
	RateLimitMs   int              `json:"rate_limit_ms,omitempty"`
	StartedAtUTC  string           `json:"started_at,omitempty"`
	FinishedAtUTC string           `json:"finished_at,omitempty"`
}

type syncRunDTO struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	Cancelled     bool            `json:"cancelled"`
	StartID       int             `json:"start_id"`
	EndID         int             `json:"end_id"`
	BatchSize     int             `json:"batch_size"`
	RateLimitMs   int             `json:"rate_limit_ms"`
	Progress      syncProgressDTO `json:"progress"`
	Error         string          `json:"error,omitempty"`
	StartedAtUTC  string          `json:"started_at"`
	FinishedAtUTC string          `json:"finished_at"`
}

func (h *Handler) StartMetadataSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartMetadataSync")
	defer span.End()

	var req startSyncRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validate(r, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	status, err := h.syncRunner.Start(ctx, usecase.SyncInput{
		StartID:     req.StartID,
		EndID:       req.EndID,
		BatchSize:   req.BatchSize,
		RateLimitMs: req.RateLimitMs,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "start metadata sync failed", "start_id", req.StartID, "end_id", req.EndID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, syncStatusToDTO(status))
}

func (h *Handler) GetMetadataSyncStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMetadataSyncStatus")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, syncStatusToDTO(h.syncRunner.Status()))
}

func (h *Handler) CancelMetadataSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelMetadataSync")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, syncStatusToDTO(h.syncRunner.Cancel(ctx)))
}

func (h *Handler) GetMetadataSyncRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMetadataSyncRun")
	defer span.End()

	runID := strings.TrimSpace(r.PathValue("runID"))
	run, err := h.syncRunner.GetRun(ctx, runID)
	if err != nil {
		h.logger.WarnContext(ctx, "get metadata sync run failed", "run_id", runID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, syncRunDTO{
		ID:            run.ID,
		Status:        string(run.State),
		Cancelled:     run.Cancelled,
		StartID:       run.StartID,
		EndID:         run.EndID,
		BatchSize:     run.BatchSize,
		RateLimitMs:   run.RateLimitMs,
		Progress:      syncProgressDTO(run.Progress),
		Error:         run.Error,
		StartedAtUTC:  run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAtUTC: run.FinishedAt.UTC().Format(time.RFC3339),
	})
}

func syncStatusToDTO(status syncjob.Status) syncStatusDTO {
	out := syncStatusDTO{
		JobID:       status.JobID,
		Status:      string(status.State),
		Error:       status.Error,
		StartID:     status.StartID,
		EndID:       status.EndID,
		BatchSize:   status.BatchSize,
		RateLimitMs: status.RateLimitMs,
	}
	if status.Progress != nil {
		progress := syncProgressDTO(*status.Progress)
		out.Progress = &progress
	}
	if status.StartedAt != nil {
		out.StartedAtUTC = status.StartedAt.UTC().Format(time.RFC3339)
	}
	if status.FinishedAt != nil {
		out.FinishedAtUTC = status.FinishedAt.UTC().Format(time.RFC3339)
	}
	return out
}
