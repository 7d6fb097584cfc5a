package httpapi

import (
	"fmt"
	"net/http"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/transaction"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/usecase"
)

type transactionRequest struct {
	SeasonID         string `json:"season_id" validate:"required"`
	TeamID           string `json:"team_id" validate:"required"`
	Type             string `json:"type" validate:"required"`
	AddedPokemonID   *int   `json:"added_pokemon_id" validate:"omitempty,min=1"`
	DroppedPokemonID *int   `json:"dropped_pokemon_id" validate:"omitempty,min=1"`
}

type transactionPreviewDTO struct {
	Valid                 bool     `json:"valid"`
	Errors                []string `json:"errors"`
	RosterSize            int      `json:"roster_size"`
	NewRosterSize         int      `json:"new_roster_size"`
	PointTotal            int      `json:"point_total"`
	NewPointTotal         int      `json:"new_point_total"`
	BudgetTotal           int      `json:"budget_total"`
	TransactionCount      int      `json:"transaction_count"`
	TransactionsRemaining int      `json:"transactions_remaining"`
}

type transactionCommitDTO struct {
	TransactionID string                `json:"transaction_id"`
	Preview       transactionPreviewDTO `json:"preview"`
}

func (h *Handler) PreviewTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PreviewTransaction")
	defer span.End()

	input, err := h.decodeTransaction(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	preview, err := h.transactionService.Preview(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "preview transaction failed", "team_id", input.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, previewToDTO(preview))
}

func (h *Handler) CommitTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CommitTransaction")
	defer span.End()

	input, err := h.decodeTransaction(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.transactionService.Commit(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "commit transaction failed", "team_id", input.TeamID, "type", input.Request.Type, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, transactionCommitDTO{
		TransactionID: result.TransactionID,
		Preview:       previewToDTO(result.Preview),
	})
}

func (h *Handler) decodeTransaction(r *http.Request) (usecase.TransactionInput, error) {
	var req transactionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		return usecase.TransactionInput{}, err
	}
	if err := h.validate(r, req); err != nil {
		return usecase.TransactionInput{}, err
	}

	txType, err := transaction.ParseType(req.Type)
	if err != nil {
		return usecase.TransactionInput{}, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}

	return usecase.TransactionInput{
		SeasonID: req.SeasonID,
		TeamID:   req.TeamID,
		Request: transaction.Request{
			Type:             txType,
			AddedPokemonID:   req.AddedPokemonID,
			DroppedPokemonID: req.DroppedPokemonID,
		},
	}, nil
}

func previewToDTO(preview transaction.Preview) transactionPreviewDTO {
	return transactionPreviewDTO{
		Valid:                 preview.Valid,
		Errors:                preview.Messages(),
		RosterSize:            preview.RosterSize,
		NewRosterSize:         preview.NewRosterSize,
		PointTotal:            preview.PointTotal,
		NewPointTotal:         preview.NewPointTotal,
		BudgetTotal:           preview.BudgetTotal,
		TransactionCount:      preview.TransactionCount,
		TransactionsRemaining: preview.TransactionsRemaining,
	}
}
