package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/logging"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/usecase"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

type Handler struct {
	poolService        *usecase.PoolService
	syncRunner         *usecase.MetadataSyncRunner
	transactionService *usecase.TransactionService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	poolService *usecase.PoolService,
	syncRunner *usecase.MetadataSyncRunner,
	transactionService *usecase.TransactionService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		poolService:        poolService,
		syncRunner:         syncRunner,
		transactionService: transactionService,
		logger:             logger.Named("httpapi"),
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched
// when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) validate(r *http.Request, payload any) error {
	if err := h.validator.StructCtx(r.Context(), payload); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
