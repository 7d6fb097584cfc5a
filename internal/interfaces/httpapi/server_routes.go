package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
}

func registerPoolRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/pool", handler.ListPool)
}

func registerTransactionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/transactions/preview", handler.PreviewTransaction)
	mux.HandleFunc("POST /v1/transactions", handler.CommitTransaction)
}

func registerInternalSyncRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	guard := func(next http.HandlerFunc) http.Handler {
		return RequireInternalJobToken(internalJobToken, next)
	}

	mux.Handle("POST /v1/internal/sync/pokemon", guard(handler.StartMetadataSync))
	mux.Handle("GET /v1/internal/sync/pokemon", guard(handler.GetMetadataSyncStatus))
	mux.Handle("DELETE /v1/internal/sync/pokemon", guard(handler.CancelMetadataSync))
	// Persisted summary of a finished or cancelled run.
	mux.Handle("GET /v1/internal/sync/pokemon/runs/{runID}", guard(handler.GetMetadataSyncRun))
}
