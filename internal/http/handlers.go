package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lucas-hudsn/wavereader/internal/lifecycle"
	"github.com/lucas-hudsn/wavereader/internal/service"
	"github.com/lucas-hudsn/wavereader/internal/store"
	"github.com/lucas-hudsn/wavereader/internal/validation"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	forecastService *service.ForecastService
	breakStore      store.BreakStore
	logger          *zap.Logger
	nameMinLength   int
	nameMaxLength   int
}

// NewHandler returns a new Handler.
func NewHandler(
	forecastService *service.ForecastService,
	breakStore store.BreakStore,
	logger *zap.Logger,
	nameMinLength, nameMaxLength int,
) *Handler {
	return &Handler{
		forecastService: forecastService,
		breakStore:      breakStore,
		logger:          logger,
		nameMinLength:   nameMinLength,
		nameMaxLength:   nameMaxLength,
	}
}

// GetHealth handles GET /api/health. Status is "ok" when the break store is
// reachable, "degraded" when it is not, and "shutting-down" while draining.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if lifecycle.IsShuttingDown() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "shutting-down",
		})
		return
	}

	status := "ok"
	database := "connected"
	statusCode := http.StatusOK
	if err := h.breakStore.Ping(r.Context()); err != nil {
		status = "degraded"
		database = "unavailable"
		statusCode = http.StatusServiceUnavailable
		h.logger.Warn("health check: database unreachable", zap.Error(err))
	}

	writeJSON(w, statusCode, map[string]string{
		"status":   status,
		"database": database,
	})
}

// GetStates handles GET /api/states.
func (h *Handler) GetStates(w http.ResponseWriter, r *http.Request) {
	states, err := h.breakStore.ListStates(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"states": states})
}

// ListBreaks handles GET /api/breaks with limit/offset pagination.
func (h *Handler) ListBreaks(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := validation.ParsePagination(
		r.URL.Query().Get("limit"),
		r.URL.Query().Get("offset"),
	)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_PAGINATION", err.Error())
		return
	}

	breaks, total, err := h.breakStore.ListBreaks(r.Context(), limit, offset)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"breaks": breaks,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetBreaksByState handles GET /api/breaks/{state}.
func (h *Handler) GetBreaksByState(w http.ResponseWriter, r *http.Request) {
	state := strings.TrimSpace(mux.Vars(r)["state"])
	if state == "" {
		writeError(w, r, http.StatusBadRequest, "INVALID_STATE", "state is required")
		return
	}

	names, err := h.breakStore.ListBreakNamesByState(r.Context(), state)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"breaks": names})
}

// GetBreakDetail handles GET /api/break/{name}. The response always carries
// the static record when the break exists; weather_data and forecast appear
// only when their upstream steps succeeded.
func (h *Handler) GetBreakDetail(w http.ResponseWriter, r *http.Request) {
	name, err := validation.ValidateBreakName(mux.Vars(r)["name"], h.nameMinLength, h.nameMaxLength)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BREAK_NAME", err.Error())
		return
	}

	detail, err := h.forecastService.GetBreakDetail(r.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrBreakNotFound) {
			writeError(w, r, http.StatusNotFound, "BREAK_NOT_FOUND", "Surf break not found")
			return
		}
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code,
// message, and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		corrID = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}

// writeStoreError writes a 500 response for lookup-layer failures. The
// underlying error goes to the request logger, not the client.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusInternalServerError, "STORAGE_UNAVAILABLE", "Internal server error")
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		logger.Error("storage error", zap.Error(err))
	}
}
