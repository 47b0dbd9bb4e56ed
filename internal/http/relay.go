package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/IbbyMan/citypane/internal/imagegen"
	"github.com/IbbyMan/citypane/internal/models"
)

// Relay error codes, part of the client contract. Only the two terminal
// conditions carry a code; other errors are identified by status alone.
const (
	relayCodeTokenExhausted       = "TOKEN_EXHAUSTED"
	relayCodeAllModelsUnavailable = "ALL_MODELS_UNAVAILABLE"
)

type relayErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode,omitempty"`
	Status    int    `json:"status"`
	Details   string `json:"details,omitempty"`
}

// setRelayCORS applies the permissive CORS policy the relay promises: any
// origin may POST a generation request.
func setRelayCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// Generate handles /api/generate, the raw relay onto the image provider. The
// provider credential never leaves the server; callers get back a data URL.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	setRelayCORS(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		writeRelayError(w, http.StatusMethodNotAllowed, relayErrorResponse{
			Error:  "method not allowed",
			Status: http.StatusMethodNotAllowed,
		})
		return
	}

	var req models.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRelayError(w, http.StatusBadRequest, relayErrorResponse{
			Error:   "invalid JSON body",
			Status:  http.StatusBadRequest,
			Details: err.Error(),
		})
		return
	}
	if req.Prompt == "" {
		writeRelayError(w, http.StatusBadRequest, relayErrorResponse{
			Error:  "prompt is required",
			Status: http.StatusBadRequest,
		})
		return
	}

	result, err := h.generator.Generate(r.Context(), req)
	if err != nil {
		h.writeGenerateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeGenerateError(w http.ResponseWriter, r *http.Request, err error) {
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		logger.Error("relay generation failed", zap.Error(err))
	}

	var allModels *imagegen.AllModelsUnavailableError
	var provErr *imagegen.ProviderError
	switch {
	case errors.Is(err, imagegen.ErrMissingAPIKey):
		writeRelayError(w, http.StatusInternalServerError, relayErrorResponse{
			Error:  "image provider API key not configured",
			Status: http.StatusInternalServerError,
		})
	case errors.Is(err, imagegen.ErrQuotaExhausted):
		writeRelayError(w, http.StatusPaymentRequired, relayErrorResponse{
			Error:     "image provider quota exhausted",
			ErrorCode: relayCodeTokenExhausted,
			Status:    http.StatusPaymentRequired,
		})
	case errors.As(err, &allModels):
		writeRelayError(w, http.StatusServiceUnavailable, relayErrorResponse{
			Error:     "all image models unavailable",
			ErrorCode: relayCodeAllModelsUnavailable,
			Status:    http.StatusServiceUnavailable,
			Details:   err.Error(),
		})
	case errors.As(err, &provErr):
		status := provErr.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeRelayError(w, status, relayErrorResponse{
			Error:   "image provider error",
			Status:  status,
			Details: provErr.Error(),
		})
	default:
		writeRelayError(w, http.StatusBadGateway, relayErrorResponse{
			Error:   "image generation failed",
			Status:  http.StatusBadGateway,
			Details: err.Error(),
		})
	}
}

func writeRelayError(w http.ResponseWriter, status int, body relayErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
