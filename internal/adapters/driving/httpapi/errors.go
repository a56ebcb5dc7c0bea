package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/logger"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// statusFor maps a domain error to its HTTP status and error kind.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "validation"
	case errors.Is(err, domain.ErrUnsupportedOperation):
		return http.StatusBadRequest, "unsupported_operation"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidCursor):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusBadGateway, "backend_unavailable"
	case errors.Is(err, domain.ErrUnsupportedType), errors.Is(err, domain.ErrConnectorConfig):
		return http.StatusInternalServerError, "connector_config"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, kind := statusFor(err)
	body := errorBody{Error: err.Error(), Kind: kind}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
		body.Reason = verr.Reason
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("writing response: %v", err)
	}
}
