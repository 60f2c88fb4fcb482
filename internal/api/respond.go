package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"slotbook/internal/database"
	"slotbook/internal/gateway"
	"slotbook/internal/service"
	"slotbook/internal/storage"
	"slotbook/internal/validation"

	"github.com/rs/zerolog"
)

type errorBody struct {
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorBody{Message: message})
}

// writeServiceError maps service and storage errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, service.ErrUnknownPackage),
		errors.Is(err, service.ErrUploadRequired),
		errors.Is(err, storage.ErrUnsupportedType),
		errors.Is(err, database.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidSignature):
		writeError(w, http.StatusBadRequest, "Payment verification failed")
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrAlreadyExists),
		errors.Is(err, database.ErrNotToggleable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, gateway.ErrGateway):
		logger.Error().Err(err).Msg("Gateway error")
		writeError(w, http.StatusBadGateway, "payment gateway unavailable")
	default:
		logger.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
