package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/navtrail/navtrail-backend/internal/domain"
)

// envelope is the uniform response body of the API.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	respond(w, status, envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string, data interface{}) {
	respond(w, status, envelope{Success: true, Message: message, Data: data})
}

// respondError maps domain errors onto HTTP statuses. Anything unmapped
// is logged and answered with a generic 500 body.
func respondError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrInvalidCredentials):
		respond(w, http.StatusBadRequest, envelope{Success: false, Message: err.Error()})
	case errors.Is(err, domain.ErrNoHoldings),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrSchemeNotFound):
		respond(w, http.StatusNotFound, envelope{Success: false, Message: err.Error()})
	case errors.Is(err, domain.ErrTooManyAttempts):
		respond(w, http.StatusTooManyRequests, envelope{Success: false, Message: "Too many attempts, please try again later"})
	default:
		log.Error().Err(err).Msg("Request failed")
		respond(w, http.StatusInternalServerError, envelope{Success: false, Message: "Internal server error"})
	}
}
