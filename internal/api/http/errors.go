package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
)

// HTTPError is the JSON body of every failed request.
type HTTPError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Dates   []string          `json:"dates,omitempty"`
	Reasons map[string]string `json:"reasons,omitempty"`
}

func (e HTTPError) Error() string { return e.Message }

// errorStatus maps a domain error to its status code and taxonomy name.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrDateRangeInvalid):
		return http.StatusBadRequest, "DateRangeInvalid"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "ValidationError"
	case errors.Is(err, domain.ErrDateUnavailable):
		return http.StatusConflict, "DateUnavailable"
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return http.StatusConflict, "InvalidStateTransition"
	case errors.Is(err, domain.ErrCredentialAlreadyConsumed):
		return http.StatusConflict, "CredentialAlreadyConsumed"
	case errors.Is(err, domain.ErrCredentialInvalid):
		return http.StatusUnprocessableEntity, "CredentialInvalid"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NotFound"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	}
	return http.StatusInternalServerError, "InternalError"
}

func writeError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	body := HTTPError{Code: code, Message: err.Error()}
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
		body.Message = "internal error"
	}

	var unavailable *domain.UnavailableDatesError
	if errors.As(err, &unavailable) {
		body.Reasons = make(map[string]string, len(unavailable.Dates))
		for _, d := range unavailable.Dates {
			body.Dates = append(body.Dates, d.String())
			body.Reasons[d.String()] = unavailable.Reasons[d]
		}
	}
	writeHTTPError(w, status, body)
}

func writeHTTPError(w http.ResponseWriter, status int, body HTTPError) {
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}
