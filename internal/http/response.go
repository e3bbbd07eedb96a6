package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"cashflow/internal/core"
	"cashflow/internal/finance"
	applog "cashflow/internal/log"
	"cashflow/internal/middleware/trace"
)

// errBadRequest marks malformed input: bad JSON, unparseable dates or amounts.
var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	id := trace.GetRequestID(r.Context())
	if id == "" {
		id = w.Header().Get(trace.HeaderRequestID)
	}
	writeJSON(w, status, errorBody{Error: msg, RequestID: id})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	case isValidationError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

var validationErrors = []error{
	core.ErrInvalidDay,
	core.ErrInvalidMonth,
	core.ErrInvalidAmount,
	core.ErrInvalidKind,
	core.ErrInvalidPattern,
	core.ErrEmptyDescription,
	core.ErrEmptyCategory,
	core.ErrInvalidClosingDay,
	core.ErrInvalidDueDay,
	core.ErrInvalidInstallments,
	core.ErrZeroDate,
	core.ErrDescriptionTooLong,
	core.ErrEndBeforeAnchor,
	core.ErrEmptyCardName,
	core.ErrEmptyCardID,
	finance.ErrNegativeAmount,
	errValidation,
}

// errValidation covers rule violations without their own sentinel.
var errValidation = errors.New("validation failed")

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// fail logs err and writes the mapped status. Internal errors are not echoed to the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := applog.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", applog.FieldError, err)
		writeError(w, r, status, "internal error")
		return
	}
	logger.WarnContext(r.Context(), "Request rejected",
		applog.FieldStatusCode, status,
		applog.FieldError, err)
	writeError(w, r, status, err.Error())
}
