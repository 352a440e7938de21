package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/scholarsync/internal/apperr"
)

const maxJSONBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

type messageResponse struct {
	Message string `json:"message" validate:"required"`
}

// decodeJSON reads a size-limited JSON body into dst and validates it when
// dst implements validation.Validatable. It writes the 400 response itself
// and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if v, ok := dst.(validation.Validatable); ok {
		if err := v.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return false
		}
	}
	return true
}

// writeError maps a service error to its HTTP status. Unexpected errors are
// logged under op and reported as "internal error".
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("conflict"))
	case errors.Is(err, apperr.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody(apperr.ErrInvalidCredentials.Error()))
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(inputMessage(err)))
	case errors.Is(err, apperr.ErrEncoding):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// inputMessage drops the sentinel suffix from wrapped invalid-input errors.
func inputMessage(err error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+apperr.ErrInvalidInput.Error())
	if msg == "" {
		return apperr.ErrInvalidInput.Error()
	}
	return msg
}
