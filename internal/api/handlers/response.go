package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/neuvia/backend/internal/infrastructure/observability"
	apperrors "github.com/neuvia/backend/pkg/errors"
)

const maxBodyBytes = 1 << 20

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps typed application errors onto HTTP statuses
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	logServerError(r, err, status)
	respondWithError(w, status, errorMessage(err, status))
}

// errorMessage keeps 5xx details out of responses, except analysis outages
// which the patient can retry
func errorMessage(err error, status int) string {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return "internal server error"
	}
	if status < http.StatusInternalServerError || appErr.Type == apperrors.ErrorTypeAnalysisUnavailable {
		return appErr.Message
	}
	return "internal server error"
}

func logServerError(r *http.Request, err error, status int) {
	if status < http.StatusInternalServerError {
		return
	}
	observability.LoggerFromContext(r.Context()).Error().Err(err).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("Request failed")
}

func statusForError(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeGone:
		return http.StatusGone
	case apperrors.ErrorTypeAnalysisUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
