package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/romariotrain/vidtube/internal/models"
)

// response is the envelope of every successful call. Data is always present,
// possibly null.
type response struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, response{
		Status:  status,
		Data:    data,
		Message: message,
		Success: true,
	})
}

func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Status: status, Message: message})
}

// writeError maps err onto the error envelope. Unexpected errors are logged
// and hidden behind a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	var message string
	switch {
	case status == http.StatusRequestEntityTooLarge:
		message = "Request body too large"
	case status >= http.StatusInternalServerError && status != http.StatusNotImplemented:
		message = models.MessageOf(err, "Internal server error")
		hlog.FromRequest(r).Error().Err(err).Int("status", status).Msg("request failed")
	default:
		message = models.MessageOf(err, http.StatusText(status))
	}

	writeErrorJSON(w, status, message)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, models.ErrUploadFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
