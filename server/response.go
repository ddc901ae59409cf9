package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	twitter "github.com/anatolykoptev/go-twitter-followers"
)

// ErrorPayload is the error envelope returned by the API.
type ErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Class   string `json:"class,omitempty"`
}

// MapError converts an extraction error into an HTTP status and payload.
// Provider messages are passed through verbatim.
func MapError(err error) (int, ErrorPayload) {
	if err == nil {
		return http.StatusOK, ErrorPayload{Error: "ok"}
	}

	var apiErr *twitter.APIError
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, ErrorPayload{Error: "bad_request", Message: err.Error()}
	case errors.Is(err, twitter.ErrMissingCredentials):
		return http.StatusBadRequest, ErrorPayload{Error: "missing_credentials", Message: err.Error()}
	case errors.Is(err, twitter.ErrInvalidProfileURL), errors.Is(err, twitter.ErrInvalidHandle):
		return http.StatusBadRequest, ErrorPayload{Error: "invalid_profile_url", Message: err.Error()}
	case errors.Is(err, twitter.ErrRateLimited):
		return http.StatusTooManyRequests, ErrorPayload{Error: "rate_limited", Message: err.Error(), Class: twitter.ClassRateLimited.String()}
	case errors.Is(err, twitter.ErrUserNotFound):
		return http.StatusNotFound, ErrorPayload{Error: "user_not_found", Message: err.Error()}
	case errors.Is(err, twitter.ErrNoFollowers):
		payload := ErrorPayload{Error: "no_followers", Message: err.Error()}
		if errors.As(err, &apiErr) {
			payload.Class = apiErr.Class.String()
			return http.StatusBadGateway, payload
		}
		return http.StatusNotFound, payload
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, ErrorPayload{Error: "provider_error", Message: err.Error(), Class: apiErr.Class.String()}
	default:
		return http.StatusInternalServerError, ErrorPayload{Error: "internal_error", Message: err.Error()}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := MapError(err)
	if status >= http.StatusInternalServerError {
		slog.Warn("extract request failed", slog.Int("status", status), slog.Any("error", err))
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response", slog.Any("error", err))
	}
}
