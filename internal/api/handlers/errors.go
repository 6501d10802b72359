package handlers

import (
	"errors"
	"net/http"

	"github.com/dom/snake-game-api/internal/api/response"
	"github.com/dom/snake-game-api/internal/domain"
	"github.com/dom/snake-game-api/internal/logging"
	"github.com/dom/snake-game-api/internal/service"
)

// writeServiceError maps service and domain errors onto HTTP responses.
// Anything unrecognised is logged and reported as a 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicateUsername):
		response.Error(w, http.StatusBadRequest, "Username already registered")
	case errors.Is(err, domain.ErrDuplicateEmail):
		response.Error(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(w, "Incorrect username or password")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		response.Unauthorized(w, "Invalid refresh token")
	case errors.Is(err, service.ErrUnauthenticated):
		response.Unauthorized(w, "Could not validate credentials")
	case errors.Is(err, service.ErrForbidden):
		response.Error(w, http.StatusForbidden, "Not authorized to access this user")
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, "User not found")
	default:
		log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
