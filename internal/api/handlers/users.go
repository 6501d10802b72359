package handlers

import (
	"net/http"
	"strconv"

	"github.com/dom/snake-game-api/internal/api/middleware"
	"github.com/dom/snake-game-api/internal/api/response"
	"github.com/dom/snake-game-api/internal/logging"
	"github.com/dom/snake-game-api/internal/service"
	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	authService *service.AuthService
	log         logging.Logger
}

func NewUserHandler(authService *service.AuthService, log logging.Logger) *UserHandler {
	return &UserHandler{authService: authService, log: log}
}

type UpdateUserRequest struct {
	Email string `json:"email"`
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	token, ok := middleware.BearerToken(r)
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(r.Context(), userID, token)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, user)
}

// Update changes the caller's own email. It runs behind middleware.Auth.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}
	if claims.UserID != userID {
		writeServiceError(w, r, h.log, service.ErrForbidden)
		return
	}

	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := requireField("email", req.Email); err != nil {
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	user, err := h.authService.UpdateEmail(r.Context(), userID, req.Email)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, user)
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		response.Error(w, http.StatusUnprocessableEntity, "user_id must be an integer")
		return 0, false
	}
	return userID, true
}
