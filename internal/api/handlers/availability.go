package handlers

import (
	"net/http"

	"github.com/dom/snake-game-api/internal/api/response"
	"github.com/dom/snake-game-api/internal/logging"
	"github.com/dom/snake-game-api/internal/service"
)

type AvailabilityHandler struct {
	authService *service.AuthService
	log         logging.Logger
}

func NewAvailabilityHandler(authService *service.AuthService, log logging.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{authService: authService, log: log}
}

type AvailabilityResponse struct {
	Available bool `json:"available"`
}

func (h *AvailabilityHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if err := requireField("username", username); err != nil {
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	available, err := h.authService.CheckUsernameAvailable(r.Context(), username)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, AvailabilityResponse{Available: available})
}

func (h *AvailabilityHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := requireField("email", email); err != nil {
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	available, err := h.authService.CheckEmailAvailable(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, AvailabilityResponse{Available: available})
}
