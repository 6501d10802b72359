package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/dom/snake-game-api/internal/api/middleware"
	"github.com/dom/snake-game-api/internal/api/response"
	"github.com/dom/snake-game-api/internal/logging"
	"github.com/dom/snake-game-api/internal/service"
)

const refreshTokenCookie = "refresh_token"

type AuthHandler struct {
	authService   *service.AuthService
	log           logging.Logger
	secureCookies bool
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewAuthHandler(authService *service.AuthService, cookies CookieConfig, log logging.Logger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		log:           log,
		secureCookies: cookies.Secure,
		accessTTL:     cookies.AccessTTL,
		refreshTTL:    cookies.RefreshTTL,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := firstError(
		requireField("username", req.Username),
		requireField("email", req.Email),
		requirePassword(req.Password),
	); err != nil {
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tokens, err := h.authService.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" && req.Email == "" {
		response.Error(w, http.StatusUnprocessableEntity, "username or email is required")
		return
	}
	if req.Password == "" {
		response.Error(w, http.StatusUnprocessableEntity, "password is required")
		return
	}

	tokens, err := h.authService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	h.setCookie(w, middleware.AccessTokenCookie, tokens.AccessToken, h.accessTTL)
	h.setCookie(w, refreshTokenCookie, tokens.RefreshToken, h.refreshTTL)

	response.JSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, err := readRefreshToken(r)
	if err != nil {
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	token, err := h.authService.RefreshAccessToken(r.Context(), refreshToken)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, token)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken, err := readRefreshToken(r)
	if err != nil {
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.authService.Logout(r.Context(), refreshToken); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	h.clearCookie(w, middleware.AccessTokenCookie)
	h.clearCookie(w, refreshTokenCookie)

	response.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// readRefreshToken takes the token from the query string, a JSON body or
// the refresh token cookie, in that order.
func readRefreshToken(r *http.Request) (string, error) {
	if token := r.URL.Query().Get("refresh_token"); token != "" {
		return token, nil
	}

	if r.ContentLength != 0 && r.Body != nil {
		var req RefreshRequest
		if err := decodeJSON(r, &req); err == nil && req.RefreshToken != "" {
			return req.RefreshToken, nil
		}
	}

	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", errors.New("refresh_token is required")
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
