package api

import (
	"net/http"

	"github.com/dom/snake-game-api/internal/api/handlers"
	"github.com/dom/snake-game-api/internal/api/middleware"
	"github.com/dom/snake-game-api/internal/api/response"
	"github.com/dom/snake-game-api/internal/config"
	"github.com/dom/snake-game-api/internal/logging"
	"github.com/dom/snake-game-api/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, cfg *config.Config, log logging.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.StripSlashes)
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, handlers.CookieConfig{
		Secure:     cfg.IsProduction(),
		AccessTTL:  cfg.AccessTokenTTL(),
		RefreshTTL: cfg.RefreshTokenTTL(),
	}, log)
	userHandler := handlers.NewUserHandler(services.Auth, log)
	availabilityHandler := handlers.NewAvailabilityHandler(services.Auth, log)
	availabilityLimiter := middleware.NewRateLimiter(cfg.AvailabilityRateLimit, cfg.AvailabilityRateBurst)

	r.Route("/api", func(r chi.Router) {
		r.Get("/test", func(w http.ResponseWriter, r *http.Request) {
			response.JSON(w, http.StatusOK, map[string]string{"message": "Test route is working!"})
		})

		// Tokens
		r.Post("/token", authHandler.Login)
		r.Post("/token/refresh", authHandler.Refresh)
		r.Post("/token/logout", authHandler.Logout)

		// Users
		r.Post("/users", authHandler.Register)
		r.Get("/users/{user_id}", userHandler.Get)
		r.With(middleware.Auth(services.Auth)).Put("/users/{user_id}", userHandler.Update)

		// Availability checks are public, so they are rate limited per client
		r.Group(func(r chi.Router) {
			r.Use(availabilityLimiter.Handler)
			r.Get("/check-username", availabilityHandler.CheckUsername)
			r.Get("/check-email", availabilityHandler.CheckEmail)
		})
	})

	return r
}
