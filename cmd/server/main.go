package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/snake-game-api/internal/api"
	"github.com/dom/snake-game-api/internal/config"
	"github.com/dom/snake-game-api/internal/logging"
	"github.com/dom/snake-game-api/internal/repository/database"
	"github.com/dom/snake-game-api/internal/repository/memory"
	redisRepo "github.com/dom/snake-game-api/internal/repository/redis"
	"github.com/dom/snake-game-api/internal/service"
)

func main() {
	if err := run(); err != nil {
		logging.New(os.Getenv("ENVIRONMENT")).Error(context.Background(), "server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.New(cfg.Environment)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize database
	db, err := database.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL, log.Slog(), cfg.DatabaseVerbose)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	applied, err := database.Migrate(ctx, db, cfg.DatabaseDriver)
	if err != nil {
		return err
	}
	log.Info(ctx, "database ready", "driver", cfg.DatabaseDriver, "migrations_applied", len(applied))

	// Initialize repositories
	repos := database.NewRepositories(db)
	switch cfg.RefreshTokenStore {
	case config.StoreRedis:
		client, err := redisRepo.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		repos.RefreshToken = redisRepo.NewRefreshTokenRepository(client)
	case config.StoreMemory:
		repos.RefreshToken = memory.NewRefreshTokenRepository()
	}
	log.Info(ctx, "refresh token store selected", "store", cfg.RefreshTokenStore)

	// Initialize services
	services, err := service.NewServices(repos, cfg, log)
	if err != nil {
		return err
	}
	go services.Sweeper.Run(ctx)

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	log.Info(ctx, "shutting down server")
	stop()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info(shutdownCtx, "server stopped")
	return nil
}
