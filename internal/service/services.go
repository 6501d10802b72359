package service

import (
	"context"

	"github.com/dom/snake-game-api/internal/auth"
	"github.com/dom/snake-game-api/internal/config"
	"github.com/dom/snake-game-api/internal/logging"
	"github.com/dom/snake-game-api/internal/repository"
)

type Services struct {
	Auth    *AuthService
	Sweeper *TokenSweeper
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log logging.Logger) (*Services, error) {
	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		return nil, err
	}

	log.Info(context.Background(), "auth configured",
		"algorithm", issuer.Algorithm(),
		"bcrypt_cost", hasher.Cost(),
		"access_token_ttl", cfg.AccessTokenTTL(),
		"refresh_token_ttl", cfg.RefreshTokenTTL(),
	)

	return &Services{
		Auth: NewAuthService(repos.User, repos.RefreshToken, hasher, issuer, AuthServiceConfig{
			AccessTokenTTL:  cfg.AccessTokenTTL(),
			RefreshTokenTTL: cfg.RefreshTokenTTL(),
		}, log),
		Sweeper: NewTokenSweeper(repos.RefreshToken, cfg.RefreshTokenSweepInterval, log),
	}, nil
}
