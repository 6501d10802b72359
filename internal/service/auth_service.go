package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/snake-game-api/internal/auth"
	"github.com/dom/snake-game-api/internal/domain"
	"github.com/dom/snake-game-api/internal/logging"
	"github.com/dom/snake-game-api/internal/repository"
)

const TokenTypeBearer = "bearer"

var (
	ErrInvalidCredentials  = errors.New("incorrect username or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUnauthenticated     = errors.New("could not validate credentials")
	ErrForbidden           = errors.New("not authorized to access this user")
)

type AuthService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	hasher           *auth.PasswordHasher
	issuer           *auth.TokenIssuer
	accessTTL        time.Duration
	refreshTTL       time.Duration
	log              logging.Logger
}

type AuthServiceConfig struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	hasher *auth.PasswordHasher,
	issuer *auth.TokenIssuer,
	cfg AuthServiceConfig,
	log logging.Logger,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		hasher:           hasher,
		issuer:           issuer,
		accessTTL:        cfg.AccessTokenTTL,
		refreshTTL:       cfg.RefreshTokenTTL,
		log:              log.With("component", "auth_service"),
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput names the account by email, username or both. Email is tried
// first.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*TokenPair, error) {
	if _, err := s.findUser(ctx, s.userRepo.GetByUsername, input.Username); err == nil {
		return nil, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if _, err := s.findUser(ctx, s.userRepo.GetByEmail, input.Email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashed,
	}

	// A concurrent registration may still win the race; the storage
	// constraint reports it as the same duplicate error.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username)

	return s.issueTokenPair(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	var user *domain.User

	if input.Email != "" {
		found, err := s.findUser(ctx, s.userRepo.GetByEmail, input.Email)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		user = found
	}

	if user == nil && input.Username != "" {
		found, err := s.findUser(ctx, s.userRepo.GetByUsername, input.Username)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		user = found
	}

	if user == nil {
		s.hasher.VerifyDummy(input.Password)
		s.log.Debug(ctx, "login rejected", "reason", "unknown account")
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		s.log.Debug(ctx, "login rejected", "reason", "password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	return s.issueTokenPair(ctx, user)
}

// RefreshAccessToken exchanges a registered, unexpired refresh token for a
// new access token. The refresh token itself is not rotated.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (*AccessToken, error) {
	claims, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		s.log.Debug(ctx, "refresh rejected", "error", err)
		return nil, ErrInvalidRefreshToken
	}

	entry, err := s.refreshTokenRepo.Resolve(ctx, auth.Fingerprint(refreshToken))
	if err != nil {
		if errors.Is(err, domain.ErrUnknownToken) {
			s.log.Debug(ctx, "refresh rejected", "reason", "not registered", "subject", claims.Subject)
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to resolve refresh token: %w", err)
	}

	if entry.Subject != claims.Subject {
		s.log.Warn(ctx, "refresh token subject mismatch", "registered", entry.Subject, "claimed", claims.Subject)
		return nil, ErrInvalidRefreshToken
	}

	access, err := s.issuer.IssueAccessToken(auth.Identity{
		Subject: entry.Subject,
		Email:   claims.Email,
		UserID:  entry.UserID,
	}, s.accessTTL)
	if err != nil {
		return nil, err
	}

	return &AccessToken{AccessToken: access.Token, TokenType: TokenTypeBearer}, nil
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.Revoke(ctx, auth.Fingerprint(refreshToken)); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// Authenticate decodes a bearer access token. Refresh tokens are rejected.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (*auth.Claims, error) {
	claims, err := s.issuer.VerifyAccessToken(bearer)
	if err != nil {
		s.log.Debug(ctx, "access token rejected", "error", err)
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// GetUser returns the public view of userID to the holder of bearer, who
// must be that same user.
func (s *AuthService) GetUser(ctx context.Context, userID int64, bearer string) (*domain.PublicUser, error) {
	claims, err := s.Authenticate(ctx, bearer)
	if err != nil {
		return nil, err
	}
	if claims.UserID != userID {
		return nil, ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	public := user.Public()
	return &public, nil
}

// UpdateEmail changes the email of userID. The new address must not belong
// to another account.
func (s *AuthService) UpdateEmail(ctx context.Context, userID int64, email string) (*domain.PublicUser, error) {
	owner, err := s.findUser(ctx, s.userRepo.GetByEmail, email)
	if err == nil && owner.ID != userID {
		return nil, domain.ErrDuplicateEmail
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	user, err := s.userRepo.UpdateEmail(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user email updated", "user_id", user.ID)

	public := user.Public()
	return &public, nil
}

func (s *AuthService) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	return s.available(ctx, s.userRepo.GetByUsername, username)
}

func (s *AuthService) CheckEmailAvailable(ctx context.Context, email string) (bool, error) {
	return s.available(ctx, s.userRepo.GetByEmail, email)
}

func (s *AuthService) available(ctx context.Context, lookup userLookup, value string) (bool, error) {
	_, err := s.findUser(ctx, lookup, value)
	if errors.Is(err, domain.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

type userLookup func(ctx context.Context, value string) (*domain.User, error)

func (s *AuthService) findUser(ctx context.Context, lookup userLookup, value string) (*domain.User, error) {
	user, err := lookup(ctx, value)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueTokenPair(ctx context.Context, user *domain.User) (*TokenPair, error) {
	identity := auth.Identity{
		Subject: user.Username,
		Email:   user.Email,
		UserID:  user.ID,
	}

	access, err := s.issuer.IssueAccessToken(identity, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := s.issuer.IssueRefreshToken(identity, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	if err := s.refreshTokenRepo.Register(ctx, &domain.RefreshToken{
		TokenHash: auth.Fingerprint(refresh.Token),
		Subject:   user.Username,
		UserID:    user.ID,
		ExpiresAt: refresh.ExpiresAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to register refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		TokenType:    TokenTypeBearer,
	}, nil
}
