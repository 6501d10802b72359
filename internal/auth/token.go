package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrWrongTokenKind       = errors.New("wrong token kind")
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
)

// TokenKind is carried in the "typ" claim so an access token cannot stand in
// for a refresh token or the reverse.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Identity is the claim set carried by both access and refresh tokens.
type Identity struct {
	Subject string
	Email   string
	UserID  int64
}

type Claims struct {
	Email  string    `json:"email,omitempty"`
	UserID int64     `json:"id,omitempty"`
	Kind   TokenKind `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{Subject: c.Subject, Email: c.Email, UserID: c.UserID}
}

// IssuedToken is a signed token and the expiry embedded in it.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

type TokenOption func(*TokenIssuer)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(i *TokenIssuer) {
		i.now = now
	}
}

// NewTokenIssuer returns an issuer signing with secret under one of the HMAC
// algorithms HS256, HS384 or HS512.
func NewTokenIssuer(secret, algorithm string, opts ...TokenOption) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}

	var method jwt.SigningMethod
	switch algorithm {
	case "", jwt.SigningMethodHS256.Alg():
		method = jwt.SigningMethodHS256
	case jwt.SigningMethodHS384.Alg():
		method = jwt.SigningMethodHS384
	case jwt.SigningMethodHS512.Alg():
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}

	i := &TokenIssuer{
		secret: []byte(secret),
		method: method,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func (i *TokenIssuer) Algorithm() string {
	return i.method.Alg()
}

// IssueAccessToken signs a short-lived token. A non-positive ttl selects
// DefaultAccessTokenTTL.
func (i *TokenIssuer) IssueAccessToken(id Identity, ttl time.Duration) (*IssuedToken, error) {
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return i.issue(id, KindAccess, ttl)
}

// IssueRefreshToken signs a long-lived token. A non-positive ttl selects
// DefaultRefreshTokenTTL.
func (i *TokenIssuer) IssueRefreshToken(id Identity, ttl time.Duration) (*IssuedToken, error) {
	if ttl <= 0 {
		ttl = DefaultRefreshTokenTTL
	}
	return i.issue(id, KindRefresh, ttl)
}

func (i *TokenIssuer) issue(id Identity, kind TokenKind, ttl time.Duration) (*IssuedToken, error) {
	now := i.now()
	expiresAt := jwt.NewNumericDate(now.Add(ttl))

	claims := Claims{
		Email:  id.Email,
		UserID: id.UserID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			ExpiresAt: expiresAt,
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &IssuedToken{Token: signed, ExpiresAt: expiresAt.Time}, nil
}

// VerifyAndDecode checks the signature, the algorithm and the expiry of
// tokenString. Every failure wraps ErrInvalidToken; an expired token also
// wraps ErrTokenExpired.
func (i *TokenIssuer) VerifyAndDecode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// VerifyAccessToken is VerifyAndDecode restricted to access tokens.
func (i *TokenIssuer) VerifyAccessToken(tokenString string) (*Claims, error) {
	return i.verifyKind(tokenString, KindAccess)
}

// VerifyRefreshToken is VerifyAndDecode restricted to refresh tokens.
func (i *TokenIssuer) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return i.verifyKind(tokenString, KindRefresh)
}

func (i *TokenIssuer) verifyKind(tokenString string, kind TokenKind) (*Claims, error) {
	claims, err := i.VerifyAndDecode(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: %w: want %s, got %q", ErrInvalidToken, ErrWrongTokenKind, kind, claims.Kind)
	}
	return claims, nil
}

// Fingerprint returns the hex SHA-256 of a token, the key under which the
// refresh token registry stores it.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
