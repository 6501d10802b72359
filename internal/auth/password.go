// Package auth holds the credential and token primitives used by the
// authentication service: bcrypt password hashing and signed JWTs.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyPassword is hashed once per hasher and compared against when a login
// names an account that does not exist.
const dummyPassword = "snake-game-dummy-password"

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

type PasswordHasher struct {
	cost  int
	dummy []byte
}

// NewPasswordHasher returns a hasher using the given bcrypt cost. A cost of
// zero selects bcrypt.DefaultCost.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash dummy password: %w", err)
	}

	return &PasswordHasher{cost: cost, dummy: dummy}, nil
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. The cost and salt are read
// from hash itself; a malformed hash never matches.
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyDummy spends the same work as Verify against a real account and
// always reports false.
func (h *PasswordHasher) VerifyDummy(password string) bool {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
	return false
}

func (h *PasswordHasher) Cost() int {
	return h.cost
}
