package auth

import (
	"crypto/subtle"
	"fmt"

	"github.com/dmitrijs2005/roleboard/internal/server/config"
	"golang.org/x/crypto/bcrypt"
)

// CredentialChecker turns a secret into its stored form and compares a
// candidate against a stored value.
type CredentialChecker interface {
	Hash(secret string) (string, error)
	Match(stored, candidate string) bool
}

// NewCredentialChecker returns the checker for a configured password scheme.
func NewCredentialChecker(scheme string) (CredentialChecker, error) {
	switch scheme {
	case "", config.PasswordSchemePlain:
		return PlainChecker{}, nil
	case config.PasswordSchemeBcrypt:
		return BcryptChecker{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// PlainChecker stores secrets as-is and compares them by equality.
// It reproduces the legacy behavior and must not be used for real accounts.
type PlainChecker struct{}

func (PlainChecker) Hash(secret string) (string, error) { return secret, nil }

func (PlainChecker) Match(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// BcryptChecker stores bcrypt hashes.
type BcryptChecker struct {
	Cost int
}

func (c BcryptChecker) Hash(secret string) (string, error) {
	cost := c.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (BcryptChecker) Match(stored, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}
