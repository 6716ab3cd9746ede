// Password hashing and the password acceptance policy.
//
// WHY BCRYPT?
// bcrypt is deliberately slow, which is the point: a leaked hash table is
// expensive to brute-force. It also generates and embeds a random salt per
// hash, so two users with the same password get different stored values and
// no separate salt column is needed.
//
// NEVER store passwords in plain text or with fast hashes (MD5, SHA-256) —
// those fall to GPU rigs in minutes. bcrypt with cost 12 takes ~250ms per
// attempt: negligible for a login, brutal for an attacker.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/matthewzdanevich/task-manager-app/internal/apperror"
)

// defaultCost is the bcrypt work factor.
// Tune so hashing takes ~200-300ms on production hardware.
const defaultCost = 12

// MinPasswordLength is the policy minimum, checked against the plaintext
// before hashing.
const MinPasswordLength = 8

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so the cost can be injected — tests use
// the minimum cost to avoid paying ~250ms per hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a reduced bcrypt
// cost. Use bcrypt.MinCost in tests; never in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// ValidatePassword enforces the acceptance policy on a candidate plaintext:
// at least MinPasswordLength characters, and it must not contain the literal
// substring "password" in any casing. Runs before hashing, so a rejected
// password never reaches bcrypt or the database.
func ValidatePassword(plaintext string) error {
	if len(plaintext) < MinPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if strings.Contains(strings.ToLower(plaintext), "password") {
		return apperror.ValidationFailed("password",
			`password must not contain the word "password"`)
	}
	return nil
}

// Hash hashes the given plaintext password with bcrypt.
//
// The output is self-contained (version, cost, salt, digest) and is stored
// directly as the user's credential hash.
//
// Returns an error for plaintexts over 72 bytes — bcrypt silently truncates
// beyond that, so we reject explicitly instead.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
// Returns nil on a match. bcrypt's comparison is constant-time, so response
// timing leaks nothing about how close the guess was.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
