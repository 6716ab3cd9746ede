// Package auth provides session-token signing, credential hashing, and the
// authentication middleware for the task manager API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. User registers or logs in with email + password
// 2. Server issues a signed JWT and appends it to the user's session set in the DB
// 3. Client sends it back on every request as "Authorization: Bearer <token>"
// 4. Middleware verifies the signature, loads the user, and — critically —
//    confirms the token is still in the user's session set
// 5. Logout deletes the token from the session set, which kills it for good
//
// WHY A SESSION SET ON TOP OF JWT?
// A plain JWT is stateless: once signed, the server cannot take it back, and
// "logout" degrades into asking the client nicely to forget it. Persisting
// each issued token against the user gives us real revocation — logout and
// logout-all remove rows, and the middleware treats a signature-valid token
// that is no longer stored as unauthorized. Verify alone never consults the
// session set; that check belongs to the gate (middleware.go).
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const issuer = "task-manager-app"

// TokenService signs and verifies session tokens.
//
// It holds the HMAC secret key used for both operations. The secret arrives
// via the constructor (from config), never from ambient process state.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET_KEY=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims embeds jwt.RegisteredClaims; the user ID travels in "sub".
type claims struct {
	jwt.RegisteredClaims
}

// Issue creates and signs a new session token for the given userID.
//
// The token carries no expiry claim: its lifetime is bounded by the session
// set instead. A token lives exactly as long as its row in the sessions
// table, so logout is authoritative rather than advisory. The "jti" claim is
// a fresh xid, which keeps tokens from two logins in the same second distinct
// (IssuedAt alone has one-second resolution).
func (s *TokenService) Issue(userID string) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
			ID:       xid.New().String(),
			Issuer:   issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses a token string, checks its signature, and returns the userID
// from the "sub" claim.
//
// CHECKS PERFORMED:
//   - Signature is valid for our secret (tampering fails)
//   - Algorithm is HS256 (pinned via WithValidMethods — prevents algorithm
//     confusion attacks where an attacker submits an unsigned "none" token)
//   - Issuer matches (tokens minted by other apps with the same library fail)
//
// Verify does NOT check revocation. A verified token may still be dead —
// the caller must confirm it against the user's session set.
func (s *TokenService) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
