package auth

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/matthewzdanevich/task-manager-app/internal/model"
)

// contextKey is an unexported type for context keys in this package.
// A package-private key type means only this package can read or write the
// authenticated user in a request context — no collisions, no shadowing.
type contextKey string

const (
	userKey  contextKey = "user"
	tokenKey contextKey = "token"
)

// UserLoader is the slice of the user store the middleware needs: resolve a
// token's subject to a full user record, session set included.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// unauthorizedBody is the one and only 401 payload. Missing header, garbage
// token, bad signature, unknown user, revoked session — all of them produce
// this exact response, so a probing client learns nothing about which stage
// rejected it.
// The trailing newline matches what json.Encoder produces for the same
// payload in the handlers, so every 401 in the system is byte-identical.
const unauthorizedBody = `{"error":"unauthorized","message":"Unauthorized"}` + "\n"

// RequireAuth enforces authentication on protected routes.
//
// The request passes through four gates, failing closed at each:
//
//  1. Extract the bearer token from the Authorization header
//  2. Verify its signature (TokenService.Verify)
//  3. Load the user named in the token's subject claim
//  4. Confirm the token is still in that user's session set
//
// Step 4 is what makes logout real: a token removed from the session set is
// rejected here even though its signature still verifies.
//
// On success the resolved user AND the raw token are stored in the request
// context. Handlers need the raw token so logout can remove exactly the
// session it arrived on.
func RequireAuth(tokens *TokenService, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w)
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil || !user.HasSession(token) {
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user from the request context.
// Returns (nil, false) if the request did not pass RequireAuth.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// TokenFromContext retrieves the raw bearer token the request arrived with.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme comparison is case-insensitive per RFC 7235.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	io.WriteString(w, unauthorizedBody)
}
