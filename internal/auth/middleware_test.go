package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matthewzdanevich/task-manager-app/internal/apperror"
	"github.com/matthewzdanevich/task-manager-app/internal/model"
)

// stubUserLoader serves a fixed set of users keyed by ID.
type stubUserLoader struct {
	users map[string]*model.User
}

func (s *stubUserLoader) GetByID(_ context.Context, id string) (*model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return user, nil
}

// failingUserLoader always errors, simulating a store outage.
type failingUserLoader struct{}

func (failingUserLoader) GetByID(context.Context, string) (*model.User, error) {
	return nil, errors.New("store unavailable")
}

// okHandler records whether it was reached and what the middleware put in the
// request context.
type okHandler struct {
	called bool
	user   *model.User
	token  string
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.user, _ = UserFromContext(r.Context())
	h.token, _ = TokenFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

// newAuthFixture issues a real token for user-1 and wires the middleware
// around an okHandler. The returned user's session set contains the token, so
// a request carrying it passes all four gates.
func newAuthFixture(t *testing.T) (mw http.Handler, inner *okHandler, token string) {
	t.Helper()

	ts := newTestTokenService(t)
	token, err := ts.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	loader := &stubUserLoader{users: map[string]*model.User{
		"user-1": {
			ID:       "user-1",
			Name:     "Test User",
			Email:    "test@example.com",
			Sessions: []string{token},
		},
	}}

	inner = &okHandler{}
	mw = RequireAuth(ts, loader)(inner)
	return mw, inner, token
}

func doAuthRequest(handler http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// =========================================================================
// REJECTION TESTS — every failure mode must produce the same 401
// =========================================================================

func TestRequireAuth_Rejections(t *testing.T) {
	mw, inner, token := newAuthFixture(t)

	// A token with a valid signature whose subject is unknown to the store
	ts := newTestTokenService(t)
	orphanToken, _ := ts.Issue("user-nobody")

	tests := []struct {
		name   string
		header string
	}{
		{"no authorization header", ""},
		{"empty bearer token", "Bearer "},
		{"wrong scheme", "Basic " + token},
		{"garbage token", "Bearer not-a-jwt"},
		{"tampered token", "Bearer " + token[:len(token)-3] + "xxx"},
		{"valid signature, unknown user", "Bearer " + orphanToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner.called = false

			rec := doAuthRequest(mw, tt.header)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
			if inner.called {
				t.Error("inner handler was reached despite rejection")
			}
			// Byte-identical body across all failure modes: a probing
			// client must not be able to tell WHY it was rejected.
			if got := rec.Body.String(); got != unauthorizedBody {
				t.Errorf("body = %q, want %q", got, unauthorizedBody)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

func TestRequireAuth_RevokedSession(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Issue("user-1")

	// Well-formed token, known user — but the token is NOT in the session
	// set. This is exactly the post-logout state.
	loader := &stubUserLoader{users: map[string]*model.User{
		"user-1": {ID: "user-1", Sessions: []string{"some-other-token"}},
	}}

	inner := &okHandler{}
	mw := RequireAuth(ts, loader)(inner)

	rec := doAuthRequest(mw, "Bearer "+token)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if got := rec.Body.String(); got != unauthorizedBody {
		t.Errorf("body = %q, want %q", got, unauthorizedBody)
	}
	if inner.called {
		t.Error("revoked session reached the inner handler")
	}
}

func TestRequireAuth_StoreFailure(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Issue("user-1")

	inner := &okHandler{}
	mw := RequireAuth(ts, failingUserLoader{})(inner)

	rec := doAuthRequest(mw, "Bearer "+token)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if inner.called {
		t.Error("inner handler was reached despite store failure")
	}
}

// =========================================================================
// SUCCESS TESTS
// =========================================================================

func TestRequireAuth_ValidToken(t *testing.T) {
	mw, inner, token := newAuthFixture(t)

	rec := doAuthRequest(mw, "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !inner.called {
		t.Fatal("inner handler was never reached")
	}
	if inner.user == nil || inner.user.ID != "user-1" {
		t.Errorf("context user = %+v, want user-1", inner.user)
	}
	if inner.token != token {
		t.Errorf("context token = %q, want the request's bearer token", inner.token)
	}
}

func TestRequireAuth_SchemeIsCaseInsensitive(t *testing.T) {
	mw, inner, token := newAuthFixture(t)

	rec := doAuthRequest(mw, "bearer "+token)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d (scheme should be case-insensitive)", rec.Code, http.StatusOK)
	}
	if !inner.called {
		t.Error("inner handler was never reached")
	}
}

func TestUserFromContext_MissingValue(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Error("UserFromContext() returned ok=true for an empty context")
	}
	if _, ok := TokenFromContext(context.Background()); ok {
		t.Error("TokenFromContext() returned ok=true for an empty context")
	}
}
