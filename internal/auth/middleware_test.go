package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// okHandler is the protected endpoint behind the middleware in these tests.
// It records whether the request made it through and what claims it saw.
type okHandler struct {
	called bool
	claims *Claims
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.claims, _ = ClaimsFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func doRequest(t *testing.T, mw func(http.Handler) http.Handler, authorization string) (*httptest.ResponseRecorder, *okHandler) {
	t.Helper()
	next := &okHandler{}
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)
	return rec, next
}

// =========================================================================
// RequireAuth TESTS
// =========================================================================

func TestRequireAuth_MissingHeader(t *testing.T) {
	ts := newTestTokenService(t)

	rec, next := doRequest(t, RequireAuth(ts), "")

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if next.called {
		t.Error("handler should not run without a token")
	}
	if !strings.Contains(rec.Body.String(), "No token, authorization denied") {
		t.Errorf("body = %s, want the no-token message", rec.Body.String())
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Generate("user-1", "user", "")
	// Valid token, wrong scheme.
	rec, next := doRequest(t, RequireAuth(ts), "Token "+token)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if next.called {
		t.Error("handler should not run with a malformed header")
	}
	if !strings.Contains(rec.Body.String(), "Invalid token format. Must be Bearer <token>") {
		t.Errorf("body = %s, want the format message", rec.Body.String())
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.GenerateWithDuration("user-1", "user", "", -time.Minute)
	rec, next := doRequest(t, RequireAuth(ts), "Bearer "+token)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 (expired tokens are just invalid)", rec.Code)
	}
	if next.called {
		t.Error("handler should not run with an expired token")
	}
	if !strings.Contains(rec.Body.String(), "Invalid token") {
		t.Errorf("body = %s, want the invalid-token message", rec.Body.String())
	}
}

func TestRequireAuth_ValidTokenReachesHandler(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Generate("user-1", "user", "Alice")
	rec, next := doRequest(t, RequireAuth(ts), "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !next.called {
		t.Fatal("handler should run for a valid token")
	}
	if next.claims == nil || next.claims.ID != "user-1" {
		t.Errorf("claims = %+v, want ID user-1 in the request context", next.claims)
	}
}

// =========================================================================
// RequireAdmin TESTS
// =========================================================================

func TestRequireAdmin_UserTokenRejected(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Generate("user-1", "user", "")
	chain := func(next http.Handler) http.Handler {
		return RequireAuth(ts)(RequireAdmin()(next))
	}
	rec, nextH := doRequest(t, chain, "Bearer "+token)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if nextH.called {
		t.Error("admin route must not run for a user token")
	}
}

func TestRequireAdmin_AdminTokenAccepted(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Generate("admin-1", "admin", "Root")
	chain := func(next http.Handler) http.Handler {
		return RequireAuth(ts)(RequireAdmin()(next))
	}
	rec, nextH := doRequest(t, chain, "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !nextH.called {
		t.Error("admin route should run for an admin token")
	}
}

func TestRequireAdmin_WithoutAuthIsForbidden(t *testing.T) {
	// RequireAdmin on its own finds no claims in the context and refuses.
	rec, nextH := doRequest(t, RequireAdmin(), "")

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if nextH.called {
		t.Error("handler should not run without claims in context")
	}
}
