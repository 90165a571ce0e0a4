package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/taskwise/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "claims", c), ANY package that knows the string
// "claims" can read or shadow your value. A package-private key type means
// only this package can read or write claims in the context.
type contextKey string

const claimsKey contextKey = "claims"

// RequireAuth enforces the bearer-token contract on protected routes:
//
//	Authorization: Bearer <token>
//
// Missing header, a malformed prefix, and an invalid or expired token all
// answer 403 — that status (not 401) is the contract the frontend was built
// against, so we keep it. On success the decoded claims are stored in the
// request context for downstream handlers.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				forbid(w, "No token, authorization denied")
				return
			}

			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				forbid(w, "Invalid token format. Must be Bearer <token>")
				return
			}

			claims, err := tokens.Validate(strings.TrimPrefix(header, prefix))
			if err != nil {
				forbid(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects any request whose token does not carry the admin
// role. It must run after RequireAuth — the claims are read from the
// context, so the signature has already been verified by the time the role
// is checked.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || claims.Role != model.RoleAdmin {
				forbid(w, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext retrieves the authenticated caller's claims from the
// request context.
//
// Returns (nil, false) if the request never passed RequireAuth.
//
// Usage in handlers:
//
//	claims, ok := auth.ClaimsFromContext(r.Context())
//	if !ok {
//	    // unauthenticated — should not happen on a protected route
//	}
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}

func forbid(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"error":"forbidden","message":"` + message + `"}`))
}
