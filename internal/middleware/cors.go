package middleware

import "net/http"

// CORS returns a middleware that allows the configured frontend origin to
// call the API from a browser, including credentialed requests.
//
// WHY NOT "*"?
// Access-Control-Allow-Credentials is incompatible with a wildcard origin,
// and the frontend sends the JWT on every request, so the origin must be
// echoed explicitly.
func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" && origin == allowedOrigin {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				// Vary tells caches the response depends on the Origin header.
				w.Header().Add("Vary", "Origin")
			}

			// Preflight requests don't need to reach the router.
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
