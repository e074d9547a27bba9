package httpx

import "net/http"

// RequireAnyRole the caller must hold one of the listed roles. Must run
// after AuthnMiddleware in the chain.
func RequireAnyRole(allowed ...string) Middleware {
	want := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		want[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := want[roleFromContext(r.Context())]; !ok {
				WriteError(w, http.StatusForbidden,
					"You do not have permission to perform this action", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
