package authd

import (
	"context"
	"net/http"
)

type principalContextKey struct{}

// PrincipalFromContext returns the principal attached by ExtractPrincipal
// or RequirePrincipal, or nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

func withPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalContextKey{}, p))
}

/**
 * ExtractPrincipal resolves the requesting principal and makes it
 * available to downstream handlers. Resolution is best-effort: a missing
 * token, an invalid token and an unknown subject all leave the request
 * anonymous rather than denying it. Routes that must reject instead use
 * RequirePrincipal.
 */
func (m *SessionManager) ExtractPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.ResolvePrincipal(r.Context(), r)
		if err != nil || principal == nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, withPrincipal(r, principal))
	})
}

/**
 * RequirePrincipal enforces an authenticated, active principal. Missing
 * tokens map to unauthenticated, inactive accounts to account_inactive.
 */
func (m *SessionManager) RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.ResolvePrincipal(r.Context(), r)
		if err != nil {
			writeError(w, AsAuthError(err))
			return
		}
		if principal == nil {
			writeError(w, NewAuthError(ErrCodeUnauthenticated, "Not authenticated", ""))
			return
		}
		if !principal.IsActive {
			writeError(w, NewAuthError(ErrCodeAccountInactive, "User is currently inactive", ""))
			return
		}
		next.ServeHTTP(w, withPrincipal(r, principal))
	})
}
