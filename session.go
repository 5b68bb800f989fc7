package authd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gamecrate/authd/oauth2"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "access_token"

// TokenGrant is the token metadata returned to a caller on login and
// refresh.
type TokenGrant struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"-"`
}

// SessionManager orchestrates login, refresh, verification and logout.
// It is request-scoped and stateless between requests: the only shared
// state is the codec secret and the store handle, both read-only.
type SessionManager struct {
	Store PrincipalStore
	Codec *TokenCodec

	production bool
}

func NewSessionManager(cfg *Config, store PrincipalStore) *SessionManager {
	return &SessionManager{
		Store:      store,
		Codec:      NewTokenCodec(cfg),
		production: cfg.Production(),
	}
}

func (m *SessionManager) grant(subject string) (*TokenGrant, error) {
	tokenString, expiresAt, err := m.Codec.Issue(subject, 0)
	if err != nil {
		return nil, err
	}
	return &TokenGrant{
		AccessToken: tokenString,
		TokenType:   "bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		ExpiresAt:   expiresAt,
	}, nil
}

// PasswordLogin authenticates an identifier (username or email, matched
// case-insensitively against both fields) and plaintext password, and
// issues a session token for the principal.
func (m *SessionManager) PasswordLogin(ctx context.Context, identifier, password string) (*Principal, *TokenGrant, error) {
	principal, err := m.Store.ByIdentifier(ctx, identifier)
	if err != nil || principal == nil || !principal.HasLocalCredentials() ||
		!VerifyPassword(password, principal.PasswordHash) {
		// Absent principal and hash mismatch are indistinguishable to
		// the caller.
		return nil, nil, NewAuthError(ErrCodeInvalidCreds, "Invalid credentials", "password")
	}
	if !principal.IsActive {
		return nil, nil, NewAuthError(ErrCodeAccountInactive, "User is currently inactive", "")
	}
	grant, err := m.grant(principal.Username)
	if err != nil {
		return nil, nil, err
	}
	return principal, grant, nil
}

// Refresh renews a still-valid session token with a fresh expiry. This
// is a sliding-expiration renewal, not a re-authentication: no password
// is involved, so the endpoint exposing it must sit behind the CSRF
// guard and transport security.
func (m *SessionManager) Refresh(ctx context.Context, tokenString string) (*Principal, *TokenGrant, error) {
	if tokenString == "" {
		return nil, nil, NewAuthError(ErrCodeUnauthenticated, "Not authenticated", "")
	}
	subject, _, err := m.Codec.Verify(tokenString)
	if err != nil {
		return nil, nil, err
	}
	principal, err := m.Store.ByUsername(ctx, subject)
	if err != nil {
		return nil, nil, ErrPrincipalNotFound
	}
	if !principal.IsActive {
		return nil, nil, NewAuthError(ErrCodeAccountInactive, "User is currently inactive", "")
	}
	grant, err := m.grant(principal.Username)
	if err != nil {
		return nil, nil, err
	}
	return principal, grant, nil
}

// ResolveOAuthPrincipal maps a verified provider profile to a local
// principal, provisioning one when the external identity is new. The
// returned flag reports first-time provisioning so the caller can route
// the user to profile completion. Invoking this twice for the same
// external identity never creates duplicates; uniqueness is enforced on
// (provider, external id) by the store.
func (m *SessionManager) ResolveOAuthPrincipal(ctx context.Context, profile *oauth2.Profile) (*Principal, bool, error) {
	if !profile.EmailVerified {
		return nil, false, NewAuthError(ErrCodeEmailNotVerified, "Provider email is not verified", "email")
	}
	if profile.Subject == "" || profile.Email == "" {
		return nil, false, NewAuthError(ErrCodeProfileIncomplete, "Provider profile is missing required fields", "")
	}

	principal, err := m.Store.ByProviderID(ctx, profile.Provider, profile.Subject)
	if err == nil {
		if !principal.IsActive {
			return nil, false, NewAuthError(ErrCodeAccountInactive, "User is currently inactive", "")
		}
		return principal, false, nil
	}
	if !errors.Is(err, ErrPrincipalNotFound) {
		return nil, false, NewAuthError(ErrCodeProviderExchange, "Failed to resolve provider identity", "")
	}

	principal = &Principal{
		ID:         newPrincipalID(),
		Username:   m.usernameFor(ctx, profile.Email),
		Email:      profile.Email,
		FirstName:  profile.GivenName,
		LastName:   profile.FamilyName,
		Provider:   profile.Provider,
		ExternalID: profile.Subject,
		IsActive:   true,
		Role:       "user",
	}
	if err := m.Store.Create(ctx, principal); err != nil {
		return nil, false, NewAuthError(ErrCodeProviderExchange, "Failed to provision user", "")
	}
	slog.Info("provisioned oauth principal", "provider", profile.Provider, "username", principal.Username)
	return principal, true, nil
}

// usernameFor derives a username for an OAuth-provisioned principal from
// the email local part, suffixing it when already taken.
func (m *SessionManager) usernameFor(ctx context.Context, email string) string {
	base := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	if _, err := m.Store.ByUsername(ctx, base); err != nil {
		return base
	}
	return base + "-" + uuid.NewString()[:8]
}

// IssueSession issues a token grant for an already-resolved principal.
func (m *SessionManager) IssueSession(principal *Principal) (*TokenGrant, error) {
	return m.grant(principal.Username)
}

// ExtractToken pulls the session token from the request: an
// Authorization Bearer header takes precedence over the session cookie.
// An empty result is not an error; routes that allow anonymous access
// treat it as the Anonymous state.
func ExtractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return token
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// ResolvePrincipal resolves the requesting principal, returning
// (nil, nil) when no token is present at all.
func (m *SessionManager) ResolvePrincipal(ctx context.Context, r *http.Request) (*Principal, error) {
	tokenString := ExtractToken(r)
	if tokenString == "" {
		return nil, nil
	}
	subject, _, err := m.Codec.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	principal, err := m.Store.ByUsername(ctx, subject)
	if err != nil {
		return nil, ErrPrincipalNotFound
	}
	return principal, nil
}

// SetSessionCookie issues the session cookie with attributes matching
// the grant lifetime and the deployment environment.
func (m *SessionManager) SetSessionCookie(w http.ResponseWriter, grant *TokenGrant) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    grant.AccessToken,
		Path:     "/",
		MaxAge:   int(grant.ExpiresIn),
		Expires:  grant.ExpiresAt,
		HttpOnly: true,
		Secure:   m.production,
		SameSite: m.sameSite(),
	})
}

// ClearSessionCookie expires the session cookie with matching path and
// flags. Clearing an absent cookie is harmless, which keeps logout
// idempotent.
func (m *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.production,
		SameSite: m.sameSite(),
	})
}

func (m *SessionManager) sameSite() http.SameSite {
	if m.production {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
