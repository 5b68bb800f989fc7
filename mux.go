package authd

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gamecrate/authd/oauth2"
)

// Auth is the HTTP surface of the authentication subsystem. It mounts
// every identity route under /auth and owns nothing but orchestration;
// token, CSRF and provider logic live in their own components.
type Auth struct {
	Session   *SessionManager
	CSRF      *CSRFGuard
	Providers map[string]oauth2.Provider

	frontendURL string
	router      *mux.Router
}

// New wires the session manager, CSRF guard and provider set into a
// ready-to-mount handler.
func New(cfg *Config, store PrincipalStore, providers ...oauth2.Provider) *Auth {
	a := &Auth{
		Session:     NewSessionManager(cfg, store),
		CSRF:        NewCSRFGuard(cfg),
		Providers:   make(map[string]oauth2.Provider),
		frontendURL: cfg.FrontendURL,
	}
	for _, p := range providers {
		a.Providers[p.Name()] = p
	}
	a.setupRoutes()
	return a
}

func (a *Auth) setupRoutes() {
	r := mux.NewRouter()
	r.HandleFunc("/auth/token", a.handlePasswordLogin).Methods(http.MethodPost)
	r.Handle("/auth/refresh", a.CSRF.Protect(http.HandlerFunc(a.handleRefresh))).Methods(http.MethodPost)
	r.HandleFunc("/auth/verify", a.handleVerify).Methods(http.MethodGet)
	r.HandleFunc("/auth/logout", a.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/auth/csrf", a.handleCsrf).Methods(http.MethodGet)
	r.HandleFunc("/auth/register", a.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/oauth/{provider}", a.handleOAuthInitiate).Methods(http.MethodGet)
	r.HandleFunc("/auth/oauth/{provider}/callback", a.handleOAuthCallback).Methods(http.MethodGet)
	r.Handle("/auth/me", a.Session.RequirePrincipal(http.HandlerFunc(a.handleMe))).Methods(http.MethodGet)
	r.Handle("/auth/me/complete-profile", a.Session.RequirePrincipal(http.HandlerFunc(a.handleCompleteProfile))).Methods(http.MethodPost)
	a.router = r
}

// Handler returns the mountable HTTP handler for all /auth routes.
func (a *Auth) Handler() http.Handler {
	return a.router
}

// handlePasswordLogin implements POST /auth/token (form-encoded
// username + password).
func (a *Auth) handlePasswordLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, NewAuthError(ErrCodeMissingField, "Error parsing form", ""))
		return
	}
	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		writeError(w, NewAuthError(ErrCodeMissingField, "Username and password required", "username"))
		return
	}

	principal, grant, err := a.Session.PasswordLogin(r.Context(), username, password)
	if err != nil {
		writeError(w, AsAuthError(err))
		return
	}

	nonce := a.mintCsrf(w)
	if nonce == "" {
		writeError(w, NewAuthError(ErrCodeInternal, "Failed to generate CSRF token", ""))
		return
	}
	a.Session.SetSessionCookie(w, grant)
	slog.Info("password login", "username", principal.Username)
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": grant.AccessToken,
		"token_type":   grant.TokenType,
		"expires_in":   grant.ExpiresIn,
		"csrf_token":   nonce,
	})
}

// handleRefresh implements POST /auth/refresh: a sliding renewal of the
// cookie-carried session. The CSRF guard has already run.
func (a *Auth) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var tokenString string
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		tokenString = cookie.Value
	}

	_, grant, err := a.Session.Refresh(r.Context(), tokenString)
	if err != nil {
		writeError(w, AsAuthError(err))
		return
	}

	a.Session.SetSessionCookie(w, grant)
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": grant.AccessToken,
		"token_type":   grant.TokenType,
		"expires_in":   grant.ExpiresIn,
	})
}

// handleVerify implements GET /auth/verify: token introspection without
// mutation.
func (a *Auth) handleVerify(w http.ResponseWriter, r *http.Request) {
	tokenString := ExtractToken(r)
	if tokenString == "" {
		writeError(w, NewAuthError(ErrCodeUnauthenticated, "Not authenticated", ""))
		return
	}
	subject, expiresAt, err := a.Session.Codec.Verify(tokenString)
	if err != nil {
		writeError(w, AsAuthError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":      true,
		"username":   subject,
		"expires_at": expiresAt,
	})
}

// handleLogout implements POST /auth/logout. Clearing cookies that were
// never set is harmless, so logout always succeeds.
func (a *Auth) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.Session.ClearSessionCookie(w)
	a.CSRF.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Successfully logged out",
	})
}

// handleCsrf implements GET /auth/csrf: mints a nonce/signature pair,
// stores the signature in the cookie and hands the nonce to the caller.
func (a *Auth) handleCsrf(w http.ResponseWriter, r *http.Request) {
	nonce := a.mintCsrf(w)
	if nonce == "" {
		writeError(w, NewAuthError(ErrCodeInternal, "Failed to generate CSRF token", ""))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"csrf_token": nonce,
	})
}

func (a *Auth) mintCsrf(w http.ResponseWriter) string {
	nonce, signature, err := a.CSRF.Mint()
	if err != nil {
		slog.Error("csrf mint failed", "error", err)
		return ""
	}
	a.CSRF.SetCookie(w, signature)
	return nonce
}

// handleOAuthInitiate implements GET /auth/oauth/{provider}: redirect to
// the provider consent screen.
func (a *Auth) handleOAuthInitiate(w http.ResponseWriter, r *http.Request) {
	provider, ok := a.Providers[mux.Vars(r)["provider"]]
	if !ok {
		writeError(w, NewAuthError(ErrCodeUnknownProvider, "Unknown provider", "provider"))
		return
	}
	http.Redirect(w, r, provider.AuthCodeURL(), http.StatusFound)
}

// handleOAuthCallback implements GET /auth/oauth/{provider}/callback:
// code exchange, profile validation, principal resolution and session
// issuance. First-time provisioning redirects to profile completion.
func (a *Auth) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider, ok := a.Providers[mux.Vars(r)["provider"]]
	if !ok {
		writeError(w, NewAuthError(ErrCodeUnknownProvider, "Unknown provider", "provider"))
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, NewAuthError(ErrCodeMissingField, "Missing authorization code", "code"))
		return
	}

	profile, err := provider.FetchProfile(r.Context(), code)
	if err != nil {
		slog.Warn("provider exchange failed", "provider", provider.Name(), "error", err)
		writeError(w, NewAuthError(ErrCodeProviderExchange, "Provider exchange failed", ""))
		return
	}

	principal, created, err := a.Session.ResolveOAuthPrincipal(r.Context(), profile)
	if err != nil {
		writeError(w, AsAuthError(err))
		return
	}

	grant, err := a.Session.IssueSession(principal)
	if err != nil {
		writeError(w, AsAuthError(err))
		return
	}
	if a.mintCsrf(w) == "" {
		writeError(w, NewAuthError(ErrCodeInternal, "Failed to generate CSRF token", ""))
		return
	}
	a.Session.SetSessionCookie(w, grant)

	target := a.frontendURL
	if created {
		target = a.frontendURL + "/complete-profile"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

type registerRequest struct {
	FirstName       string `json:"firstname"`
	LastName        string `json:"lastname"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	CountryOfOrigin string `json:"country_of_origin"`
}

// handleRegister implements POST /auth/register for local signups.
func (a *Auth) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, NewAuthError(ErrCodeMissingField, "Invalid request body", ""))
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, NewAuthError(ErrCodeMissingField, "Username, email and password required", ""))
		return
	}
	if len(req.Password) < 8 {
		writeError(w, NewAuthError(ErrCodeWeakPassword, "Password must be at least 8 characters", "password"))
		return
	}

	ctx := r.Context()
	if _, err := a.Session.Store.ByUsername(ctx, req.Username); err == nil {
		writeError(w, NewAuthError(ErrCodeUsernameTaken, "Username taken", "username"))
		return
	}
	if _, err := a.Session.Store.ByIdentifier(ctx, req.Email); err == nil {
		writeError(w, NewAuthError(ErrCodeEmailExists, "User already registered with this email", "email"))
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		writeError(w, AsAuthError(err))
		return
	}

	principal := &Principal{
		ID:              newPrincipalID(),
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PasswordHash:    hash,
		IsActive:        true,
		Role:            "user",
		CountryOfOrigin: req.CountryOfOrigin,
	}
	if err := a.Session.Store.Create(ctx, principal); err != nil {
		slog.Warn("registration failed", "username", req.Username, "error", err)
		writeError(w, NewAuthError(ErrCodeEmailExists, "Registration failed", ""))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"username":          principal.Username,
		"country_of_origin": principal.CountryOfOrigin,
	})
}

type completeProfileRequest struct {
	DateOfBirth     string `json:"date_of_birth"`
	CountryOfOrigin string `json:"country_of_origin"`
}

// handleCompleteProfile implements POST /auth/me/complete-profile, the
// follow-up step for OAuth-provisioned principals. A profile can only be
// completed once.
func (a *Auth) handleCompleteProfile(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	var req completeProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, NewAuthError(ErrCodeMissingField, "Invalid request body", ""))
		return
	}
	if req.DateOfBirth == "" || req.CountryOfOrigin == "" {
		writeError(w, NewAuthError(ErrCodeMissingField, "Date of birth and country of origin required", ""))
		return
	}
	if principal.ProfileComplete() {
		writeError(w, NewAuthError(ErrCodeProfileComplete, "Profile already complete", ""))
		return
	}

	dateOfBirth, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		if dateOfBirth, err = time.Parse(time.RFC3339, req.DateOfBirth); err != nil {
			writeError(w, NewAuthError(ErrCodeMissingField, "Invalid date of birth", "date_of_birth"))
			return
		}
	}

	principal.DateOfBirth = &dateOfBirth
	principal.CountryOfOrigin = req.CountryOfOrigin
	if err := a.Session.Store.Save(r.Context(), principal); err != nil {
		slog.Warn("profile completion failed", "username", principal.Username, "error", err)
		writeError(w, NewAuthError(ErrCodeInternal, "Failed to save profile", ""))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"firstname":         principal.FirstName,
		"lastname":          principal.LastName,
		"email":             principal.Email,
		"username":          principal.Username,
		"country_of_origin": principal.CountryOfOrigin,
	})
}

// handleMe implements GET /auth/me for the resolved active principal.
func (a *Auth) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"firstname":         principal.FirstName,
		"lastname":          principal.LastName,
		"email":             principal.Email,
		"username":          principal.Username,
		"country_of_origin": principal.CountryOfOrigin,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err *AuthError) {
	writeJSON(w, err.Status(), err)
}
