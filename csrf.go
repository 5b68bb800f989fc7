package authd

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"
)

const (
	// CSRFCookieName carries the HMAC signature. It is deliberately not
	// HttpOnly: the double-submit pattern needs client script to echo the
	// nonce back in the header, while a cross-site attacker can neither
	// read the cookie nor forge the signature.
	CSRFCookieName = "csrf_token"

	// CSRFHeaderName carries the nonce on mutating requests.
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRFGuard implements the double-submit-cookie defense: a random nonce
// goes to the caller, its HMAC goes into a cookie, and a mutating request
// is accepted only when the two halves still match.
type CSRFGuard struct {
	secret     []byte
	production bool
	maxAge     time.Duration
}

func NewCSRFGuard(cfg *Config) *CSRFGuard {
	return &CSRFGuard{
		secret:     []byte(cfg.CSRFSecret),
		production: cfg.Production(),
		maxAge:     cfg.TokenTTL,
	}
}

// Mint generates a fresh nonce and its signature.
func (g *CSRFGuard) Mint() (nonce, signature string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", NewAuthError(ErrCodeInternal, "Failed to generate CSRF token", "")
	}
	nonce = base64.RawURLEncoding.EncodeToString(b)
	return nonce, g.Sign(nonce), nil
}

// Sign computes the HMAC-SHA256 signature of a nonce.
func (g *CSRFGuard) Sign(nonce string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(nonce))
	return hex.EncodeToString(mac.Sum(nil))
}

// Validate recomputes the signature for the header-supplied nonce and
// compares it in constant time against the cookie-supplied signature.
func (g *CSRFGuard) Validate(nonce, signature string) bool {
	if nonce == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(g.Sign(nonce)), []byte(signature))
}

// SetCookie issues the signature cookie for a freshly minted nonce.
func (g *CSRFGuard) SetCookie(w http.ResponseWriter, signature string) {
	sameSite := http.SameSiteLaxMode
	if g.production {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    signature,
		Path:     "/",
		MaxAge:   int(g.maxAge.Seconds()),
		HttpOnly: false,
		Secure:   g.production,
		SameSite: sameSite,
	})
}

// ClearCookie removes the signature cookie (logout).
func (g *CSRFGuard) ClearCookie(w http.ResponseWriter) {
	sameSite := http.SameSiteLaxMode
	if g.production {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: false,
		Secure:   g.production,
		SameSite: sameSite,
	})
}

// Protect gates a mutating, cookie-authenticated handler. The three
// failure shapes (missing header, missing cookie, mismatch) are kept
// apart in the logs but collapse into one csrf_rejected denial.
func (g *CSRFGuard) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce := r.Header.Get(CSRFHeaderName)
		if nonce == "" {
			slog.Warn("csrf rejected", "reason", "header_missing", "path", r.URL.Path)
			writeError(w, NewAuthError(ErrCodeCsrfRejected, "CSRF token missing in header", ""))
			return
		}
		cookie, err := r.Cookie(CSRFCookieName)
		if err != nil || cookie.Value == "" {
			slog.Warn("csrf rejected", "reason", "cookie_missing", "path", r.URL.Path)
			writeError(w, NewAuthError(ErrCodeCsrfRejected, "CSRF token missing in cookie", ""))
			return
		}
		if !g.Validate(nonce, cookie.Value) {
			slog.Warn("csrf rejected", "reason", "mismatch", "path", r.URL.Path)
			writeError(w, NewAuthError(ErrCodeCsrfRejected, "Invalid CSRF token", ""))
			return
		}
		next.ServeHTTP(w, r)
	})
}
