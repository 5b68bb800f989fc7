package authd

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the fixed claim set carried by session tokens. Only
// subject, issued-at and expiry are ever encoded; nothing else from the
// caller can leak into the payload.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies compact session tokens with a
// process-wide symmetric secret.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	issuer string
}

func NewTokenCodec(cfg *Config) *TokenCodec {
	method := jwt.SigningMethodHS256
	switch cfg.JWTAlg {
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	}
	return &TokenCodec{
		secret: []byte(cfg.JWTSecret),
		method: method,
		ttl:    cfg.TokenTTL,
		issuer: "authd",
	}
}

// TTL returns the configured default token lifetime.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token asserting subject until now+ttl. A non-positive
// ttl uses the configured default.
func (c *TokenCodec) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	tokenString, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, NewAuthError(ErrCodeInternal, "Failed to sign token", "")
	}
	return tokenString, expiresAt, nil
}

// Verify checks signature and expiry and returns the asserted subject.
// The failure kind (malformed, expired, bad signature) is logged for
// diagnostics but the caller always sees the same invalid_token denial.
func (c *TokenCodec) Verify(tokenString string) (string, time.Time, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{c.method.Alg()}))
	if err != nil {
		slog.Warn("token verification failed", "kind", classifyTokenError(err))
		return "", time.Time{}, NewAuthError(ErrCodeInvalidToken, "Could not validate credentials", "")
	}
	if !token.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		slog.Warn("token verification failed", "kind", "missing_claims")
		return "", time.Time{}, NewAuthError(ErrCodeInvalidToken, "Could not validate credentials", "")
	}
	return claims.Subject, claims.ExpiresAt.Time, nil
}

func classifyTokenError(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad_signature"
	default:
		return "unknown"
	}
}
