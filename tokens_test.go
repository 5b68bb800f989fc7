package authd_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authd "github.com/gamecrate/authd"
)

const testSecret = "test-signing-secret-0123456789abcdef"

func testConfig() *authd.Config {
	return &authd.Config{
		Environment: "test",
		JWTSecret:   testSecret,
		JWTAlg:      "HS256",
		TokenTTL:    time.Hour,
		CSRFSecret:  "test-csrf-secret-0123456789abcdef",
		FrontendURL: "http://frontend.test",
	}
}

// signRaw produces a token with arbitrary claims using the test secret,
// bypassing the codec. Used to build expired and malformed inputs.
func signRaw(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return tokenString
}

func TestIssueAndVerify(t *testing.T) {
	codec := authd.NewTokenCodec(testConfig())

	tokenString, expiresAt, err := codec.Issue("alice", 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if remaining := time.Until(expiresAt); remaining < 59*time.Minute || remaining > time.Hour {
		t.Errorf("expected expiry ~1h out, got %v", remaining)
	}

	subject, verifiedExpiry, err := codec.Verify(tokenString)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if subject != "alice" {
		t.Errorf("expected subject alice, got %q", subject)
	}
	if !verifiedExpiry.Equal(expiresAt.Truncate(time.Second)) {
		t.Errorf("expected expiry %v, got %v", expiresAt.Truncate(time.Second), verifiedExpiry)
	}
}

func TestIssueExplicitTTL(t *testing.T) {
	codec := authd.NewTokenCodec(testConfig())

	_, expiresAt, err := codec.Issue("alice", 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if remaining := time.Until(expiresAt); remaining > 10*time.Minute || remaining < 9*time.Minute {
		t.Errorf("expected expiry ~10m out, got %v", remaining)
	}
}

func TestVerifyRejections(t *testing.T) {
	codec := authd.NewTokenCodec(testConfig())
	valid, _, err := codec.Issue("alice", 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip one byte of the signature segment.
	parts := strings.Split(valid, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	tests := []struct {
		name  string
		token string
	}{
		{
			name: "expired token with valid signature",
			token: signRaw(t, testSecret, jwt.MapClaims{
				"sub": "alice",
				"iat": time.Now().Add(-2 * time.Hour).Unix(),
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			name:  "tampered signature",
			token: tampered,
		},
		{
			name:  "malformed token",
			token: "not-a-token",
		},
		{
			name:  "empty token",
			token: "",
		},
		{
			name: "wrong secret",
			token: signRaw(t, "some-other-secret", jwt.MapClaims{
				"sub": "alice",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			name: "missing subject",
			token: signRaw(t, testSecret, jwt.MapClaims{
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := codec.Verify(tc.token); err == nil {
				t.Error("expected verification to fail")
			}
		})
	}
}

func TestVerifyRejectsForeignAlgorithm(t *testing.T) {
	codec := authd.NewTokenCodec(testConfig())

	// Same secret, different HMAC variant than the codec is configured
	// with; must be rejected by the allowed-methods check.
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	if _, _, err := codec.Verify(tokenString); err == nil {
		t.Error("expected verification to fail for HS512 token")
	}
}
