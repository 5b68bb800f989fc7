package authd_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	authd "github.com/gamecrate/authd"
)

func TestCsrfMintValidate(t *testing.T) {
	guard := authd.NewCSRFGuard(testConfig())

	nonce, signature, err := guard.Mint()
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if nonce == "" || signature == "" {
		t.Fatal("expected non-empty nonce and signature")
	}
	if !guard.Validate(nonce, signature) {
		t.Error("expected freshly minted pair to validate")
	}

	// Each mint produces a fresh nonce.
	nonce2, _, err := guard.Mint()
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if nonce2 == nonce {
		t.Error("expected distinct nonces across mints")
	}
}

func TestCsrfValidateRejections(t *testing.T) {
	guard := authd.NewCSRFGuard(testConfig())
	nonce, signature, err := guard.Mint()
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	otherCfg := testConfig()
	otherCfg.CSRFSecret = "another-csrf-secret-0123456789ab"
	otherGuard := authd.NewCSRFGuard(otherCfg)

	tests := []struct {
		name      string
		nonce     string
		signature string
	}{
		{"empty nonce", "", signature},
		{"empty signature", nonce, ""},
		{"signature of different nonce", "some-other-nonce", signature},
		{"signature from different secret", nonce, otherGuard.Sign(nonce)},
		{"garbage signature", nonce, "deadbeef"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if guard.Validate(tc.nonce, tc.signature) {
				t.Error("expected validation to fail")
			}
		})
	}
}

func TestCsrfProtectMiddleware(t *testing.T) {
	guard := authd.NewCSRFGuard(testConfig())
	nonce, signature, err := guard.Mint()
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	called := false
	handler := guard.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
	}{
		{"valid pair", nonce, signature, http.StatusOK},
		{"missing header", "", signature, http.StatusForbidden},
		{"missing cookie", nonce, "", http.StatusForbidden},
		{"mismatched pair", "forged-nonce", signature, http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called = false
			req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
			if tc.header != "" {
				req.Header.Set(authd.CSRFHeaderName, tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: authd.CSRFCookieName, Value: tc.cookie})
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			if called != (tc.wantStatus == http.StatusOK) {
				t.Errorf("handler called = %v, want %v", called, tc.wantStatus == http.StatusOK)
			}
		})
	}
}
