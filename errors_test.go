package authd_test

import (
	"errors"
	"net/http"
	"testing"

	authd "github.com/gamecrate/authd"
)

func TestAuthErrorStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{authd.ErrCodeInvalidCreds, http.StatusUnauthorized},
		{authd.ErrCodeUnauthenticated, http.StatusUnauthorized},
		{authd.ErrCodeInvalidToken, http.StatusUnauthorized},
		{authd.ErrCodePrincipalNotFound, http.StatusUnauthorized},
		{authd.ErrCodeCsrfRejected, http.StatusForbidden},
		{authd.ErrCodeUnknownProvider, http.StatusNotFound},
		{authd.ErrCodeHashing, http.StatusInternalServerError},
		{authd.ErrCodeInternal, http.StatusInternalServerError},
		{authd.ErrCodeAccountInactive, http.StatusBadRequest},
		{authd.ErrCodeProfileComplete, http.StatusBadRequest},
		{authd.ErrCodeWeakPassword, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			err := authd.NewAuthError(tc.code, "msg", "")
			if got := err.Status(); got != tc.want {
				t.Errorf("expected status %d, got %d", tc.want, got)
			}
		})
	}
}

func TestAsAuthError(t *testing.T) {
	t.Run("passes auth errors through", func(t *testing.T) {
		original := authd.NewAuthError(authd.ErrCodeAccountInactive, "User is currently inactive", "")
		if got := authd.AsAuthError(original); got != original {
			t.Errorf("expected the same error back, got %v", got)
		}
	})

	t.Run("wraps unknown errors without leaking them", func(t *testing.T) {
		got := authd.AsAuthError(errors.New("pq: connection refused"))
		if got.Code != authd.ErrCodeUnauthenticated {
			t.Errorf("expected code %q, got %q", authd.ErrCodeUnauthenticated, got.Code)
		}
		if got.Message != "Could not validate credentials" {
			t.Errorf("internal detail leaked: %q", got.Message)
		}
	})
}
