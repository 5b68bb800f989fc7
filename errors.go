package authd

import (
	"fmt"
	"net/http"
)

// Stable machine-checkable error codes surfaced to callers.
const (
	ErrCodeInvalidCreds      = "invalid_credentials"
	ErrCodeAccountInactive   = "account_inactive"
	ErrCodeUnauthenticated   = "unauthenticated"
	ErrCodeInvalidToken      = "invalid_token"
	ErrCodePrincipalNotFound = "principal_not_found"
	ErrCodeProviderExchange  = "provider_exchange_failed"
	ErrCodeEmailNotVerified  = "email_not_verified"
	ErrCodeProfileIncomplete = "profile_incomplete"
	ErrCodeProfileComplete   = "profile_already_complete"
	ErrCodeCsrfRejected      = "csrf_rejected"
	ErrCodeHashing           = "hashing_error"
	ErrCodeInternal          = "internal_error"
	ErrCodeUsernameTaken     = "username_taken"
	ErrCodeEmailExists       = "email_exists"
	ErrCodeMissingField      = "missing_field"
	ErrCodeWeakPassword      = "weak_password"
	ErrCodeUnknownProvider   = "unknown_provider"
)

// AuthError is a structured authentication error with an optional
// field reference for validation failures.
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Field   string `json:"field,omitempty"`
}

func NewAuthError(code, message, field string) *AuthError {
	return &AuthError{Code: code, Message: message, Field: field}
}

func (e *AuthError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Status maps an error code to the HTTP status returned to the caller.
// Every code in the taxonomy is a per-request 4xx; hashing failures are
// the only server-class condition.
func (e *AuthError) Status() int {
	switch e.Code {
	case ErrCodeInvalidCreds, ErrCodeUnauthenticated, ErrCodeInvalidToken, ErrCodePrincipalNotFound:
		return http.StatusUnauthorized
	case ErrCodeCsrfRejected:
		return http.StatusForbidden
	case ErrCodeUnknownProvider:
		return http.StatusNotFound
	case ErrCodeHashing, ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// AsAuthError unwraps err into an *AuthError, or wraps it in a generic
// unauthenticated error so internals never leak to the caller.
func AsAuthError(err error) *AuthError {
	if authErr, ok := err.(*AuthError); ok {
		return authErr
	}
	return NewAuthError(ErrCodeUnauthenticated, "Could not validate credentials", "")
}
