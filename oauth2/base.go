// Package oauth2 implements the client half of the authorization-code
// exchange against external identity providers. Providers return
// normalized identity facts only; principal resolution and session
// issuance stay with the caller.
package oauth2

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Profile is the normalized identity a provider asserts for a user.
type Profile struct {
	Provider      string `json:"provider"`
	Subject       string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// Provider performs the code -> access token -> profile exchange for one
// external identity provider.
type Provider interface {
	// Name returns the provider identifier, e.g. "google".
	Name() string

	// AuthCodeURL builds the provider's authorization URL. No local
	// state is created; the flow is stateless on our side.
	AuthCodeURL() string

	// FetchProfile exchanges the authorization code for an access token
	// and fetches the provider profile with it. Both calls are
	// server-to-server, carry the context deadline, and are never
	// retried; the browser restarts the flow on failure.
	FetchProfile(ctx context.Context, code string) (*Profile, error)
}

// exchangeTimeout bounds each provider round-trip so an unresponsive
// provider cannot pin request handlers.
const exchangeTimeout = 10 * time.Second

// withHTTPClient installs a timeout-bounded client for the x/oauth2
// transport and caps the context deadline.
func withHTTPClient(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: exchangeTimeout})
	return context.WithTimeout(ctx, exchangeTimeout)
}
