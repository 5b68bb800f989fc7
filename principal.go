package authd

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Principal is an authenticated identity, either locally registered or
// provisioned through an OAuth provider. A principal always has a
// password hash, a (provider, external id) pair, or both.
type Principal struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`

	// Empty for OAuth-only principals.
	PasswordHash string `json:"-"`

	// Set when the principal was provisioned by an external provider.
	// ExternalID is unique per provider.
	Provider   string `json:"oauth_provider,omitempty"`
	ExternalID string `json:"-"`

	IsActive bool   `json:"is_active"`
	Role     string `json:"role"`

	// Profile-completion fields, unset for freshly provisioned OAuth
	// principals until the user completes their profile.
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	CountryOfOrigin string     `json:"country_of_origin,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLocalCredentials reports whether the principal can log in with a
// password.
func (p *Principal) HasLocalCredentials() bool {
	return p.PasswordHash != ""
}

// ProfileComplete reports whether the post-provisioning fields are set.
func (p *Principal) ProfileComplete() bool {
	return p.DateOfBirth != nil && p.CountryOfOrigin != ""
}

// PrincipalStore is the credential store adapter. Implementations own
// Principal persistence and its transaction boundaries; the session
// manager only passes opaque values through.
type PrincipalStore interface {
	// ByIdentifier looks a principal up by username OR email with
	// case-insensitive equality against both fields.
	ByIdentifier(ctx context.Context, identifier string) (*Principal, error)

	// ByUsername resolves a token subject back to its principal.
	ByUsername(ctx context.Context, username string) (*Principal, error)

	// ByProviderID looks a principal up by external provider identity.
	ByProviderID(ctx context.Context, provider, externalID string) (*Principal, error)

	// Create persists a new principal. Uniqueness of username, email and
	// (provider, external id) is enforced here.
	Create(ctx context.Context, p *Principal) error

	// Save updates an existing principal.
	Save(ctx context.Context, p *Principal) error
}

// ErrPrincipalNotFound is the sentinel stores return when no principal
// matches a lookup.
var ErrPrincipalNotFound = NewAuthError(ErrCodePrincipalNotFound, "User does not exist", "")

func newPrincipalID() string {
	return uuid.NewString()
}
