// Package mem provides an in-memory PrincipalStore for tests and demos.
package mem

import (
	"context"
	"strings"
	"sync"
	"time"

	authd "github.com/gamecrate/authd"
)

// PrincipalStore keeps principals in a map guarded by a RWMutex. It
// enforces the same uniqueness invariants as the database-backed store.
type PrincipalStore struct {
	mu         sync.RWMutex
	principals map[string]*authd.Principal // keyed by ID
}

func NewPrincipalStore() *PrincipalStore {
	return &PrincipalStore{principals: make(map[string]*authd.Principal)}
}

func clone(p *authd.Principal) *authd.Principal {
	cp := *p
	return &cp
}

func (s *PrincipalStore) ByIdentifier(ctx context.Context, identifier string) (*authd.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.principals {
		if strings.EqualFold(p.Username, identifier) || strings.EqualFold(p.Email, identifier) {
			return clone(p), nil
		}
	}
	return nil, authd.ErrPrincipalNotFound
}

func (s *PrincipalStore) ByUsername(ctx context.Context, username string) (*authd.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.principals {
		if strings.EqualFold(p.Username, username) {
			return clone(p), nil
		}
	}
	return nil, authd.ErrPrincipalNotFound
}

func (s *PrincipalStore) ByProviderID(ctx context.Context, provider, externalID string) (*authd.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.principals {
		if p.Provider == provider && p.ExternalID == externalID {
			return clone(p), nil
		}
	}
	return nil, authd.ErrPrincipalNotFound
}

func (s *PrincipalStore) Create(ctx context.Context, p *authd.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.principals {
		if strings.EqualFold(existing.Username, p.Username) {
			return authd.NewAuthError(authd.ErrCodeUsernameTaken, "Username taken", "username")
		}
		if strings.EqualFold(existing.Email, p.Email) {
			return authd.NewAuthError(authd.ErrCodeEmailExists, "Email already registered", "email")
		}
		if p.Provider != "" && existing.Provider == p.Provider && existing.ExternalID == p.ExternalID {
			return authd.NewAuthError(authd.ErrCodeEmailExists, "External identity already linked", "")
		}
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.principals[p.ID] = clone(p)
	return nil
}

func (s *PrincipalStore) Save(ctx context.Context, p *authd.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.principals[p.ID]; !ok {
		return authd.ErrPrincipalNotFound
	}
	p.UpdatedAt = time.Now()
	s.principals[p.ID] = clone(p)
	return nil
}

// Count returns the number of stored principals. Tests use it to assert
// provisioning idempotence.
func (s *PrincipalStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.principals)
}
