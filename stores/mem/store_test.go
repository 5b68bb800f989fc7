package mem_test

import (
	"context"
	"errors"
	"testing"

	authd "github.com/gamecrate/authd"
	"github.com/gamecrate/authd/stores/mem"
)

func seedStore(t *testing.T) *mem.PrincipalStore {
	t.Helper()
	store := mem.NewPrincipalStore()
	err := store.Create(context.Background(), &authd.Principal{
		ID:         "u-1",
		Username:   "alice",
		Email:      "alice@example.com",
		Provider:   "google",
		ExternalID: "sub-1",
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return store
}

func TestLookups(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		lookup func() (*authd.Principal, error)
		found  bool
	}{
		{"by username", func() (*authd.Principal, error) { return store.ByUsername(ctx, "alice") }, true},
		{"by username case-insensitive", func() (*authd.Principal, error) { return store.ByUsername(ctx, "ALICE") }, true},
		{"by identifier email", func() (*authd.Principal, error) { return store.ByIdentifier(ctx, "Alice@Example.COM") }, true},
		{"by provider id", func() (*authd.Principal, error) { return store.ByProviderID(ctx, "google", "sub-1") }, true},
		{"unknown username", func() (*authd.Principal, error) { return store.ByUsername(ctx, "nobody") }, false},
		{"wrong provider", func() (*authd.Principal, error) { return store.ByProviderID(ctx, "github", "sub-1") }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := tc.lookup()
			if tc.found {
				if err != nil {
					t.Fatalf("expected hit, got %v", err)
				}
				if p.ID != "u-1" {
					t.Errorf("expected u-1, got %q", p.ID)
				}
				return
			}
			if !errors.Is(err, authd.ErrPrincipalNotFound) {
				t.Errorf("expected ErrPrincipalNotFound, got %v", err)
			}
		})
	}
}

func TestCreateUniqueness(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		principal *authd.Principal
		wantCode  string
	}{
		{
			"duplicate username",
			&authd.Principal{ID: "u-2", Username: "ALICE", Email: "other@example.com"},
			authd.ErrCodeUsernameTaken,
		},
		{
			"duplicate email",
			&authd.Principal{ID: "u-2", Username: "other", Email: "ALICE@example.com"},
			authd.ErrCodeEmailExists,
		},
		{
			"duplicate external identity",
			&authd.Principal{ID: "u-2", Username: "other", Email: "other@example.com", Provider: "google", ExternalID: "sub-1"},
			authd.ErrCodeEmailExists,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := store.Create(ctx, tc.principal)
			var authErr *authd.AuthError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected AuthError, got %v", err)
			}
			if authErr.Code != tc.wantCode {
				t.Errorf("expected code %q, got %q", tc.wantCode, authErr.Code)
			}
			if store.Count() != 1 {
				t.Errorf("rejected create must not grow the store, count %d", store.Count())
			}
		})
	}
}

func TestSaveIsolation(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	loaded, err := store.ByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	// Mutating the returned copy must not leak into the store.
	loaded.IsActive = false
	again, err := store.ByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !again.IsActive {
		t.Error("expected store copy to be untouched before Save")
	}

	if err := store.Save(ctx, loaded); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	saved, err := store.ByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if saved.IsActive {
		t.Error("expected Save to persist the change")
	}

	t.Run("unknown principal", func(t *testing.T) {
		err := store.Save(ctx, &authd.Principal{ID: "missing"})
		if !errors.Is(err, authd.ErrPrincipalNotFound) {
			t.Errorf("expected ErrPrincipalNotFound, got %v", err)
		}
	})
}
