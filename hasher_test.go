package authd_test

import (
	"strings"
	"testing"

	authd "github.com/gamecrate/authd"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := authd.HashPassword("s3cret-passphrase")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected bcrypt hash, got %q", hash)
	}
	if hash == "s3cret-passphrase" {
		t.Error("hash must not equal the plaintext")
	}

	if !authd.VerifyPassword("s3cret-passphrase", hash) {
		t.Error("expected correct password to verify")
	}
	if authd.VerifyPassword("wrong-passphrase", hash) {
		t.Error("expected wrong password to fail")
	}
	if authd.VerifyPassword("s3cret-passphrase", "") {
		t.Error("expected empty hash to fail")
	}
}

func TestHashesAreSalted(t *testing.T) {
	first, err := authd.HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	second, err := authd.HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if first == second {
		t.Error("expected distinct salts to produce distinct hashes")
	}
}
