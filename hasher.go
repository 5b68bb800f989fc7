package authd

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with bcrypt. The only failure
// mode is a catastrophic one (cost misconfiguration, entropy exhaustion)
// and is treated as hashing_error by callers.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", NewAuthError(ErrCodeHashing, "Failed to hash password", "")
	}
	return string(bytes), nil
}

// VerifyPassword reports whether password matches the stored hash.
// A mismatch is not an error; bcrypt compares in constant time.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
