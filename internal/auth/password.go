package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/ali01/graphd/internal/core/errkit"
)

// HashPassword hashes a plaintext password with bcrypt's default cost,
// matching UserInfo::new's bcrypt::DEFAULT_COST call in the source.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errkit.NewSessionError(errkit.SessionManagerError, "failed to hash password")
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
// Mirrors UserInfo::verify_password, which treats any comparison error
// (malformed hash, mismatch) as a plain "false" rather than propagating it.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
