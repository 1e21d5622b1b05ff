package security

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword generates a salted bcrypt hash. The salt is random per call,
// so hashing the same password twice yields different strings.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPasswordHash reports whether password matches the stored hash.
// The comparison is constant-time; a malformed hash simply returns false.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
